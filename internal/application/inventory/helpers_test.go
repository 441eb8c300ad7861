package inventory_test

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/forecasting"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/notification"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testOwner  = "owner-1"
	testSeller = "seller-1"
)

type fixture struct {
	store      *testutil.Store
	model      *testutil.Model
	emitter    *testutil.Emitter
	dispatcher *notification.Dispatcher
	forecaster *forecasting.ForecastUseCase
}

func newFixture() *fixture {
	store := testutil.NewStore()
	store.AddSeller(&entity.Seller{ID: testSeller, OwnerID: testOwner, Name: "Acme"})
	model := &testutil.Model{}
	emitter := &testutil.Emitter{}
	return &fixture{
		store:      store,
		model:      model,
		emitter:    emitter,
		dispatcher: notification.NewDispatcher(store.NotificationRepo(), zerolog.Nop(), emitter),
		forecaster: forecasting.NewForecastUseCase(model, store.SaleRepo(), forecasting.Options{}, zerolog.Nop()),
	}
}

func (f *fixture) reorder(locker ports.KeyLocker) *inventory.ReorderUseCase {
	return inventory.NewReorderUseCase(
		f.store.ProductRepo(),
		f.store.SellerRepo(),
		f.store.OrderRepo(),
		f.forecaster,
		f.dispatcher,
		locker,
		inventory.ReorderOptions{},
		zerolog.Nop(),
	)
}

func (f *fixture) lifecycle() *inventory.OrderLifecycleUseCase {
	return inventory.NewOrderLifecycleUseCase(f.store, f.store.OrderRepo(), f.dispatcher, zerolog.Nop())
}

func product(id string, stock, threshold int, price string) *entity.Product {
	return &entity.Product{
		ID:               id,
		OwnerID:          testOwner,
		SellerID:         testSeller,
		Name:             "Producto " + id,
		Stock:            stock,
		ReorderThreshold: threshold,
		Price:            decimal.RequireFromString(price),
	}
}

// dailySales n días consecutivos terminando hoy, con qty unidades por día.
func dailySales(n int, qty float64) []entity.DailySales {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	out := make([]entity.DailySales, n)
	for i := range out {
		out[i] = entity.DailySales{Date: today.AddDate(0, 0, -(n - 1 - i)), Quantity: qty}
	}
	return out
}
