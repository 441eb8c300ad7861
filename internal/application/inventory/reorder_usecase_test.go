package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/locking"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Creación de órdenes
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckStockLevels_SinHistorialPideDobleDelUmbral(t *testing.T) {
	f := newFixture()
	f.store.AddProduct(product("p1", 3, 10, "2.50"))

	before := time.Now()
	reqs, err := f.reorder(nil).CheckStockLevels(context.Background(), testOwner)
	require.NoError(t, err)

	require.Len(t, reqs, 1)
	assert.Equal(t, 20, reqs[0].ReorderQuantity)
	assert.Equal(t, 3, reqs[0].CurrentStock)
	assert.Equal(t, dto.ForecastMethodFallback, reqs[0].ForecastData.Method)

	orders := f.store.Orders()
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, reqs[0].OrderID, o.ID)
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.Equal(t, "Acme", o.SellerName)
	assert.Equal(t, "Producto p1", o.ProductName)
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("50")), "20 × 2.50")
	assert.WithinDuration(t, before.AddDate(0, 0, 7), o.ETA, time.Minute)
	require.NotNil(t, o.ForecastData)
	assert.Equal(t, 0, o.ForecastData.ForecastedDemand)

	assert.Equal(t, []string{ports.EventLowStockAlert, ports.EventReorderAlert}, f.emitter.Names())
	assert.Len(t, f.store.Notifications(testOwner), 2)
}

func TestCheckStockLevels_DoceDiasDeVentasUsaRespaldo(t *testing.T) {
	f := newFixture()
	f.store.AddProduct(product("p1", 2, 10, "1.00"))
	f.store.AddSales(testOwner, "p1", dailySales(12, 5)...)

	reqs, err := f.reorder(nil).CheckStockLevels(context.Background(), testOwner)
	require.NoError(t, err)

	require.Len(t, reqs, 1)
	assert.Equal(t, 35, reqs[0].ReorderQuantity, "max(2×10, 7×5)")
	assert.Equal(t, 35, reqs[0].ForecastData.ForecastedDemand)
	assert.InDelta(t, 40.0, reqs[0].ForecastData.Confidence, 0.001)
	assert.Equal(t, int32(1), f.model.ForecastCalls.Load(), "con ≥ 10 puntos se intenta el modelo")
}

func TestCheckStockLevels_IgnoraProductosEnElUmbral(t *testing.T) {
	f := newFixture()
	f.store.AddProduct(product("p1", 10, 10, "1.00"))

	reqs, err := f.reorder(nil).CheckStockLevels(context.Background(), testOwner)
	require.NoError(t, err)

	assert.Empty(t, reqs)
	assert.Empty(t, f.store.Orders())
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia y exclusión
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckStockLevels_SegundaCorridaNoDuplica(t *testing.T) {
	f := newFixture()
	f.store.AddProduct(product("p1", 3, 10, "1.00"))
	uc := f.reorder(nil)
	ctx := context.Background()

	first, err := uc.CheckStockLevels(ctx, testOwner)
	require.NoError(t, err)
	second, err := uc.CheckStockLevels(ctx, testOwner)
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Empty(t, second)
	assert.Len(t, f.store.Orders(), 1)
}

func TestCheckStockLevels_CorridasConcurrentesCreanUnaSolaOrden(t *testing.T) {
	f := newFixture()
	f.store.AddProduct(product("p1", 3, 10, "1.00"))
	uc := f.reorder(locking.NewLocalLocker())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.CheckStockLevels(context.Background(), testOwner)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.store.Orders(), 1)
}

func TestCheckStockLevels_LockTomadoOmiteElProducto(t *testing.T) {
	f := newFixture()
	f.store.AddProduct(product("p1", 3, 10, "1.00"))
	f.store.AddProduct(product("p2", 3, 10, "1.00"))
	locker := testutil.NewHeldLocker(inventory.ReorderLockKey(testOwner, "p1"))

	reqs, err := f.reorder(locker).CheckStockLevels(context.Background(), testOwner)
	require.NoError(t, err)

	require.Len(t, reqs, 1)
	assert.Equal(t, "p2", reqs[0].ProductID)
}

func TestCheckStockLevels_OrdenPendienteExistenteSeRespeta(t *testing.T) {
	f := newFixture()
	f.store.AddProduct(product("p1", 3, 10, "1.00"))
	f.store.AddOrder(&entity.Order{ID: "o-prev", OwnerID: testOwner, ProductID: "p1", Status: entity.OrderStatusPending})

	reqs, err := f.reorder(nil).CheckStockLevels(context.Background(), testOwner)
	require.NoError(t, err)

	assert.Empty(t, reqs)
	assert.Len(t, f.store.Orders(), 1)
	assert.Empty(t, f.emitter.Events())
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento por producto
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckStockLevels_ProveedorFaltanteNoAfectaAOtros(t *testing.T) {
	f := newFixture()
	orphan := product("p1", 1, 5, "1.00")
	orphan.SellerID = "no-existe"
	f.store.AddProduct(orphan)
	f.store.AddProduct(product("p2", 1, 5, "1.00"))

	reqs, err := f.reorder(nil).CheckStockLevels(context.Background(), testOwner)
	require.NoError(t, err)

	require.Len(t, reqs, 1)
	assert.Equal(t, "p2", reqs[0].ProductID)
}

func TestCheckStockLevels_FalloDeNotificacionNoRevierteLaOrden(t *testing.T) {
	f := newFixture()
	f.store.AddProduct(product("p1", 1, 5, "1.00"))
	f.store.Faults.CreateNotification = assert.AnError

	reqs, err := f.reorder(nil).CheckStockLevels(context.Background(), testOwner)
	require.NoError(t, err)

	assert.Len(t, reqs, 1)
	assert.Len(t, f.store.Orders(), 1)
}

func TestCheckStockLevels_SoloProductosDelPropietario(t *testing.T) {
	f := newFixture()
	other := product("p9", 0, 10, "1.00")
	other.OwnerID = "otro"
	f.store.AddProduct(other)

	reqs, err := f.reorder(nil).CheckStockLevels(context.Background(), testOwner)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}
