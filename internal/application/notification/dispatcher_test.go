package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/notification"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/testutil"
)

const (
	ownerA = "owner-a"
	ownerB = "owner-b"
)

func newDispatcher(store *testutil.Store, emitters ...ports.RealtimeEmitter) *notification.Dispatcher {
	return notification.NewDispatcher(store.NotificationRepo(), zerolog.Nop(), emitters...)
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_PersisteYEmite(t *testing.T) {
	store := testutil.NewStore()
	em := &testutil.Emitter{}
	d := newDispatcher(store, em)

	n, err := d.Create(context.Background(), ownerA, entity.NotificationSystem, "Hola", "mensaje", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Read)
	require.Len(t, store.Notifications(ownerA), 1)

	events := em.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ownerA, events[0].OwnerID)
	assert.Equal(t, ports.EventNotification, events[0].Name)
	payload, ok := events[0].Payload.(*dto.NotificationResponse)
	require.True(t, ok)
	assert.Equal(t, n.ID, payload.ID)
}

func TestCreate_FalloDeEmisionNoRevierteLaPersistencia(t *testing.T) {
	store := testutil.NewStore()
	failing := &testutil.Emitter{Err: errors.New("redis caído")}
	ok := &testutil.Emitter{}
	d := newDispatcher(store, failing, ok)

	_, err := d.Create(context.Background(), ownerA, entity.NotificationSystem, "t", "m", nil)

	require.NoError(t, err)
	assert.Len(t, store.Notifications(ownerA), 1)
	assert.Len(t, ok.Events(), 1, "los demás emisores reciben el evento")
}

func TestCreate_FalloDePersistenciaNoEmite(t *testing.T) {
	store := testutil.NewStore()
	store.Faults.CreateNotification = errors.New("insert falló")
	em := &testutil.Emitter{}
	d := newDispatcher(store, em)

	_, err := d.Create(context.Background(), ownerA, entity.NotificationSystem, "t", "m", nil)

	require.Error(t, err)
	assert.Empty(t, em.Events())
}

func TestCreate_SinTituloEsEntradaInvalida(t *testing.T) {
	d := newDispatcher(testutil.NewStore())
	_, err := d.Create(context.Background(), ownerA, entity.NotificationSystem, " ", "m", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura / borrado acotado al propietario
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkRead_EsIdempotente(t *testing.T) {
	store := testutil.NewStore()
	d := newDispatcher(store)
	ctx := context.Background()
	n, err := d.Create(ctx, ownerA, entity.NotificationSystem, "t", "m", nil)
	require.NoError(t, err)

	first, err := d.MarkRead(ctx, ownerA, n.ID)
	require.NoError(t, err)
	second, err := d.MarkRead(ctx, ownerA, n.ID)
	require.NoError(t, err)

	assert.True(t, first.Read)
	assert.True(t, second.Read)
	count, err := d.UnreadCount(ctx, ownerA)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkRead_DeOtroPropietarioEsNotFoundSinMutar(t *testing.T) {
	store := testutil.NewStore()
	d := newDispatcher(store)
	ctx := context.Background()
	n, err := d.Create(ctx, ownerA, entity.NotificationSystem, "t", "m", nil)
	require.NoError(t, err)

	_, err = d.MarkRead(ctx, ownerB, n.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, store.Notifications(ownerA)[0].Read)
}

func TestDelete_DeOtroPropietarioEsNotFound(t *testing.T) {
	store := testutil.NewStore()
	d := newDispatcher(store)
	ctx := context.Background()
	n, err := d.Create(ctx, ownerA, entity.NotificationSystem, "t", "m", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, d.Delete(ctx, ownerB, n.ID), domain.ErrNotFound)
	assert.Len(t, store.Notifications(ownerA), 1)

	require.NoError(t, d.Delete(ctx, ownerA, n.ID))
	assert.Empty(t, store.Notifications(ownerA))
	assert.ErrorIs(t, d.Delete(ctx, ownerA, n.ID), domain.ErrNotFound)
}

func TestMarkAllRead_SoloAfectaAlPropietario(t *testing.T) {
	store := testutil.NewStore()
	d := newDispatcher(store)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := d.Create(ctx, ownerA, entity.NotificationSystem, "t", "m", nil)
		require.NoError(t, err)
	}
	_, err := d.Create(ctx, ownerB, entity.NotificationSystem, "t", "m", nil)
	require.NoError(t, err)

	updated, err := d.MarkAllRead(ctx, ownerA)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	countB, err := d.UnreadCount(ctx, ownerB)
	require.NoError(t, err)
	assert.Equal(t, 1, countB)

	list, err := d.List(ctx, ownerA, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alertas automáticas
// ──────────────────────────────────────────────────────────────────────────────

func TestSendLowStockAlert_MensajeYPayload(t *testing.T) {
	store := testutil.NewStore()
	em := &testutil.Emitter{}
	d := newDispatcher(store, em)
	p := &entity.Product{ID: "p1", OwnerID: ownerA, Name: "Widget", Stock: 3, ReorderThreshold: 10}

	err := d.SendLowStockAlert(context.Background(), p, &dto.ForecastResult{ForecastedDemand: 21, Confidence: 40})
	require.NoError(t, err)

	list := store.Notifications(ownerA)
	require.Len(t, list, 1)
	n := list[0]
	assert.Equal(t, entity.NotificationLowStock, n.Type)
	assert.Equal(t, notification.TitleLowStock, n.Title)
	assert.Equal(t, "Warning: Widget is low in stock. Forecasted demand: 21 units (40.0% confidence)", n.Message)
	require.NotNil(t, n.Data)
	assert.Equal(t, 3, *n.Data.CurrentStock)
	assert.Equal(t, 10, *n.Data.ReorderThreshold)
	assert.Equal(t, 21, *n.Data.ForecastedDemand)
	assert.Equal(t, []string{ports.EventLowStockAlert}, em.Names())
}

func TestSendReorderAlert_IncluyeOrden(t *testing.T) {
	store := testutil.NewStore()
	em := &testutil.Emitter{}
	d := newDispatcher(store, em)
	o := &entity.Order{
		ID: "o1", OwnerID: ownerA, ProductID: "p1", ProductName: "Widget",
		Quantity: 21, TotalPrice: decimal.NewFromInt(210), Status: entity.OrderStatusPending,
		ForecastData: &entity.ForecastData{ForecastedDemand: 21, Confidence: 40},
	}

	require.NoError(t, d.SendReorderAlert(context.Background(), o))

	n := store.Notifications(ownerA)[0]
	assert.Equal(t, "Automated reorder placed for Widget. Based on forecasted demand: 21 units", n.Message)
	assert.Equal(t, "o1", n.Data.OrderID)
	assert.Equal(t, []string{ports.EventReorderAlert}, em.Names())
}

func TestSendOrderStatusUpdate_Mensaje(t *testing.T) {
	store := testutil.NewStore()
	d := newDispatcher(store)
	o := &entity.Order{ID: "o1", OwnerID: ownerA, ProductName: "Widget", Status: entity.OrderStatusCompleted}

	require.NoError(t, d.SendOrderStatusUpdate(context.Background(), o))

	n := store.Notifications(ownerA)[0]
	assert.Equal(t, entity.NotificationOrderStatus, n.Type)
	assert.Equal(t, "Order status updated: Widget is now completed", n.Message)
}
