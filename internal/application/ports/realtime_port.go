package ports

import "context"

// Nombres de eventos emitidos al canal del propietario.
const (
	EventLowStockAlert     = "lowStockAlert"
	EventReorderAlert      = "reorderAlert"
	EventOrderStatusUpdate = "orderStatusUpdate"
	EventAnomalyAlert      = "anomalyAlert"
	EventNotification      = "notification"
)

// RealtimeEmitter canal en tiempo real por propietario (a lo sumo una vez, best-effort).
// Un error aquí nunca debe revertir la persistencia de la notificación.
type RealtimeEmitter interface {
	Emit(ctx context.Context, ownerID, event string, payload any) error
}
