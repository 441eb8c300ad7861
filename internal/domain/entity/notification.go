package entity

import "time"

// NotificationType tipo de notificación al operador.
type NotificationType string

const (
	NotificationLowStock    NotificationType = "low_stock"
	NotificationReorder     NotificationType = "reorder"
	NotificationOrderStatus NotificationType = "order_status"
	NotificationSystem      NotificationType = "system"
)

// NotificationData payload estructurado opcional (se persiste como JSONB).
type NotificationData struct {
	ProductID        string   `json:"product_id,omitempty"`
	ProductName      string   `json:"product_name,omitempty"`
	OrderID          string   `json:"order_id,omitempty"`
	Status           string   `json:"status,omitempty"`
	CurrentStock     *int     `json:"current_stock,omitempty"`
	ReorderThreshold *int     `json:"reorder_threshold,omitempty"`
	ForecastedDemand *int     `json:"forecasted_demand,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
	Severity         string   `json:"severity,omitempty"`
}

// Notification notificación persistida para un propietario. Solo el propietario puede
// marcarla como leída o eliminarla.
type Notification struct {
	ID        string
	OwnerID   string
	Type      NotificationType
	Title     string
	Message   string
	Read      bool
	Data      *NotificationData
	CreatedAt time.Time
}
