package dto

import (
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// NotificationResponse representación HTTP y payload del evento en tiempo real.
type NotificationResponse struct {
	ID        string                   `json:"id"`
	Type      string                   `json:"type"`
	Title     string                   `json:"title"`
	Message   string                   `json:"message"`
	Read      bool                     `json:"read"`
	Data      *entity.NotificationData `json:"data,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// UnreadCountResponse respuesta de GET /api/notifications/unread-count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// ToNotificationResponse convierte la entidad a DTO.
func ToNotificationResponse(n *entity.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}
