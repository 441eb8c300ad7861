package repository

import (
	"context"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// NotificationRepository puerto de persistencia de notificaciones.
// Todas las operaciones están acotadas al propietario: un id ajeno se comporta como inexistente.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*entity.Notification, error)
	// MarkRead marca como leída y devuelve la notificación (nil si no existe para ese owner).
	MarkRead(ctx context.Context, ownerID, id string) (*entity.Notification, error)
	MarkAllRead(ctx context.Context, ownerID string) (int64, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
	CountUnread(ctx context.Context, ownerID string) (int, error)
}
