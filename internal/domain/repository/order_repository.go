package repository

import (
	"context"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// OrderRepository puerto de persistencia de órdenes de reposición.
type OrderRepository interface {
	// Create inserta una orden. Devuelve domain.ErrPendingOrderExists si ya hay una
	// orden pending para el mismo (owner, product).
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Order, error)
	// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE). Solo dentro de una tx.
	GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, order *entity.Order) error
	HasPending(ctx context.Context, ownerID, productID string) (bool, error)
	ListPending(ctx context.Context, ownerID string) ([]*entity.Order, error)
}
