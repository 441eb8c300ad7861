package repository

import (
	"context"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El alta/edición de productos pertenece al módulo de catálogo; aquí solo se exponen
// las operaciones que usa el ciclo de reposición.
type ProductRepository interface {
	GetByID(ctx context.Context, ownerID, id string) (*entity.Product, error)
	// ListLowStock devuelve los productos del propietario con stock < reorder_threshold.
	ListLowStock(ctx context.Context, ownerID string) ([]*entity.Product, error)
	// IncrementStock suma delta al stock y devuelve el producto actualizado (nil si no existe).
	// Debe ejecutarse dentro de la transacción de completado de la orden.
	IncrementStock(ctx context.Context, ownerID, id string, delta int) (*entity.Product, error)
}
