package repository

import (
	"context"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// SellerRepository puerto de lectura de proveedores.
type SellerRepository interface {
	GetByID(ctx context.Context, ownerID, id string) (*entity.Seller, error)
}
