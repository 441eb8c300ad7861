package repository

import (
	"context"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// PurchaseRepository puerto de escritura de compras.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
}
