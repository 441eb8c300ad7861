package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo escritura de compras (solo desde la tx de completado).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador.
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create inserta la compra.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (id, owner_id, order_id, seller_id, product_id, seller_name, product_name,
			quantity, unit_price, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.OwnerID, p.OrderID, p.SellerID, p.ProductID, p.SellerName, p.ProductName,
		p.Quantity, p.UnitPrice, p.TotalPrice, p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}
