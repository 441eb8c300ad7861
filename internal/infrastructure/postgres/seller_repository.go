package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var _ repository.SellerRepository = (*SellerRepo)(nil)

// SellerRepo lectura de proveedores.
type SellerRepo struct {
	q Querier
}

// NewSellerRepository construye el adaptador.
func NewSellerRepository(q Querier) *SellerRepo {
	return &SellerRepo{q: q}
}

// GetByID obtiene un proveedor del propietario. id vacío se trata como inexistente.
func (r *SellerRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Seller, error) {
	if id == "" {
		return nil, nil
	}
	var s entity.Seller
	err := r.q.QueryRow(ctx,
		`SELECT id, owner_id, name FROM sellers WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&s.ID, &s.OwnerID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get seller: %w", err)
	}
	return &s, nil
}
