package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, owner_id, COALESCE(seller_id::text, ''), name, stock, reorder_threshold, price, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.OwnerID, &p.SellerID, &p.Name, &p.Stock, &p.ReorderThreshold, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un producto del propietario.
func (r *ProductRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND owner_id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListLowStock productos con stock < reorder_threshold.
func (r *ProductRepo) ListLowStock(ctx context.Context, ownerID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE owner_id = $1 AND stock < reorder_threshold
		ORDER BY name`
	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// IncrementStock suma delta al stock en una sola sentencia (sin read-modify-write).
func (r *ProductRepo) IncrementStock(ctx context.Context, ownerID, id string, delta int) (*entity.Product, error) {
	query := `
		UPDATE products SET stock = stock + $3, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, ownerID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("increment stock: %w", err)
	}
	return p, nil
}
