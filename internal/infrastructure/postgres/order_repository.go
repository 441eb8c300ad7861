package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo persistencia de órdenes de reposición. forecast_data se guarda como JSONB.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, owner_id, product_id, seller_id, product_name, seller_name, quantity,
	total_price, status, eta, forecast_data, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(
		&o.ID, &o.OwnerID, &o.ProductID, &o.SellerID, &o.ProductName, &o.SellerName, &o.Quantity,
		&o.TotalPrice, &o.Status, &o.ETA, &o.ForecastData, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserta la orden. El índice único parcial de pending se traduce a ErrPendingOrderExists.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OwnerID, o.ProductID, o.SellerID, o.ProductName, o.SellerName, o.Quantity,
		o.TotalPrice, o.Status, o.ETA, o.ForecastData, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isPendingOrderViolation(err) {
			return domain.ErrPendingOrderExists
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden del propietario.
func (r *OrderRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND owner_id = $2`, ownerID, id)
}

// GetForUpdate obtiene la orden bloqueando la fila hasta el fin de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND owner_id = $2 FOR UPDATE`, ownerID, id)
}

func (r *OrderRepo) get(ctx context.Context, query, ownerID, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// UpdateStatus persiste el estado y updated_at.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND owner_id = $2`,
		o.ID, o.OwnerID, o.Status, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HasPending indica si el producto ya tiene una orden pending.
func (r *OrderRepo) HasPending(ctx context.Context, ownerID, productID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE owner_id = $1 AND product_id = $2 AND status = 'pending')`,
		ownerID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has pending order: %w", err)
	}
	return exists, nil
}

// ListPending órdenes pending del propietario, más recientes primero.
func (r *OrderRepo) ListPending(ctx context.Context, ownerID string) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE owner_id = $1 AND status = 'pending' ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
