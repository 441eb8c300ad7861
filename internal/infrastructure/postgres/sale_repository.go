package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo proveedor del historial de ventas agregado por día.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// ListDailySales serie diaria de un producto desde since.
func (r *SaleRepo) ListDailySales(ctx context.Context, ownerID, productID string, since time.Time) ([]entity.DailySales, error) {
	query := `
		SELECT date_trunc('day', date) AS day, SUM(quantity)::float8
		FROM sales
		WHERE owner_id = $1 AND product_id = $2 AND date >= $3
		GROUP BY day
		ORDER BY day`
	rows, err := r.q.Query(ctx, query, ownerID, productID, since)
	if err != nil {
		return nil, fmt.Errorf("list daily sales: %w", err)
	}
	defer rows.Close()

	var out []entity.DailySales
	for rows.Next() {
		var d entity.DailySales
		if err := rows.Scan(&d.Date, &d.Quantity); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListDailySalesByProduct una serie por producto. Ventas con product_id nulo se agrupan con ID vacío.
func (r *SaleRepo) ListDailySalesByProduct(ctx context.Context, ownerID string, since time.Time) ([]entity.ProductSalesSeries, error) {
	query := `
		SELECT COALESCE(s.product_id::text, ''), COALESCE(p.name, ''),
		       date_trunc('day', s.date) AS day, SUM(s.quantity)::float8
		FROM sales s
		LEFT JOIN products p ON p.id = s.product_id
		WHERE s.owner_id = $1 AND s.date >= $2
		GROUP BY 1, 2, day
		ORDER BY 1, day`
	rows, err := r.q.Query(ctx, query, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("list daily sales by product: %w", err)
	}
	defer rows.Close()

	var days []productDay
	for rows.Next() {
		var d productDay
		if err := rows.Scan(&d.productID, &d.productName, &d.point.Date, &d.point.Quantity); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list daily sales by product: %w", err)
	}
	return groupByProduct(days), nil
}

// productDay fila de ListDailySalesByProduct.
type productDay struct {
	productID   string
	productName string
	point       entity.DailySales
}

// groupByProduct arma una serie por cada tramo contiguo de product_id. Las filas
// llegan ordenadas por (product_id, día).
func groupByProduct(days []productDay) []entity.ProductSalesSeries {
	var out []entity.ProductSalesSeries
	for _, d := range days {
		if n := len(out); n == 0 || out[n-1].ProductID != d.productID {
			out = append(out, entity.ProductSalesSeries{ProductID: d.productID, ProductName: d.productName})
		}
		last := &out[len(out)-1]
		last.Points = append(last.Points, d.point)
	}
	return out
}
