package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var _ repository.AnomalyAlertRepository = (*AnomalyAlertRepo)(nil)

// AnomalyAlertRepo persistencia de alertas de anomalía.
type AnomalyAlertRepo struct {
	q Querier
}

// NewAnomalyAlertRepository construye el adaptador.
func NewAnomalyAlertRepository(q Querier) *AnomalyAlertRepo {
	return &AnomalyAlertRepo{q: q}
}

// Create inserta la alerta.
func (r *AnomalyAlertRepo) Create(ctx context.Context, a *entity.AnomalyAlert) error {
	query := `
		INSERT INTO anomaly_alerts (id, owner_id, type, product_id, product_name, description, severity,
			value, predicted, threshold, anomaly_date, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.OwnerID, a.Type, a.ProductID, a.ProductName, a.Description, a.Severity,
		a.Value, a.Predicted, a.Threshold, a.AnomalyDate, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert anomaly alert: %w", err)
	}
	return nil
}

// ExistsSince indica si hay una alerta del mismo (owner, product, type) desde since.
func (r *AnomalyAlertRepo) ExistsSince(ctx context.Context, ownerID, productID, alertType string, since time.Time) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM anomaly_alerts
			WHERE owner_id = $1 AND product_id = $2 AND type = $3 AND timestamp >= $4
		)`, ownerID, productID, alertType, since,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists anomaly alert: %w", err)
	}
	return exists, nil
}

// DeleteOlderThan purga alertas anteriores a before.
func (r *AnomalyAlertRepo) DeleteOlderThan(ctx context.Context, ownerID string, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM anomaly_alerts WHERE owner_id = $1 AND timestamp < $2`, ownerID, before)
	if err != nil {
		return 0, fmt.Errorf("purge anomaly alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListRecent últimas alertas del propietario.
func (r *AnomalyAlertRepo) ListRecent(ctx context.Context, ownerID string, limit int) ([]*entity.AnomalyAlert, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, owner_id, type, product_id, product_name, description, severity,
			value, predicted, threshold, anomaly_date, timestamp
		FROM anomaly_alerts
		WHERE owner_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list anomaly alerts: %w", err)
	}
	defer rows.Close()

	var list []*entity.AnomalyAlert
	for rows.Next() {
		var a entity.AnomalyAlert
		if err := rows.Scan(
			&a.ID, &a.OwnerID, &a.Type, &a.ProductID, &a.ProductName, &a.Description, &a.Severity,
			&a.Value, &a.Predicted, &a.Threshold, &a.AnomalyDate, &a.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan anomaly alert: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// Delete elimina una alerta del propietario.
func (r *AnomalyAlertRepo) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM anomaly_alerts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete anomaly alert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
