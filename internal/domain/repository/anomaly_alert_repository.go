package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// AnomalyAlertRepository puerto de persistencia de alertas de anomalía.
type AnomalyAlertRepository interface {
	Create(ctx context.Context, alert *entity.AnomalyAlert) error
	// ExistsSince indica si hay una alerta del mismo (owner, product, type) creada desde since.
	ExistsSince(ctx context.Context, ownerID, productID, alertType string, since time.Time) (bool, error)
	// DeleteOlderThan purga las alertas del propietario creadas antes de before. Devuelve cuántas borró.
	DeleteOlderThan(ctx context.Context, ownerID string, before time.Time) (int64, error)
	ListRecent(ctx context.Context, ownerID string, limit int) ([]*entity.AnomalyAlert, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}
