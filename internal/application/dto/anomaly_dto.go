package dto

import (
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// AnomalyAlertResponse representación HTTP de una alerta de anomalía.
type AnomalyAlertResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Value       float64   `json:"value"`
	Predicted   float64   `json:"predicted"`
	Threshold   float64   `json:"threshold"`
	AnomalyDate time.Time `json:"anomaly_date"`
	Timestamp   time.Time `json:"timestamp"`
}

// DetectionReport resumen de una corrida de detección de anomalías.
type DetectionReport struct {
	ProductsScanned  int   `json:"products_scanned"`
	ProductsSkipped  int   `json:"products_skipped"`
	ProductsFailed   int   `json:"products_failed"`
	AlertsCreated    int   `json:"alerts_created"`
	AlertsSuppressed int   `json:"alerts_suppressed"`
	AlertsPurged     int64 `json:"alerts_purged"`
}

// ToAnomalyAlertResponse convierte la entidad a DTO.
func ToAnomalyAlertResponse(a *entity.AnomalyAlert) *AnomalyAlertResponse {
	return &AnomalyAlertResponse{
		ID:          a.ID,
		Type:        a.Type,
		ProductID:   a.ProductID,
		ProductName: a.ProductName,
		Description: a.Description,
		Severity:    string(a.Severity),
		Value:       a.Value,
		Predicted:   a.Predicted,
		Threshold:   a.Threshold,
		AnomalyDate: a.AnomalyDate,
		Timestamp:   a.Timestamp,
	}
}
