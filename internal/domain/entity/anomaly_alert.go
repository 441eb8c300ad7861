package entity

import "time"

// Severidad de una anomalía.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// AlertTypeSalesAnomaly alerta generada por el modelo ARIMA sobre la serie de ventas.
const AlertTypeSalesAnomaly = "ARIMA Anomaly"

// AnomalyAlert alerta de anomalía estadística sobre la serie de ventas de un producto.
// Timestamp es el momento de creación (ventana de deduplicación de 24 h y purga de 7 días);
// AnomalyDate es el día de la serie en el que se detectó la desviación.
type AnomalyAlert struct {
	ID          string
	OwnerID     string
	Type        string
	ProductID   string
	ProductName string
	Description string
	Severity    Severity
	Value       float64
	Predicted   float64
	Threshold   float64
	AnomalyDate time.Time
	Timestamp   time.Time
}
