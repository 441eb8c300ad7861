package ports

import (
	"context"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// ForecastPoint valor pronosticado (o ajustado in-sample) para un día.
type ForecastPoint = entity.DailySales

// OptimalLevels niveles de inventario calculados por el modelo.
type OptimalLevels struct {
	SafetyStock           float64 `json:"safety_stock"`
	ReorderPoint          float64 `json:"reorder_point"`
	EconomicOrderQuantity float64 `json:"economic_order_quantity"`
	MeanDemand            float64 `json:"mean_demand"`
	StdDemand             float64 `json:"std_demand"`
}

// ModelForecast salida estructurada del modo pronóstico.
// Fitted son las predicciones in-sample (opcional) usadas para la precisión histórica.
type ModelForecast struct {
	Forecast      []ForecastPoint
	Fitted        []ForecastPoint
	OptimalLevels OptimalLevels
}

// ModelAnomaly anomalía reportada por el modelo. Severity puede venir vacía.
type ModelAnomaly struct {
	Date      string
	Actual    float64
	Predicted float64
	Residual  float64
	Severity  string
}

// ModelAnomalies salida del modo detección de anomalías.
type ModelAnomalies struct {
	Anomalies []ModelAnomaly
	Threshold float64
}

// ForecastModel define el puerto de salida hacia el modelo estadístico externo (ARIMA).
// El adaptador concreto (subproceso, HTTP, librería en proceso) queda detrás de este contrato.
// El contexto debe llevar un timeout para acotar la llamada externa.
type ForecastModel interface {
	// Forecast ajusta el modelo con la serie completa y devuelve el pronóstico.
	Forecast(ctx context.Context, series []entity.DailySales) (*ModelForecast, error)
	// DetectAnomalies devuelve los días cuya venta se desvía de lo esperado por el modelo.
	DetectAnomalies(ctx context.Context, series []entity.DailySales) (*ModelAnomalies, error)
}
