package dto

import "github.com/jhoicas/Reabastecimiento-api/internal/application/ports"

// Métodos de pronóstico.
const (
	ForecastMethodPrimary  = "primary"
	ForecastMethodFallback = "fallback"
)

// ForecastDetails diagnóstico del pronóstico primario.
type ForecastDetails struct {
	Trend              string               `json:"trend"`                         // increasing | decreasing | stable
	Seasonality        bool                 `json:"seasonality"`                   // patrón por día de semana
	HistoricalAccuracy *float64             `json:"historical_accuracy,omitempty"` // % [0,100]; nil sin solapamiento
	OptimalLevels      *ports.OptimalLevels `json:"optimal_levels,omitempty"`
	DataPoints         int                  `json:"data_points"`
}

// ForecastResult resultado del adaptador de pronóstico. Siempre presente, nunca error:
// si el modelo falla Method = "fallback" con menor confianza.
type ForecastResult struct {
	ProductID        string           `json:"product_id,omitempty"`
	ForecastedDemand int              `json:"forecasted_demand"`
	Confidence       float64          `json:"confidence"` // 0–100
	Method           string           `json:"method"`
	Details          *ForecastDetails `json:"details,omitempty"`
}
