package forecast

import (
	"math"
	"strings"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// ThresholdSigmas el modelo de anomalías reporta threshold = 1.5 × σ de los residuos.
const ThresholdSigmas = 1.5

// ClassifySeverity bandas por z-score: |z| > 3 High, > 2 Medium, resto Low.
func ClassifySeverity(z float64) entity.Severity {
	switch az := math.Abs(z); {
	case az > 3:
		return entity.SeverityHigh
	case az > 2:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}

// ResidualZScore z-score del residuo usando la σ implícita en el threshold del modelo.
func ResidualZScore(actual, predicted, threshold float64) float64 {
	sigma := threshold / ThresholdSigmas
	if sigma <= 0 {
		return 0
	}
	return (actual - predicted) / sigma
}

// ParseSeverity normaliza la severidad informada por el modelo; ok=false si no es reconocida.
func ParseSeverity(s string) (entity.Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return entity.SeverityLow, true
	case "medium":
		return entity.SeverityMedium, true
	case "high":
		return entity.SeverityHigh, true
	}
	return "", false
}

// SeverityRank orden para procesar primero las anomalías más graves.
func SeverityRank(s entity.Severity) int {
	switch s {
	case entity.SeverityHigh:
		return 3
	case entity.SeverityMedium:
		return 2
	case entity.SeverityLow:
		return 1
	}
	return 0
}
