package forecast

import (
	"math"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// Parámetros del pronóstico.
const (
	MinPrimaryPoints     = 10   // puntos mínimos para invocar el modelo estadístico
	FallbackWindowDays   = 7    // ventana del promedio móvil de respaldo
	FullConfidencePoints = 30   // puntos con los que el respaldo alcanza 100 % de confianza
	TrendThreshold       = 0.10 // ±10 % entre mitades de la serie
	SeasonalityThreshold = 0.20 // varianza por día de semana > 20 % de la media
	AccuracyWindow       = 5    // últimos puntos solapados para la precisión histórica
)

// Trend dirección de la demanda.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Mean media aritmética; 0 para una serie vacía.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance varianza poblacional.
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var acc float64
	for _, x := range xs {
		acc += (x - m) * (x - m)
	}
	return acc / float64(len(xs))
}

// Quantities extrae las cantidades de la serie.
func Quantities(points []entity.DailySales) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Quantity
	}
	return out
}

// FallbackDemand promedio diario de los últimos 7 días de la serie × 7.
// La ventana se ancla en el último punto de la serie (ordenada ascendente).
func FallbackDemand(points []entity.DailySales) int {
	if len(points) == 0 {
		return 0
	}
	last := truncateDay(points[len(points)-1].Date)
	cutoff := last.AddDate(0, 0, -(FallbackWindowDays - 1))
	var sum float64
	for _, p := range points {
		if !truncateDay(p.Date).Before(cutoff) {
			sum += p.Quantity
		}
	}
	avg := sum / FallbackWindowDays
	return ceilInt(avg * FallbackWindowDays)
}

// FallbackConfidence min(100, puntos/30 × 100).
func FallbackConfidence(points int) float64 {
	c := float64(points) / FullConfidencePoints * 100
	return round2(math.Min(100, c))
}

// ModelConfidence confianza derivada de la relación media/desviación del modelo:
// 100 × (1 − std/mean) acotado a [0, 100].
func ModelConfidence(mean, std float64) float64 {
	if mean <= 0 || math.IsNaN(mean) || math.IsNaN(std) {
		return 0
	}
	if std <= 0 {
		return 100
	}
	return round2(clamp(100*(1-std/mean), 0, 100))
}

// DemandFromForecast suma los primeros horizon valores pronosticados (negativos cuentan como 0).
func DemandFromForecast(values []float64, horizon int) int {
	var sum float64
	for i, v := range values {
		if i >= horizon {
			break
		}
		if v > 0 && !math.IsNaN(v) {
			sum += v
		}
	}
	return ceilInt(sum)
}

// DetectTrend compara la media de la segunda mitad contra la primera (umbral ±10 %).
func DetectTrend(values []float64) Trend {
	if len(values) < 2 {
		return TrendStable
	}
	half := len(values) / 2
	first, second := Mean(values[:half]), Mean(values[half:])
	if first == 0 {
		if second > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}
	change := (second - first) / first
	switch {
	case change > TrendThreshold:
		return TrendIncreasing
	case change < -TrendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// HasWeeklySeasonality true si la varianza de las medias por día de semana supera
// el 20 % de la media global.
func HasWeeklySeasonality(points []entity.DailySales) bool {
	byDay := make(map[time.Weekday][]float64, 7)
	all := make([]float64, 0, len(points))
	for _, p := range points {
		byDay[p.Date.Weekday()] = append(byDay[p.Date.Weekday()], p.Quantity)
		all = append(all, p.Quantity)
	}
	if len(byDay) < 2 {
		return false
	}
	overall := Mean(all)
	if overall <= 0 {
		return false
	}
	dayMeans := make([]float64, 0, len(byDay))
	for _, qs := range byDay {
		dayMeans = append(dayMeans, Mean(qs))
	}
	return Variance(dayMeans) > SeasonalityThreshold*overall
}

// HistoricalAccuracy 1 − MAE/media real sobre los últimos 5 días presentes tanto en la
// serie real como en la predicha, en porcentaje [0, 100]. ok=false si no hay solapamiento.
func HistoricalAccuracy(actual, predicted []entity.DailySales) (float64, bool) {
	actualByDay := make(map[string]float64, len(actual))
	for _, a := range actual {
		actualByDay[dayKey(a.Date)] = a.Quantity
	}
	type pair struct{ a, p float64 }
	var pairs []pair
	for _, p := range predicted {
		if a, ok := actualByDay[dayKey(p.Date)]; ok {
			pairs = append(pairs, pair{a: a, p: p.Quantity})
		}
	}
	if len(pairs) == 0 {
		return 0, false
	}
	if len(pairs) > AccuracyWindow {
		pairs = pairs[len(pairs)-AccuracyWindow:]
	}
	var absErr, sumActual float64
	for _, x := range pairs {
		absErr += math.Abs(x.a - x.p)
		sumActual += x.a
	}
	mae := absErr / float64(len(pairs))
	meanActual := sumActual / float64(len(pairs))
	if meanActual == 0 {
		if mae == 0 {
			return 100, true
		}
		return 0, true
	}
	return round2(clamp((1-mae/meanActual)*100, 0, 100)), true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ceilInt redondea hacia arriba ignorando el ruido de coma flotante.
func ceilInt(x float64) int {
	return int(math.Ceil(x - 1e-9))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
