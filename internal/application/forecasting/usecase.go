package forecasting

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/forecast"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

// Options parámetros del pronóstico.
type Options struct {
	Timeout      time.Duration // tope de la llamada al modelo
	LookbackDays int           // historial usado para pronosticar
	HorizonDays  int           // días sumados del pronóstico
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.LookbackDays <= 0 {
		o.LookbackDays = 90
	}
	if o.HorizonDays <= 0 {
		o.HorizonDays = 7
	}
	return o
}

// ForecastUseCase adaptador de pronóstico de demanda. Usa el modelo estadístico
// cuando hay historial suficiente y degrada a un promedio móvil en cualquier otro caso.
type ForecastUseCase struct {
	model ports.ForecastModel
	sales repository.SaleRepository
	opts  Options
	log   zerolog.Logger
	now   func() time.Time
}

// NewForecastUseCase construye el caso de uso. model puede ser nil (siempre fallback).
func NewForecastUseCase(
	model ports.ForecastModel,
	sales repository.SaleRepository,
	opts Options,
	log zerolog.Logger,
) *ForecastUseCase {
	return &ForecastUseCase{
		model: model,
		sales: sales,
		opts:  opts.withDefaults(),
		log:   log.With().Str("component", "forecasting").Logger(),
		now:   time.Now,
	}
}

// Forecast pronostica la demanda de los próximos días a partir de la serie diaria
// (ordenada ascendente). Nunca falla: ante error del modelo devuelve el respaldo.
func (uc *ForecastUseCase) Forecast(ctx context.Context, series []entity.DailySales) *dto.ForecastResult {
	if len(series) >= forecast.MinPrimaryPoints && uc.model != nil {
		res, err := uc.primary(ctx, series)
		if err == nil {
			return res
		}
		uc.log.Warn().Err(err).Int("points", len(series)).Msg("modelo de pronóstico falló, usando respaldo")
	}
	return fallback(series)
}

// ForecastProduct carga el historial del producto y pronostica. Un error al leer
// el historial se trata como serie vacía.
func (uc *ForecastUseCase) ForecastProduct(ctx context.Context, ownerID, productID string) *dto.ForecastResult {
	since := uc.now().AddDate(0, 0, -uc.opts.LookbackDays)
	series, err := uc.sales.ListDailySales(ctx, ownerID, productID, since)
	if err != nil {
		uc.log.Error().Err(err).
			Str("owner_id", ownerID).
			Str("product_id", productID).
			Msg("no se pudo leer historial de ventas")
		series = nil
	}
	res := uc.Forecast(ctx, series)
	res.ProductID = productID
	return res
}

func (uc *ForecastUseCase) primary(ctx context.Context, series []entity.DailySales) (*dto.ForecastResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()

	out, err := uc.model.Forecast(ctx, series)
	if err != nil {
		return nil, err
	}
	if out == nil || len(out.Forecast) == 0 {
		return nil, errEmptyForecast
	}

	levels := out.OptimalLevels
	actual := forecast.Quantities(series)
	details := &dto.ForecastDetails{
		Trend:         string(forecast.DetectTrend(actual)),
		Seasonality:   forecast.HasWeeklySeasonality(series),
		OptimalLevels: &levels,
		DataPoints:    len(series),
	}
	predicted := out.Fitted
	if len(predicted) == 0 {
		predicted = out.Forecast
	}
	if acc, ok := forecast.HistoricalAccuracy(series, predicted); ok {
		details.HistoricalAccuracy = &acc
	}

	return &dto.ForecastResult{
		ForecastedDemand: forecast.DemandFromForecast(forecast.Quantities(out.Forecast), uc.opts.HorizonDays),
		Confidence:       forecast.ModelConfidence(levels.MeanDemand, levels.StdDemand),
		Method:           dto.ForecastMethodPrimary,
		Details:          details,
	}, nil
}

func fallback(series []entity.DailySales) *dto.ForecastResult {
	return &dto.ForecastResult{
		ForecastedDemand: forecast.FallbackDemand(series),
		Confidence:       forecast.FallbackConfidence(len(series)),
		Method:           dto.ForecastMethodFallback,
	}
}
