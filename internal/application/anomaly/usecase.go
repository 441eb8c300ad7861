package anomaly

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/locking"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/forecast"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

const (
	// RetentionWindow antigüedad a partir de la cual se purgan las alertas.
	RetentionWindow = 7 * 24 * time.Hour
	// DedupWindow ventana en la que no se repite una alerta del mismo (producto, tipo).
	DedupWindow = 24 * time.Hour
	// RecentLimit alertas devueltas por ListRecent.
	RecentLimit = 100
)

// Notifier aviso de sistema por cada alerta creada.
type Notifier interface {
	SendAnomalyAlert(ctx context.Context, a *entity.AnomalyAlert) error
}

// Options parámetros del detector.
type Options struct {
	LookbackDays int
	Timeout      time.Duration
}

// DetectionUseCase detector de anomalías estadísticas sobre el historial de ventas.
type DetectionUseCase struct {
	sales    repository.SaleRepository
	alerts   repository.AnomalyAlertRepository
	model    ports.ForecastModel
	notifier Notifier
	locker   ports.KeyLocker
	opts     Options
	log      zerolog.Logger
	now      func() time.Time
}

// NewDetectionUseCase construye el detector. notifier puede ser nil; locker nil usa un LocalLocker.
func NewDetectionUseCase(
	sales repository.SaleRepository,
	alerts repository.AnomalyAlertRepository,
	model ports.ForecastModel,
	notifier Notifier,
	locker ports.KeyLocker,
	opts Options,
	log zerolog.Logger,
) *DetectionUseCase {
	if locker == nil {
		locker = locking.NewLocalLocker()
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 90
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &DetectionUseCase{
		sales:    sales,
		alerts:   alerts,
		model:    model,
		notifier: notifier,
		locker:   locker,
		opts:     opts,
		log:      log.With().Str("component", "anomaly").Logger(),
		now:      time.Now,
	}
}

type candidate struct {
	date      time.Time
	actual    float64
	predicted float64
	residual  float64
	severity  entity.Severity
}

// Detect purga alertas vencidas y corre el modelo sobre cada producto con historial suficiente.
// Un producto que falla se registra y se omite; la corrida solo falla si no puede leer o purgar.
func (uc *DetectionUseCase) Detect(ctx context.Context, ownerID string) (*dto.DetectionReport, error) {
	if ownerID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	logger := uc.log.With().Str("owner_id", ownerID).Logger()
	report := &dto.DetectionReport{}

	purged, err := uc.alerts.DeleteOlderThan(ctx, ownerID, now.Add(-RetentionWindow))
	if err != nil {
		return nil, fmt.Errorf("purge alerts: %w", err)
	}
	report.AlertsPurged = purged

	series, err := uc.sales.ListDailySalesByProduct(ctx, ownerID, now.AddDate(0, 0, -uc.opts.LookbackDays))
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	for _, s := range series {
		if s.ProductID == "" {
			logger.Warn().Int("points", len(s.Points)).Msg("ventas sin producto asociado, se omiten")
			report.ProductsSkipped++
			continue
		}
		if len(s.Points) < forecast.MinPrimaryPoints {
			logger.Debug().
				Str("product_id", s.ProductID).
				Int("points", len(s.Points)).
				Msg("historial insuficiente para detección")
			report.ProductsSkipped++
			continue
		}
		uc.scanProduct(ctx, logger, ownerID, s, now, report)
	}

	logger.Info().
		Int("scanned", report.ProductsScanned).
		Int("created", report.AlertsCreated).
		Int("suppressed", report.AlertsSuppressed).
		Int64("purged", report.AlertsPurged).
		Msg("detección de anomalías finalizada")
	return report, nil
}

// scanProduct detecta y registra las anomalías de un producto bajo su lock, de modo
// que dos corridas del mismo propietario no crucen la verificación de duplicados.
func (uc *DetectionUseCase) scanProduct(
	ctx context.Context,
	logger zerolog.Logger,
	ownerID string,
	s entity.ProductSalesSeries,
	now time.Time,
	report *dto.DetectionReport,
) {
	logger = logger.With().Str("product_id", s.ProductID).Logger()

	release, ok, err := uc.locker.TryLock(ctx, AnomalyLockKey(ownerID, s.ProductID))
	if err != nil {
		logger.Error().Err(err).Msg("no se pudo tomar el lock de detección")
		report.ProductsFailed++
		return
	}
	if !ok {
		logger.Debug().Msg("detección en curso en otra corrida, se omite")
		report.ProductsSkipped++
		return
	}
	defer release()
	report.ProductsScanned++

	cands, threshold, err := uc.detectProduct(ctx, s.Points)
	if err != nil {
		logger.Error().Err(err).Msg("detección de anomalías falló")
		report.ProductsFailed++
		return
	}
	for _, c := range cands {
		created, err := uc.createAlert(ctx, ownerID, s, c, threshold, now)
		if err != nil {
			logger.Error().Err(err).Msg("no se pudo crear la alerta")
			continue
		}
		if created {
			report.AlertsCreated++
		} else {
			report.AlertsSuppressed++
		}
	}
}

// detectProduct devuelve las anomalías ordenadas de más a menos grave.
func (uc *DetectionUseCase) detectProduct(ctx context.Context, points []entity.DailySales) ([]candidate, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()

	out, err := uc.model.DetectAnomalies(ctx, points)
	if err != nil {
		return nil, 0, err
	}
	if out == nil {
		return nil, 0, nil
	}

	cands := make([]candidate, 0, len(out.Anomalies))
	for _, a := range out.Anomalies {
		date, err := parseDate(a.Date)
		if err != nil {
			uc.log.Warn().Str("date", a.Date).Msg("fecha de anomalía inválida, se ignora")
			continue
		}
		sev, ok := forecast.ParseSeverity(a.Severity)
		if !ok {
			sev = forecast.ClassifySeverity(forecast.ResidualZScore(a.Actual, a.Predicted, out.Threshold))
		}
		cands = append(cands, candidate{
			date:      date,
			actual:    a.Actual,
			predicted: a.Predicted,
			residual:  a.Actual - a.Predicted,
			severity:  sev,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		ri, rj := forecast.SeverityRank(cands[i].severity), forecast.SeverityRank(cands[j].severity)
		if ri != rj {
			return ri > rj
		}
		return math.Abs(cands[i].residual) > math.Abs(cands[j].residual)
	})
	return cands, out.Threshold, nil
}

// createAlert crea la alerta salvo que exista otra del mismo (producto, tipo) en las últimas 24 h.
func (uc *DetectionUseCase) createAlert(
	ctx context.Context,
	ownerID string,
	s entity.ProductSalesSeries,
	c candidate,
	threshold float64,
	now time.Time,
) (bool, error) {
	exists, err := uc.alerts.ExistsSince(ctx, ownerID, s.ProductID, entity.AlertTypeSalesAnomaly, now.Add(-DedupWindow))
	if err != nil {
		return false, fmt.Errorf("exists since: %w", err)
	}
	if exists {
		return false, nil
	}

	alert := &entity.AnomalyAlert{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Type:        entity.AlertTypeSalesAnomaly,
		ProductID:   s.ProductID,
		ProductName: s.ProductName,
		Description: fmt.Sprintf("Sales anomaly detected for %s (actual: %.2f, predicted: %.2f)",
			s.ProductName, c.actual, c.predicted),
		Severity:    c.severity,
		Value:       c.actual,
		Predicted:   c.predicted,
		Threshold:   threshold,
		AnomalyDate: c.date,
		Timestamp:   now,
	}
	if err := uc.alerts.Create(ctx, alert); err != nil {
		return false, fmt.Errorf("create alert: %w", err)
	}
	if uc.notifier != nil {
		if err := uc.notifier.SendAnomalyAlert(ctx, alert); err != nil {
			uc.log.Warn().Err(err).Str("alert_id", alert.ID).Msg("no se pudo notificar la anomalía")
		}
	}
	return true, nil
}

// ListRecent últimas alertas del propietario.
func (uc *DetectionUseCase) ListRecent(ctx context.Context, ownerID string) ([]*entity.AnomalyAlert, error) {
	return uc.alerts.ListRecent(ctx, ownerID, RecentLimit)
}

// Delete elimina una alerta. ErrNotFound si no existe o es de otro propietario.
func (uc *DetectionUseCase) Delete(ctx context.Context, ownerID, id string) error {
	ok, err := uc.alerts.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// AnomalyLockKey clave del lock de detección por (propietario, producto).
func AnomalyLockKey(ownerID, productID string) string {
	return "anomaly:" + ownerID + ":" + productID
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: %w", s, domain.ErrInvalidInput)
}
