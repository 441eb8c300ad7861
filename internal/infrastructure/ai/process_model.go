package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

var _ ports.ForecastModel = (*ProcessModel)(nil)

// ProcessConfig rutas del intérprete y de los scripts del modelo ARIMA.
type ProcessConfig struct {
	PythonPath     string // ej. python3
	ForecastScript string // modo pronóstico: <python> <script> forecast '<json>'
	AnomalyScript  string // modo anomalías: <python> <script> con la serie por stdin
}

// runFunc ejecuta un proceso y devuelve stdout y stderr.
type runFunc func(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)

// ProcessModel adaptador del modelo estadístico externo ejecutado como subproceso.
// Un código de salida distinto de cero, un objeto {"error": ...} o una salida no parseable
// son fallos duros: el caller decide cómo degradar.
type ProcessModel struct {
	cfg ProcessConfig
	log zerolog.Logger
	run runFunc
}

// NewProcessModel construye el adaptador.
func NewProcessModel(cfg ProcessConfig, log zerolog.Logger) *ProcessModel {
	if cfg.PythonPath == "" {
		cfg.PythonPath = "python3"
	}
	return &ProcessModel{
		cfg: cfg,
		log: log.With().Str("component", "forecast_model").Logger(),
		run: execRun,
	}
}

// ─── Protocolo de salida ─────────────────────────────────────────────────────

type wirePoint struct {
	Date               string  `json:"date"`
	ForecastedQuantity float64 `json:"forecasted_quantity"`
}

type forecastOutput struct {
	Error         string               `json:"error"`
	Forecast      []wirePoint          `json:"forecast"`
	Fitted        []wirePoint          `json:"fitted"`
	OptimalLevels *ports.OptimalLevels `json:"optimal_levels"`
}

type wireAnomaly struct {
	Date           string  `json:"date"`
	ActualValue    float64 `json:"actual_value"`
	PredictedValue float64 `json:"predicted_value"`
	Residual       float64 `json:"residual"`
	Severity       string  `json:"severity"`
}

type anomalyOutput struct {
	Error     string        `json:"error"`
	Anomalies []wireAnomaly `json:"anomalies"`
	Threshold float64       `json:"threshold"`
}

// Forecast ejecuta el modo pronóstico pasando la serie como argumento.
func (m *ProcessModel) Forecast(ctx context.Context, series []entity.DailySales) (*ports.ModelForecast, error) {
	if m.cfg.ForecastScript == "" {
		return nil, fmt.Errorf("forecast script no configurado: %w", domain.ErrModelUnavailable)
	}
	payload, err := json.Marshal(series)
	if err != nil {
		return nil, fmt.Errorf("marshal series: %w", err)
	}

	raw, err := m.exec(ctx, nil, m.cfg.ForecastScript, "forecast", string(payload))
	if err != nil {
		return nil, err
	}

	var out forecastOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse forecast output: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("modelo: %s: %w", firstLine(out.Error), domain.ErrModelUnavailable)
	}
	if out.OptimalLevels == nil {
		return nil, fmt.Errorf("salida sin optimal_levels: %w", domain.ErrModelUnavailable)
	}

	forecast, err := toPoints(out.Forecast)
	if err != nil {
		return nil, err
	}
	fitted, err := toPoints(out.Fitted)
	if err != nil {
		return nil, err
	}
	return &ports.ModelForecast{
		Forecast:      forecast,
		Fitted:        fitted,
		OptimalLevels: *out.OptimalLevels,
	}, nil
}

// DetectAnomalies ejecuta el detector de anomalías con la serie por stdin.
func (m *ProcessModel) DetectAnomalies(ctx context.Context, series []entity.DailySales) (*ports.ModelAnomalies, error) {
	if m.cfg.AnomalyScript == "" {
		return nil, fmt.Errorf("anomaly script no configurado: %w", domain.ErrModelUnavailable)
	}
	payload, err := json.Marshal(series)
	if err != nil {
		return nil, fmt.Errorf("marshal series: %w", err)
	}

	raw, err := m.exec(ctx, payload, m.cfg.AnomalyScript)
	if err != nil {
		return nil, err
	}

	var out anomalyOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse anomaly output: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("modelo: %s: %w", firstLine(out.Error), domain.ErrModelUnavailable)
	}

	res := &ports.ModelAnomalies{Threshold: out.Threshold, Anomalies: make([]ports.ModelAnomaly, 0, len(out.Anomalies))}
	for _, a := range out.Anomalies {
		res.Anomalies = append(res.Anomalies, ports.ModelAnomaly{
			Date:      a.Date,
			Actual:    a.ActualValue,
			Predicted: a.PredictedValue,
			Residual:  a.Residual,
			Severity:  a.Severity,
		})
	}
	return res, nil
}

// exec corre el script y devuelve el objeto JSON de su salida estándar.
func (m *ProcessModel) exec(ctx context.Context, stdin []byte, script string, args ...string) ([]byte, error) {
	start := time.Now()
	stdout, stderr, err := m.run(ctx, stdin, m.cfg.PythonPath, append([]string{script}, args...)...)
	logger := m.log.With().Str("script", script).Dur("elapsed", time.Since(start)).Logger()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("modelo cancelado: %w", ctxErr)
		}
		// El detector escribe {"error": ...} en stderr antes de salir con código 1.
		if msg := errorField(stderr); msg != "" {
			return nil, fmt.Errorf("modelo: %s: %w", firstLine(msg), domain.ErrModelUnavailable)
		}
		logger.Debug().Str("stderr", truncate(string(stderr), 512)).Msg("stderr del modelo")
		return nil, fmt.Errorf("ejecutar modelo: %w", err)
	}

	raw := extractJSON(string(stdout))
	if raw == "" {
		return nil, fmt.Errorf("salida del modelo sin JSON: %w", domain.ErrModelUnavailable)
	}
	logger.Debug().Int("bytes", len(raw)).Msg("modelo ejecutado")
	return []byte(raw), nil
}

func execRun(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	cmd.WaitDelay = 2 * time.Second
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var dateLayouts = []string{"2006-01-02T15:04:05", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseModelDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q en salida del modelo", s)
}

func toPoints(in []wirePoint) ([]ports.ForecastPoint, error) {
	out := make([]ports.ForecastPoint, 0, len(in))
	for _, p := range in {
		d, err := parseModelDate(p.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, ports.ForecastPoint{Date: d, Quantity: p.ForecastedQuantity})
	}
	return out, nil
}

// extractJSON devuelve el objeto JSON de la salida del script. Los scripts pueden imprimir
// trazas antes del resultado, así que se prefiere la última línea que sea un objeto válido.
func extractJSON(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "{") && json.Valid([]byte(line)) {
			return line
		}
	}
	// Fallback: del primer '{' al último '}'
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ""
	}
	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return ""
	}
	return candidate
}

func errorField(stderr []byte) string {
	raw := extractJSON(string(stderr))
	if raw == "" {
		return ""
	}
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return ""
	}
	return e.Error
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i != -1 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
