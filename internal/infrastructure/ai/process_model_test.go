package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type call struct {
	stdin []byte
	name  string
	args  []string
}

func fakeModel(stdout, stderr string, err error) (*ProcessModel, *call) {
	m := NewProcessModel(ProcessConfig{ForecastScript: "forecast.py", AnomalyScript: "anomaly.py"}, zerolog.Nop())
	c := &call{}
	m.run = func(_ context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
		c.stdin, c.name, c.args = stdin, name, args
		return []byte(stdout), []byte(stderr), err
	}
	return m, c
}

var series = []entity.DailySales{
	{Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Quantity: 4},
	{Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Quantity: 6},
}

// ──────────────────────────────────────────────────────────────────────────────
// Forecast
// ──────────────────────────────────────────────────────────────────────────────

func TestForecast_ParseaSalidaConTrazasPrevias(t *testing.T) {
	out := "Fitting ARIMA(5,1,0)...\n" +
		`{"forecast": [{"date": "2026-03-03T00:00:00", "forecasted_quantity": 5.5}, {"date": "2026-03-04T00:00:00", "forecasted_quantity": 6}],` +
		` "optimal_levels": {"safety_stock": 3.29, "reorder_point": 38.29, "economic_order_quantity": 427.2, "mean_demand": 5, "std_demand": 2}}` + "\n"
	m, c := fakeModel(out, "", nil)

	res, err := m.Forecast(context.Background(), series)
	require.NoError(t, err)

	assert.Equal(t, "python3", c.name)
	require.Len(t, c.args, 3)
	assert.Equal(t, []string{"forecast.py", "forecast"}, c.args[:2])
	assert.JSONEq(t, `[{"date":"2026-03-01T00:00:00Z","quantity":4},{"date":"2026-03-02T00:00:00Z","quantity":6}]`, c.args[2])
	assert.Nil(t, c.stdin)

	require.Len(t, res.Forecast, 2)
	assert.Equal(t, 5.5, res.Forecast[0].Quantity)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), res.Forecast[0].Date)
	assert.Empty(t, res.Fitted)
	assert.Equal(t, 38.29, res.OptimalLevels.ReorderPoint)
	assert.Equal(t, 2.0, res.OptimalLevels.StdDemand)
}

func TestForecast_ObjetoErrorEsFalloDuro(t *testing.T) {
	m, _ := fakeModel(`{"error": "Not enough data points for ARIMA forecast. Minimum 10 points required."}`, "", nil)

	_, err := m.Forecast(context.Background(), series)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.Contains(t, err.Error(), "Not enough data points")
}

func TestForecast_SalidaNoParseableEsFalloDuro(t *testing.T) {
	m, _ := fakeModel("Traceback (most recent call last):\n  ValueError: NaN", "", nil)

	_, err := m.Forecast(context.Background(), series)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestForecast_NaNEnLaSalidaEsFalloDuro(t *testing.T) {
	m, _ := fakeModel(`{"forecast": [], "optimal_levels": {"mean_demand": NaN}}`, "", nil)

	_, err := m.Forecast(context.Background(), series)
	assert.Error(t, err)
}

func TestForecast_CodigoDeSalidaDistintoDeCeroEsFalloDuro(t *testing.T) {
	m, _ := fakeModel("", "ModuleNotFoundError: statsmodels", errors.New("exit status 1"))

	_, err := m.Forecast(context.Background(), series)
	assert.Error(t, err)
}

func TestForecast_SinScriptConfigurado(t *testing.T) {
	m := NewProcessModel(ProcessConfig{}, zerolog.Nop())
	_, err := m.Forecast(context.Background(), series)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestForecast_ContextoCanceladoDevuelveErrorDelContexto(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, _ := fakeModel("", "", errors.New("signal: killed"))

	_, err := m.Forecast(ctx, series)
	assert.ErrorIs(t, err, context.Canceled)
}

// ──────────────────────────────────────────────────────────────────────────────
// DetectAnomalies
// ──────────────────────────────────────────────────────────────────────────────

func TestDetectAnomalies_EnviaSerieporStdinYParsea(t *testing.T) {
	out := `{"anomalies": [{"date": "2026-03-02", "actual_value": 40.0, "predicted_value": 10.5, "residual": 29.5, "severity": "High"}],` +
		` "model_parameters": {"p": 1, "d": 1, "q": 1}, "threshold": 4.5}`
	m, c := fakeModel(out, "", nil)

	res, err := m.DetectAnomalies(context.Background(), series)
	require.NoError(t, err)

	assert.Equal(t, []string{"anomaly.py"}, c.args)
	assert.JSONEq(t, `[{"date":"2026-03-01T00:00:00Z","quantity":4},{"date":"2026-03-02T00:00:00Z","quantity":6}]`, string(c.stdin))
	assert.Equal(t, 4.5, res.Threshold)
	require.Len(t, res.Anomalies, 1)
	a := res.Anomalies[0]
	assert.Equal(t, "2026-03-02", a.Date)
	assert.Equal(t, 40.0, a.Actual)
	assert.Equal(t, 10.5, a.Predicted)
	assert.Equal(t, "High", a.Severity)
}

func TestDetectAnomalies_ErrorEnStderrConSalidaUno(t *testing.T) {
	m, _ := fakeModel("", `{"error": "could not converge"}`, errors.New("exit status 1"))

	_, err := m.DetectAnomalies(context.Background(), series)

	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.Contains(t, err.Error(), "could not converge")
}

// ──────────────────────────────────────────────────────────────────────────────
// extractJSON
// ──────────────────────────────────────────────────────────────────────────────

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("debug {x}\n{\"a\":1}\n"))
	assert.Equal(t, `{"a":1}`, extractJSON(`{"a":1}`))
	assert.Equal(t, "{\n\"a\": 1\n}", extractJSON("log\n{\n\"a\": 1\n}"))
	assert.Empty(t, extractJSON("sin json"))
	assert.Empty(t, extractJSON("{roto"))
}
