package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// ─── ForecastModel ───────────────────────────────────────────────────────────

// Model modelo estadístico configurable por función.
type Model struct {
	ForecastFn func(ctx context.Context, series []entity.DailySales) (*ports.ModelForecast, error)
	AnomalyFn  func(ctx context.Context, series []entity.DailySales) (*ports.ModelAnomalies, error)

	ForecastCalls atomic.Int32
	AnomalyCalls  atomic.Int32
}

var _ ports.ForecastModel = (*Model)(nil)

func (m *Model) Forecast(ctx context.Context, series []entity.DailySales) (*ports.ModelForecast, error) {
	m.ForecastCalls.Add(1)
	if m.ForecastFn == nil {
		return nil, domain.ErrModelUnavailable
	}
	return m.ForecastFn(ctx, series)
}

func (m *Model) DetectAnomalies(ctx context.Context, series []entity.DailySales) (*ports.ModelAnomalies, error) {
	m.AnomalyCalls.Add(1)
	if m.AnomalyFn == nil {
		return &ports.ModelAnomalies{}, nil
	}
	return m.AnomalyFn(ctx, series)
}

// ─── RealtimeEmitter ─────────────────────────────────────────────────────────

// Event evento emitido al canal en tiempo real.
type Event struct {
	OwnerID string
	Name    string
	Payload any
}

// Emitter registra los eventos emitidos. Err se devuelve en cada Emit (tras registrar).
type Emitter struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

var _ ports.RealtimeEmitter = (*Emitter)(nil)

func (e *Emitter) Emit(_ context.Context, ownerID, event string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, Event{OwnerID: ownerID, Name: event, Payload: payload})
	return e.Err
}

// Events copia de los eventos emitidos.
func (e *Emitter) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// Names nombres de los eventos emitidos, en orden.
func (e *Emitter) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Name
	}
	return out
}

// ─── KeyLocker ───────────────────────────────────────────────────────────────

// HeldLocker locker con claves tomadas de antemano (simula otra corrida en curso).
type HeldLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

var _ ports.KeyLocker = (*HeldLocker)(nil)

// NewHeldLocker crea un locker con keys ya tomadas.
func NewHeldLocker(keys ...string) *HeldLocker {
	l := &HeldLocker{held: map[string]bool{}}
	for _, k := range keys {
		l.held[k] = true
	}
	return l
}

func (l *HeldLocker) TryLock(_ context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, true, nil
}
