package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Job trabajo periódico por propietario (ej. CheckStockLevels, Detect).
type Job func(ctx context.Context, ownerID string) error

// Scheduler ejecuta un Job por propietario al iniciar y luego cada interval.
// Nunca hay dos ejecuciones simultáneas para el mismo propietario: un tick que
// encuentra una corrida en curso se descarta.
type Scheduler struct {
	name     string
	interval time.Duration
	job      Job
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	stopped   bool
	scheduled map[string]bool
	inFlight  map[string]*atomic.Bool
}

// New crea un scheduler detenido hasta el primer Start.
func New(name string, interval time.Duration, job Job, log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		name:      name,
		interval:  interval,
		job:       job,
		log:       log.With().Str("component", "scheduler").Str("job", name).Logger(),
		ctx:       ctx,
		cancel:    cancel,
		scheduled: make(map[string]bool),
		inFlight:  make(map[string]*atomic.Bool),
	}
}

// Start programa al propietario: corre de inmediato y luego cada interval.
// Devuelve false si ya estaba programado o el scheduler fue detenido.
func (s *Scheduler) Start(ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.scheduled[ownerID] {
		return false
	}
	s.scheduled[ownerID] = true
	flag := s.flagLocked(ownerID)

	s.wg.Add(1)
	go s.loop(ownerID, flag)
	s.log.Info().Str("owner_id", ownerID).Dur("interval", s.interval).Msg("programación iniciada")
	return true
}

// RunNow ejecuta una corrida sincrónica respetando el flag del propietario.
// Devuelve false si ya había una corrida en curso.
func (s *Scheduler) RunNow(ctx context.Context, ownerID string) bool {
	s.mu.Lock()
	flag := s.flagLocked(ownerID)
	s.mu.Unlock()
	return s.run(ctx, ownerID, flag)
}

// TryRun ejecuta fn bajo el mismo flag que el Job del propietario, para
// disparos manuales que necesitan su propio resultado. ran=false si ya había
// una corrida en curso; err es el error (o pánico) de fn.
func (s *Scheduler) TryRun(ctx context.Context, ownerID string, fn func(ctx context.Context) error) (ran bool, err error) {
	s.mu.Lock()
	flag := s.flagLocked(ownerID)
	s.mu.Unlock()
	return s.guarded(ctx, ownerID, flag, fn)
}

// Owners propietarios programados.
func (s *Scheduler) Owners() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.scheduled))
	for id := range s.scheduled {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Stop cancela todas las programaciones y espera las corridas en curso.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.log.Info().Msg("scheduler detenido")
}

func (s *Scheduler) flagLocked(ownerID string) *atomic.Bool {
	flag, ok := s.inFlight[ownerID]
	if !ok {
		flag = &atomic.Bool{}
		s.inFlight[ownerID] = flag
	}
	return flag
}

func (s *Scheduler) loop(ownerID string, flag *atomic.Bool) {
	defer s.wg.Done()

	s.run(s.ctx, ownerID, flag)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.run(s.ctx, ownerID, flag)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, ownerID string, flag *atomic.Bool) bool {
	ran, _ := s.guarded(ctx, ownerID, flag, func(ctx context.Context) error {
		return s.job(ctx, ownerID)
	})
	return ran
}

func (s *Scheduler) guarded(ctx context.Context, ownerID string, flag *atomic.Bool, fn func(ctx context.Context) error) (ran bool, err error) {
	logger := s.log.With().Str("owner_id", ownerID).Logger()
	if !flag.CompareAndSwap(false, true) {
		logger.Warn().Msg("corrida anterior en curso, se omite")
		return false, nil
	}
	defer flag.Store(false)
	ran = true

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			logger.Error().Err(err).Msg("la corrida entró en pánico")
		}
	}()

	if err = fn(ctx); err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("la corrida falló")
		return ran, err
	}
	logger.Debug().Dur("elapsed", time.Since(start)).Msg("corrida completada")
	return ran, nil
}
