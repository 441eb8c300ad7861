package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/scheduler"
)

const owner = "owner-1"

func TestStart_CorreDeInmediatoYLuegoPeriodicamente(t *testing.T) {
	var runs atomic.Int32
	s := scheduler.New("test", 20*time.Millisecond, func(context.Context, string) error {
		runs.Add(1)
		return nil
	}, zerolog.Nop())
	defer s.Stop()

	require.True(t, s.Start(owner))

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestStart_PropietarioYaProgramadoEsNoOp(t *testing.T) {
	s := scheduler.New("test", time.Hour, func(context.Context, string) error { return nil }, zerolog.Nop())
	defer s.Stop()

	assert.True(t, s.Start(owner))
	assert.False(t, s.Start(owner))
	assert.True(t, s.Start("owner-2"))
	assert.Equal(t, []string{owner, "owner-2"}, s.Owners())
}

func TestRunNow_CorridaEnCursoSeOmite(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var runs atomic.Int32
	s := scheduler.New("test", time.Hour, func(context.Context, string) error {
		runs.Add(1)
		started <- struct{}{}
		<-release
		return nil
	}, zerolog.Nop())
	defer s.Stop()

	go s.RunNow(context.Background(), owner)
	<-started

	assert.False(t, s.RunNow(context.Background(), owner), "no se superponen corridas del mismo propietario")
	close(release)

	assert.Eventually(t, func() bool {
		return s.RunNow(context.Background(), owner)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}

func TestRunNow_PropietariosDistintosCorrenEnParalelo(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	s := scheduler.New("test", time.Hour, func(_ context.Context, id string) error {
		if id == owner {
			started <- struct{}{}
			<-release
		}
		return nil
	}, zerolog.Nop())
	defer s.Stop()

	go s.RunNow(context.Background(), owner)
	<-started

	assert.True(t, s.RunNow(context.Background(), "owner-2"))
	close(release)
}

func TestRun_PanicSeRecuperaYLiberaElFlag(t *testing.T) {
	var runs atomic.Int32
	s := scheduler.New("test", 10*time.Millisecond, func(context.Context, string) error {
		if runs.Add(1) == 1 {
			panic("boom")
		}
		return errors.New("falla")
	}, zerolog.Nop())
	defer s.Stop()

	require.True(t, s.Start(owner))

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond,
		"la programación continúa tras pánico y error")
}

func TestStop_EsperaCorridasYCancelaElContexto(t *testing.T) {
	var runs atomic.Int32
	var cancelled atomic.Bool
	s := scheduler.New("test", 10*time.Millisecond, func(ctx context.Context, _ string) error {
		runs.Add(1)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}, zerolog.Nop())

	require.True(t, s.Start(owner))
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()

	assert.True(t, cancelled.Load(), "Stop espera a la corrida en curso")
	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no hay corridas después de Stop")
	assert.False(t, s.Start("owner-2"), "un scheduler detenido no acepta programaciones")
	s.Stop()
}

func TestTryRun_ComparteElFlagConElJob(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	s := scheduler.New("test", time.Hour, func(context.Context, string) error {
		started <- struct{}{}
		<-release
		return nil
	}, zerolog.Nop())
	defer s.Stop()

	go s.RunNow(context.Background(), owner)
	<-started

	var called atomic.Bool
	ran, err := s.TryRun(context.Background(), owner, func(context.Context) error {
		called.Store(true)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, ran, "un disparo manual no se superpone a la corrida periódica")
	assert.False(t, called.Load())

	close(release)
	assert.Eventually(t, func() bool {
		ran, _ := s.TryRun(context.Background(), owner, func(context.Context) error { return nil })
		return ran
	}, time.Second, 5*time.Millisecond)
}

func TestTryRun_DevuelveErrorYPanicDeFn(t *testing.T) {
	s := scheduler.New("test", time.Hour, func(context.Context, string) error { return nil }, zerolog.Nop())
	defer s.Stop()

	falla := errors.New("falla")
	ran, err := s.TryRun(context.Background(), owner, func(context.Context) error { return falla })
	assert.True(t, ran)
	assert.ErrorIs(t, err, falla)

	ran, err = s.TryRun(context.Background(), owner, func(context.Context) error { panic("boom") })
	assert.True(t, ran)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	ran, err = s.TryRun(context.Background(), owner, func(context.Context) error { return nil })
	assert.True(t, ran, "el flag se libera tras el pánico")
	assert.NoError(t, err)
}
