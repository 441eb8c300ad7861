package locking_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/locking"
)

func TestTryLock_ClaveTomadaNoSeConcede(t *testing.T) {
	l := locking.NewLocalLocker()
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = l.TryLock(ctx, "otra")
	assert.True(t, ok, "claves distintas no se bloquean entre sí")

	release()
	release() // idempotente

	_, ok, _ = l.TryLock(ctx, "k")
	assert.True(t, ok)
}

func TestTryLock_UnSoloGanadorEntreGoroutines(t *testing.T) {
	l := locking.NewLocalLocker()
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok, _ := l.TryLock(context.Background(), "k"); ok {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}
