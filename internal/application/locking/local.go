// Package locking implementaciones de ports.KeyLocker sin infraestructura externa.
package locking

import (
	"context"
	"sync"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
)

// LocalLocker KeyLocker en memoria para una sola instancia del servicio.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ ports.KeyLocker = (*LocalLocker)(nil)

// NewLocalLocker crea el locker en proceso.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// TryLock toma la clave si está libre. Nunca devuelve error.
func (l *LocalLocker) TryLock(_ context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}
