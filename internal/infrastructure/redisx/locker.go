package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
)

var _ ports.KeyLocker = (*Locker)(nil)

// releaseScript borra la clave solo si el token coincide (no libera locks ajenos tras expirar el TTL).
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker KeyLocker distribuido sobre SET NX PX. Serializa la reposición de un producto
// entre instancias del servicio; el TTL acota un lock huérfano si el proceso muere.
type Locker struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewLocker construye el locker. ttl <= 0 usa TTLLock.
func NewLocker(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = TTLLock
	}
	return &Locker{rdb: rdb, ttl: ttl, log: log.With().Str("component", "redis_locker").Logger()}
}

// TryLock intenta tomar la clave sin bloquear.
func (l *Locker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	k := fmt.Sprintf(KeyLock, key)
	token := uuid.New().String()
	ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// contexto propio: el del caller puede estar cancelado al liberar
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{k}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", k).Msg("no se pudo liberar el lock")
		}
	}
	return release, true, nil
}
