package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/redisx"
)

var _ ports.RealtimeEmitter = (*RedisEmitter)(nil)

// RedisEmitter publica eventos en el canal pub/sub notifications:{owner}.
// Sin suscriptores el mensaje se pierde (a lo sumo una vez).
type RedisEmitter struct {
	rdb *redis.Client
	log zerolog.Logger
	now func() time.Time
}

func NewRedisEmitter(rdb *redis.Client, log zerolog.Logger) *RedisEmitter {
	return &RedisEmitter{
		rdb: rdb,
		log: log.With().Str("component", "redis_emitter").Logger(),
		now: time.Now,
	}
}

func (e *RedisEmitter) Emit(ctx context.Context, ownerID, event string, payload any) error {
	b, err := marshalEnvelope(ownerID, event, payload, e.now())
	if err != nil {
		return err
	}
	n, err := e.rdb.Publish(ctx, redisx.NotificationChannel(ownerID), b).Result()
	if err != nil {
		return fmt.Errorf("redis publish %s: %w", event, err)
	}
	e.log.Debug().Str("owner_id", ownerID).Str("event", event).Int64("receivers", n).Msg("evento publicado")
	return nil
}

// Subscribe entrega los eventos del propietario hasta que ctx se cancela.
// El canal devuelto se cierra al terminar; mensajes malformados se descartan.
func (e *RedisEmitter) Subscribe(ctx context.Context, ownerID string) (<-chan *Envelope, error) {
	sub := e.rdb.Subscribe(ctx, redisx.NotificationChannel(ownerID))
	// Receive confirma la suscripción antes de devolver
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan *Envelope, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				env, err := DecodeEnvelope([]byte(m.Payload))
				if err != nil {
					e.log.Warn().Err(err).Str("owner_id", ownerID).Msg("mensaje descartado")
					continue
				}
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
