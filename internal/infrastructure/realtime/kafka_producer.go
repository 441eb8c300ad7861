package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
)

var _ ports.RealtimeEmitter = (*KafkaEmitter)(nil)

// ErrBufferFull el buffer del productor está lleno; el evento se descarta.
var ErrBufferFull = errors.New("kafka: buffer lleno")

// ErrProducerClosed el productor ya fue cerrado.
var ErrProducerClosed = errors.New("kafka: productor cerrado")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEmitter publica eventos en un topic particionado por owner_id.
// Publish no bloquea: encola en inbox y una goroutine escribe al broker.
type KafkaEmitter struct {
	w       messageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func NewKafkaEmitter(brokers []string, topic string, buf int, log zerolog.Logger) *KafkaEmitter {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaEmitter(w, buf, log)
}

func newKafkaEmitter(w messageWriter, buf int, log zerolog.Logger) *KafkaEmitter {
	if buf <= 0 {
		buf = 256
	}
	return &KafkaEmitter{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log.With().Str("component", "kafka_emitter").Logger(),
		now:     time.Now,
	}
}

// Start lanza la goroutine de escritura. Al cancelar ctx se vacía el buffer y se cierra el writer.
func (p *KafkaEmitter) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.Close()
				for m := range p.inbox {
					p.write(m)
				}
				p.closeWriter()
				return
			case m, ok := <-p.inbox:
				if !ok {
					p.closeWriter()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *KafkaEmitter) write(m kafka.Message) {
	wctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(wctx, m); err != nil {
		p.log.Error().Err(err).Str("owner_id", string(m.Key)).Msg("no se pudo escribir en kafka")
	}
}

func (p *KafkaEmitter) closeWriter() {
	if err := p.w.Close(); err != nil {
		p.log.Warn().Err(err).Msg("cerrando writer kafka")
	}
}

func (p *KafkaEmitter) Emit(_ context.Context, ownerID, event string, payload any) error {
	b, err := marshalEnvelope(ownerID, event, payload, p.now())
	if err != nil {
		return err
	}
	return p.Publish([]byte(ownerID), b, kafka.Header{Key: "event", Value: []byte(event)})
}

// Publish encola el mensaje sin bloquear.
func (p *KafkaEmitter) Publish(key, value []byte, headers ...kafka.Header) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: p.now(), Headers: headers}:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close cierra el inbox; la goroutine vacía lo pendiente y termina. Idempotente.
func (p *KafkaEmitter) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
	})
}

// WaitClosed espera a que la goroutine de Start termine.
func (p *KafkaEmitter) WaitClosed() { <-p.closeCh }
