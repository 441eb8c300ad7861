package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) snapshot() ([]kafka.Message, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...), w.closed
}

// ─── Envelope ────────────────────────────────────────────────────────────────

func TestEnvelope_RoundTripConservaPayload(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b, err := marshalEnvelope("owner-1", "reorderAlert", map[string]int{"quantity": 20}, now)
	require.NoError(t, err)

	env, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, "reorderAlert", env.Event)
	assert.Equal(t, "owner-1", env.OwnerID)
	assert.True(t, env.Timestamp.Equal(now))

	var p map[string]int
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, 20, p["quantity"])
}

func TestDecodeEnvelope_RechazaSinEvento(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"owner_id":"o"}`))
	assert.Error(t, err)

	_, err = DecodeEnvelope([]byte(`no-json`))
	assert.Error(t, err)
}

// ─── KafkaEmitter ────────────────────────────────────────────────────────────

func TestKafkaEmitter_EmitEscribeConClaveDelPropietario(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaEmitter(w, 8, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	require.NoError(t, p.Emit(ctx, "owner-1", "notification", map[string]string{"title": "x"}))
	p.Close()
	p.WaitClosed()

	msgs, closed := w.snapshot()
	require.Len(t, msgs, 1)
	assert.True(t, closed)
	assert.Equal(t, "owner-1", string(msgs[0].Key))
	require.Len(t, msgs[0].Headers, 1)
	assert.Equal(t, "notification", string(msgs[0].Headers[0].Value))
}

func TestKafkaEmitter_CancelarContextoVaciaBuffer(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaEmitter(w, 8, zerolog.Nop())

	// se encola antes de arrancar: todo debe escribirse al cancelar
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Publish([]byte("o"), []byte("v")))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Start(ctx)
	p.WaitClosed()

	msgs, closed := w.snapshot()
	assert.Len(t, msgs, 3)
	assert.True(t, closed)
}

func TestKafkaEmitter_BufferLlenoNoBloquea(t *testing.T) {
	p := newKafkaEmitter(&fakeWriter{}, 1, zerolog.Nop())

	require.NoError(t, p.Publish([]byte("o"), []byte("1")))
	err := p.Publish([]byte("o"), []byte("2"))
	assert.ErrorIs(t, err, ErrBufferFull)
}

func TestKafkaEmitter_PublishTrasCloseDevuelveError(t *testing.T) {
	p := newKafkaEmitter(&fakeWriter{}, 4, zerolog.Nop())
	p.Close()
	p.Close()

	err := p.Publish([]byte("o"), []byte("v"))
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestKafkaEmitter_ErrorDeEscrituraNoDetieneElLoop(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := newKafkaEmitter(w, 4, zerolog.Nop())
	p.Start(context.Background())

	require.NoError(t, p.Publish([]byte("o"), []byte("1")))
	require.NoError(t, p.Publish([]byte("o"), []byte("2")))
	p.Close()
	p.WaitClosed()

	msgs, closed := w.snapshot()
	assert.Empty(t, msgs)
	assert.True(t, closed)
}
