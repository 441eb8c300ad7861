package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope formato común de los eventos publicados en cualquier canal.
type Envelope struct {
	Event     string          `json:"event"`
	OwnerID   string          `json:"owner_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

func marshalEnvelope(ownerID, event string, payload any, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	b, err := json.Marshal(Envelope{
		Event:     event,
		OwnerID:   ownerID,
		Payload:   raw,
		Timestamp: now.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return b, nil
}

// DecodeEnvelope parsea un mensaje recibido del canal.
func DecodeEnvelope(b []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if e.Event == "" {
		return nil, fmt.Errorf("decode envelope: evento vacío")
	}
	return &e, nil
}
