// Package event delivers listing domain events to a log sink or a RabbitMQ
// topic exchange.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/estate/listings/internal/domain/shared"
)

// Envelope is the wire shape of a published event. Payload carries the full
// event body so consumers that know the type can decode the extra fields.
type Envelope struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps e.
func NewEnvelope(e shared.DomainEvent) (*Envelope, error) {
	if e == nil {
		return nil, fmt.Errorf("event is nil")
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.EventType(), err)
	}
	return &Envelope{
		ID:            e.EventID().String(),
		Type:          e.EventType(),
		AggregateType: e.AggregateType(),
		AggregateID:   e.AggregateID(),
		OccurredAt:    e.OccurredAt().UTC(),
		Payload:       payload,
	}, nil
}

// Marshal encodes e as an Envelope.
func Marshal(e shared.DomainEvent) ([]byte, error) {
	env, err := NewEnvelope(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
