package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the broker-facing representation of a domain event: routing
// metadata plus the JSON encoding of the event itself.
type Envelope struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	UserID        string
	Payload       []byte
	OccurredAt    time.Time
}

// NewEnvelope wraps a DomainEvent, marshalling the event as its payload.
func NewEnvelope(event DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}
	return Envelope{
		ID:            event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		EventType:     event.EventType(),
		UserID:        event.UserID(),
		Payload:       payload,
		OccurredAt:    event.OccurredAt(),
	}, nil
}

// Headers returns the envelope metadata as broker headers.
func (e Envelope) Headers() map[string]string {
	return map[string]string{
		"event_id":       e.ID,
		"event_type":     e.EventType,
		"aggregate_type": e.AggregateType,
		"user_id":        e.UserID,
		"occurred_at":    e.OccurredAt.Format(time.RFC3339Nano),
	}
}
