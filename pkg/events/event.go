package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	AggregateType() string
	UserID() string
	OccurredAt() time.Time
}

// BaseEvent carries the metadata shared by every domain event. Its fields are
// exported so that concrete events embedding it serialise them as part of
// their JSON payload.
type BaseEvent struct {
	ID            string    `json:"event_id"`
	Type          string    `json:"event_type"`
	Aggregate     string    `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
	Owner         string    `json:"user_id"`
	Occurred      time.Time `json:"occurred_at"`
}

// NewBaseEvent creates a BaseEvent with a generated ID. occurredAt is
// normalised to UTC.
func NewBaseEvent(eventType, aggregateID, aggregateType, userID string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		ID:            uuid.New().String(),
		Type:          eventType,
		Aggregate:     aggregateID,
		AggregateKind: aggregateType,
		Owner:         userID,
		Occurred:      occurredAt.UTC(),
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) AggregateType() string { return e.AggregateKind }
func (e BaseEvent) UserID() string        { return e.Owner }
func (e BaseEvent) OccurredAt() time.Time { return e.Occurred }
