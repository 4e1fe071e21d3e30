package services

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entity lifecycle event types, also used as routing keys.
const (
	EventEntityCreated = "entity.created"
	EventEntityUpdated = "entity.updated"
	EventEntityDeleted = "entity.deleted"
)

// Publisher delivers a serialized event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// EntityEvent is published after a mutation has been committed.
type EntityEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	EntityID   int       `json:"entity_id"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEntityEvent(eventType string, entityID int, name string, at time.Time) EntityEvent {
	return EntityEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		EntityID:   entityID,
		Name:       name,
		OccurredAt: at,
	}
}
