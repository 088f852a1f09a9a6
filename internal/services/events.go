package services

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Routing keys of published domain events.
const (
	EventRecipeCreated = "recipe.created"
	EventRecipeUpdated = "recipe.updated"
	EventRecipeDeleted = "recipe.deleted"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// Event is the JSON body of every published event.
type Event struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actor_id"`
	SubjectID  string    `json:"subject_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishEvent sends an event if a publisher is configured. Broker failures
// are logged and never fail the operation that produced the event.
func publishEvent(publisher EventPublisher, routingKey, actorID, subjectID string) {
	if publisher == nil {
		return
	}
	body, err := json.Marshal(Event{
		Type:       routingKey,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		zap.L().Error("failed to marshal event", zap.String("type", routingKey), zap.Error(err))
		return
	}
	if err := publisher.Publish(routingKey, body); err != nil {
		zap.L().Warn("failed to publish event",
			zap.String("type", routingKey),
			zap.String("subject_id", subjectID),
			zap.Error(err))
		return
	}
	zap.L().Debug("published event", zap.String("type", routingKey), zap.String("subject_id", subjectID))
}
