package amqp

import (
	"encoding/json"
	"time"
)

// Entity kinds and actions carried by change events.
const (
	EntityTransaction = "transaction"
	EntityCard        = "card"
	EntityGoal        = "goal"

	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionProgress = "progress"
)

// EntityEvent announces a committed store mutation. It carries ids only;
// consumers read the current state from the store.
type EntityEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	CardID    string    `json:"cardId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntityEvent stamps an event with the current time.
func NewEntityEvent(entity, action, id string) *EntityEvent {
	return &EntityEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// WithCard records the card a transaction event refers to.
func (e *EntityEvent) WithCard(cardID string) *EntityEvent {
	e.CardID = cardID
	return e
}

func (e *EntityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EntityEventFromJSON(data []byte) (*EntityEvent, error) {
	var ev EntityEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
