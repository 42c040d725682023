package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage is a lightweight notification that a transaction or
// budget was mutated. It carries only identity; consumers that need
// the full record read it from the persisted collections.
type ChangeMessage struct {
	Entity    string    `json:"entity"` // "transaction" or "budget"
	Op        string    `json:"op"`     // "created", "updated", "deleted"
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage builds a change message stamped with the current time.
func NewChangeMessage(entity, op, id string) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
