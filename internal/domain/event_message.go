package domain

import (
	"encoding/json"
	"time"
)

// EventMessage is the frame delivered to realtime listeners.
type EventMessage struct {
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data"`
	ID         string          `json:"id"`
	OccurredAt time.Time       `json:"occurred_at"`
}
