package domain

import (
	"time"

	"gorm.io/datatypes"
)

// OutboxEvent is a mutation notification written in the same transaction as the mutation
// and published after commit. IDs are ULIDs, so id order is creation order.
type OutboxEvent struct {
	ID           string         `gorm:"column:id;type:varchar(26);primaryKey" json:"id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	EntityID     string         `gorm:"column:entity_id;index" json:"entity_id"`
	Payload      datatypes.JSON `gorm:"column:payload" json:"payload"`
	Attempts     int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastError    string         `gorm:"column:last_error" json:"last_error"`
	DispatchedAt *time.Time     `gorm:"column:dispatched_at;index" json:"dispatched_at"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
