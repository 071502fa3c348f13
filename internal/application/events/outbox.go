// Package events records mutation notifications in the outbox and publishes them after commit.
package events

import (
	"encoding/json"
	"time"

	"dwello-backend/internal/domain"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record appends an event to the outbox using tx, so it commits or rolls back with the mutation.
func Record(tx *gorm.DB, name, entityID string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&domain.OutboxEvent{
		ID:        ulid.Make().String(),
		Name:      name,
		EntityID:  entityID,
		Payload:   datatypes.JSON(b),
		CreatedAt: time.Now().UTC(),
	}).Error
}

// Deleted is the payload of *Deleted events.
func Deleted(id interface{}) map[string]interface{} {
	return map[string]interface{}{"id": id}
}
