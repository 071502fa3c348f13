package events

import (
	"context"
	"encoding/json"
	"time"

	"dwello-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	defaultBatchSize   = 100
	defaultMaxAttempts = 5
)

// Publisher delivers one event to listeners.
type Publisher interface {
	Publish(ctx context.Context, msg domain.EventMessage) error
}

// Dispatcher drains the outbox in id order. A failed publish stops the batch so later
// events for the same entity are never delivered ahead of it; after MaxAttempts the
// event is abandoned.
type Dispatcher struct {
	DB          *gorm.DB
	Publisher   Publisher
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int

	wake chan struct{}
}

func NewDispatcher(db *gorm.DB, pub Publisher, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Dispatcher{
		DB:          db,
		Publisher:   pub,
		Interval:    interval,
		BatchSize:   defaultBatchSize,
		MaxAttempts: defaultMaxAttempts,
		wake:        make(chan struct{}, 1),
	}
}

// Notify asks the dispatcher to drain now instead of waiting for the next tick. Safe on nil.
func (d *Dispatcher) Notify() {
	if d == nil || d.wake == nil {
		return
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run drains on every tick and every Notify until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.wake:
		}
		if _, err := d.DispatchPending(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("outbox dispatch failed")
		}
	}
}

// DispatchPending publishes one batch of undelivered events and returns how many were delivered.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	maxAttempts := d.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	batchSize := d.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var pending []domain.OutboxEvent
	if err := d.DB.WithContext(ctx).
		Where("dispatched_at IS NULL AND attempts < ?", maxAttempts).
		Order("id ASC").
		Limit(batchSize).
		Find(&pending).Error; err != nil {
		return 0, err
	}

	delivered := 0
	for _, ev := range pending {
		msg := domain.EventMessage{
			Event:      ev.Name,
			Data:       json.RawMessage(ev.Payload),
			ID:         ev.ID,
			OccurredAt: ev.CreatedAt,
		}
		if err := d.Publisher.Publish(ctx, msg); err != nil {
			attempts := ev.Attempts + 1
			if uerr := d.DB.WithContext(ctx).Model(&domain.OutboxEvent{}).Where("id = ?", ev.ID).
				Updates(map[string]interface{}{"attempts": attempts, "last_error": err.Error()}).Error; uerr != nil {
				return delivered, uerr
			}
			if attempts >= maxAttempts {
				log.Error().Err(err).Str("event", ev.Name).Str("id", ev.ID).Int("attempts", attempts).Msg("abandoning outbox event")
				continue
			}
			log.Warn().Err(err).Str("event", ev.Name).Str("id", ev.ID).Int("attempts", attempts).Msg("publish failed, will retry")
			return delivered, nil
		}
		now := time.Now().UTC()
		if err := d.DB.WithContext(ctx).Model(&domain.OutboxEvent{}).Where("id = ?", ev.ID).
			Update("dispatched_at", now).Error; err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
