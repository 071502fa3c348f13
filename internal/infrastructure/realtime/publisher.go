package realtime

import (
	"context"
	"encoding/json"

	"dwello-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// HubPublisher delivers events straight to the local hub (single instance, no Redis).
type HubPublisher struct {
	Hub *Hub
}

func (p *HubPublisher) Publish(_ context.Context, msg domain.EventMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	p.Hub.Broadcast(b)
	return nil
}

// RedisPublisher publishes events on a Redis channel; every instance's Subscribe loop
// forwards them to its own hub.
type RedisPublisher struct {
	Rdb     *redis.Client
	Channel string
}

func (p *RedisPublisher) Publish(ctx context.Context, msg domain.EventMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.Rdb.Publish(ctx, p.Channel, b).Err()
}

// Subscribe forwards messages from channel to hub until ctx is done.
func Subscribe(ctx context.Context, rdb *redis.Client, channel string, hub *Hub) {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()
	ch := sub.Channel()
	log.Info().Str("channel", channel).Msg("realtime subscribed to event channel")
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			hub.Broadcast([]byte(m.Payload))
		}
	}
}
