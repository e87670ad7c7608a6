// internal/app/services/notify/bus.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel shared by every instance.
const Channel = "foodgestor:notifications"

// Bus carries a payload to every socket of a restaurant, on this instance
// and, when it spans instances, on the others too.
type Bus interface {
	Broadcast(ctx context.Context, room string, payload []byte) error
}

// LocalBus delivers straight to the hub.
type LocalBus struct {
	Hub *Hub
}

func (b LocalBus) Broadcast(_ context.Context, room string, payload []byte) error {
	b.Hub.Deliver(room, payload)
	return nil
}

type envelope struct {
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBus publishes through Redis; Run delivers what arrives to the hub.
type RedisBus struct {
	rdb *redis.Client
	hub *Hub
	log *zap.Logger
}

func NewRedisBus(rdb *redis.Client, hub *Hub, logger *zap.Logger) *RedisBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{rdb: rdb, hub: hub, log: logger}
}

func (b *RedisBus) Broadcast(ctx context.Context, room string, payload []byte) error {
	msg, err := json.Marshal(envelope{Room: room, Payload: payload})
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, Channel, msg).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes and forwards messages to the local hub until ctx ends.
// ready, when non-nil, is closed once the subscription is confirmed.
func (b *RedisBus) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := b.rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
				b.log.Warn("bad notification envelope", zap.Error(err))
				continue
			}
			b.hub.Deliver(env.Room, env.Payload)
		}
	}
}

// NewRedis parses url and checks the server answers.
func NewRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
