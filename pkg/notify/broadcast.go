package notify

import (
	"context"
	"encoding/json"
	"sync"

	"consoled/pkg/logger"
	"consoled/pkg/models"
	"consoled/pkg/telemetry"

	"github.com/redis/go-redis/v9"
)

// Broadcaster carries events between connected clients. Delivery is
// fire-and-forget: an offline recipient never sees the event and must
// discover unread state from its persisted flag on next connect.
type Broadcaster interface {
	Publish(ctx context.Context, ev models.Event) error
	Subscribe(ctx context.Context, fn func(models.Event)) error
	Close() error
}

// RedisBroadcaster fans events out over a Redis pub/sub channel.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
	pubsub  *redis.PubSub
}

// NewRedisBroadcaster connects to Redis at addr and uses the given
// channel for all console events.
func NewRedisBroadcaster(addr, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: channel,
	}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, ev models.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		logger.Error("broadcast_publish_failed", "event", ev.Event, "error", err)
		return err
	}
	telemetry.Broadcasts.WithLabelValues(ev.Event).Inc()
	logger.Debug("broadcast_published", "event", ev.Event, "recipients", len(ev.Users))
	return nil
}

// Subscribe starts a goroutine that decodes incoming events and hands
// them to fn. Malformed payloads are logged and dropped.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, fn func(models.Event)) error {
	b.pubsub = b.client.Subscribe(ctx, b.channel)
	// force the subscription to be established before returning
	if _, err := b.pubsub.Receive(ctx); err != nil {
		return err
	}
	ch := b.pubsub.Channel()
	go func() {
		for msg := range ch {
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Error("broadcast_decode_failed", "error", err)
				continue
			}
			fn(ev)
		}
	}()
	return nil
}

func (b *RedisBroadcaster) Close() error {
	if b.pubsub != nil {
		_ = b.pubsub.Close()
	}
	return b.client.Close()
}

// LoopbackBroadcaster delivers events to in-process subscribers only.
// Used for single-node runs and tests.
type LoopbackBroadcaster struct {
	mu   sync.RWMutex
	subs []func(models.Event)
}

func NewLoopbackBroadcaster() *LoopbackBroadcaster {
	return &LoopbackBroadcaster{}
}

func (b *LoopbackBroadcaster) Publish(ctx context.Context, ev models.Event) error {
	telemetry.Broadcasts.WithLabelValues(ev.Event).Inc()
	b.mu.RLock()
	subs := append([]func(models.Event){}, b.subs...)
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

func (b *LoopbackBroadcaster) Subscribe(ctx context.Context, fn func(models.Event)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
	return nil
}

func (b *LoopbackBroadcaster) Close() error { return nil }
