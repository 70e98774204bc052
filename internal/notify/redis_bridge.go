package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelName = "ops.dispatch.push"

// RedisBridge routes published events through a redis channel so that every
// API instance delivers them to its own connected sessions. With a single
// instance the plain Hub is enough; the registry picks at wire-up time.
type RedisBridge struct {
	rdb    *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewRedisBridge(rdb *redis.Client, hub *Hub, logger ...*zap.Logger) *RedisBridge {
	l := zap.L().Named("notify.redis")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify.redis")
	}
	return &RedisBridge{rdb: rdb, hub: hub, logger: l}
}

type wireEvent struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (b *RedisBridge) Publish(ctx context.Context, evt Event) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		b.logger.Error("encode push event failed", zap.String("event", evt.Name), zap.Error(err))
		return
	}

	raw, _ := json.Marshal(wireEvent{Name: evt.Name, Payload: payload})
	if err := b.rdb.Publish(ctx, channelName, raw).Err(); err != nil {
		// Deliver locally anyway; other instances self-heal via polling.
		b.logger.Error("redis publish failed, delivering locally only", zap.Error(err))
		b.hub.Publish(ctx, evt)
	}
}

// Listen blocks until ctx is cancelled, feeding events from redis into the
// local hub. Run it in its own goroutine.
func (b *RedisBridge) Listen(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, channelName)
	defer sub.Close()

	b.logger.Info("push bridge listening", zap.String("channel", channelName))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("push bridge stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var evt wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				b.logger.Error("decode push event failed", zap.Error(err))
				continue
			}
			b.hub.Publish(ctx, Event{Name: evt.Name, Payload: evt.Payload})
		}
	}
}
