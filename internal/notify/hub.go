package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one push notification: the lifecycle event name plus the full
// current record, exactly what a connected client needs to patch its view.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

//go:generate mockgen -source=hub.go -destination=mock/publisher_mock.go -package=mock
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

const subscriberBuffer = 16

// Hub fans events out to connected sessions. Delivery is at-most-once and
// best-effort: a subscriber whose buffer is full loses the event, and the
// client recovers through its periodic poll of the stores.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	logger      *zap.Logger
}

func NewHub(logger ...*zap.Logger) *Hub {
	l := zap.L().Named("notify.hub")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify.hub")
	}
	return &Hub{
		subscribers: make(map[string]chan Event),
		logger:      l,
	}
}

func (h *Hub) Subscribe() (string, <-chan Event) {
	id := uuid.New().String()
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Debug("subscriber attached", zap.String("subscriber_id", id), zap.Int("total", count))
	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(_ context.Context, evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- evt:
		default:
			// Slow consumer; the poll path reconciles.
			h.logger.Warn("dropping event for slow subscriber",
				zap.String("subscriber_id", id),
				zap.String("event", evt.Name),
			)
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
