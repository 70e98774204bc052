package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()

	_, ch1 := hub.Subscribe()
	_, ch2 := hub.Subscribe()
	assert.Equal(t, 2, hub.SubscriberCount())

	hub.Publish(context.Background(), Event{Name: "new_request", Payload: "r1"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			assert.Equal(t, "new_request", evt.Name)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()

	id, ch := hub.Subscribe()
	hub.Unsubscribe(id)
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-ch
	assert.False(t, open, "channel must be closed after unsubscribe")

	// Unsubscribing twice is harmless.
	hub.Unsubscribe(id)
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()

	_, slow := hub.Subscribe()
	_ = slow

	done := make(chan struct{})
	go func() {
		// Overflow the buffer; extra events are dropped, never queued.
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(context.Background(), Event{Name: "new_request", Payload: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Len(t, slow, subscriberBuffer)
}
