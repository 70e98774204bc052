package notify

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const heartbeatInterval = 15 * time.Second

type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub, logger: zap.L().Named("notify.sse")}
}

// Stream is the push endpoint. Each connected client gets its own hub
// subscription for the lifetime of the HTTP connection.
func (h *Handler) Stream(c *gin.Context) {
	id, ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	h.logger.Info("push stream opened",
		zap.String("subscriber_id", id),
		zap.String("worker_id", c.GetString("worker_id")),
	)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(evt.Name, evt.Payload)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})

	h.logger.Info("push stream closed", zap.String("subscriber_id", id))
}
