package credit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/glbits/Rudraksha-Hospital-IMS/internal/events"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DispatchCompletedConsumer tails the lifecycle topic and credits responders
// for every request_completed event. Other lifecycle events on the topic are
// acknowledged and skipped.
type DispatchCompletedConsumer struct {
	reader  *kafka.Reader
	service Service
	logger  *zap.Logger
}

func NewDispatchCompletedConsumer(
	broker string,
	groupID string,
	service Service,
	logger ...*zap.Logger,
) *DispatchCompletedConsumer {
	l := zap.L().Named("credit.consumer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("credit.consumer")
	}

	return &DispatchCompletedConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{broker},
			Topic:          events.DispatchLifecycleTopic,
			GroupID:        groupID,
			CommitInterval: time.Second,
			StartOffset:    kafka.FirstOffset,
		}),
		service: service,
		logger:  l,
	}
}

func (c *DispatchCompletedConsumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("consume dispatch lifecycle failed", zap.Error(err))
				continue
			}

			var event events.DispatchLifecycleEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Error("decode lifecycle event failed", zap.Error(err))
				if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
					c.logger.Error("commit invalid lifecycle event failed", zap.Error(commitErr))
				}
				continue
			}

			if event.EventType != events.EventRequestCompleted {
				if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
					c.logger.Error("commit skipped lifecycle event failed", zap.Error(commitErr))
				}
				continue
			}

			eventID := eventIdentity(event)
			if err := c.service.RecordCompletion(ctx, eventID, event, responderNameFromPayload(event)); err != nil {
				// Replayed event is safe to skip.
				if isDuplicateCreditEntry(err) {
					c.logger.Warn("completion already credited, skipping",
						zap.String("help_request_id", event.RequestID),
						zap.String("responder_id", event.ResponderID),
					)
					if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
						c.logger.Error("commit duplicate lifecycle event failed", zap.Error(commitErr))
					}
					continue
				}

				c.logger.Error("record completion credit failed",
					zap.String("help_request_id", event.RequestID),
					zap.String("responder_id", event.ResponderID),
					zap.Error(err),
				)
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("commit lifecycle event failed", zap.Error(err))
				continue
			}

			c.logger.Info("responder credited from lifecycle event",
				zap.String("help_request_id", event.RequestID),
				zap.String("responder_id", event.ResponderID),
			)
		}
	}()
}

func (c *DispatchCompletedConsumer) Close() error {
	return c.reader.Close()
}

// One help request completes at most once, so the request id plus event type
// is a stable identity even across outbox retries.
func eventIdentity(event events.DispatchLifecycleEvent) string {
	return event.EventType + ":" + event.RequestID
}

func responderNameFromPayload(event events.DispatchLifecycleEvent) string {
	var payload struct {
		AssignedResponderName *string `json:"assignedResponderName"`
	}
	if err := json.Unmarshal(event.Request, &payload); err != nil || payload.AssignedResponderName == nil {
		return ""
	}
	return *payload.AssignedResponderName
}

func isDuplicateCreditEntry(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_credit_entries_event"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_credit_entries_event")
}
