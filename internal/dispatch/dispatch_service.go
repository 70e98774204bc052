package dispatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/glbits/Rudraksha-Hospital-IMS/internal/attendance"
	dispatcherrors "github.com/glbits/Rudraksha-Hospital-IMS/internal/dispatch/errors"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/events"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/messaging/kafka"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/notify"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	poolCacheKey = "dispatch:pool:pending"
	poolCacheTTL = 2 * time.Second
)

//go:generate mockgen -source=dispatch_service.go -destination=mock/dispatch_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, requesterID, requesterName string, req CreateRequestBody) (RequestResponse, error)
	Accept(ctx context.Context, responderID, responderName, requestID string) (RequestResponse, error)
	Complete(ctx context.Context, responderID, requestID string) (RequestResponse, error)
	Cancel(ctx context.Context, requesterID, requestID string) (RequestResponse, error)
	ListPool(ctx context.Context) ([]RequestResponse, error)
	ListMine(ctx context.Context, workerID string) ([]RequestResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	attendance attendance.Service
	outbox     kafka.OutboxRepository
	notifier   notify.Publisher
	rdb        *redis.Client
	poolGroup  singleflight.Group
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	att attendance.Service,
	outbox kafka.OutboxRepository,
	notifier notify.Publisher,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("dispatch.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dispatch.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		attendance: att,
		outbox:     outbox,
		notifier:   notifier,
		rdb:        rdb,
		logger:     l,
		now:        time.Now,
	}
}

func (s *service) Create(ctx context.Context, requesterID, requesterName string, req CreateRequestBody) (RequestResponse, error) {
	requesterUUID, err := uuid.Parse(requesterID)
	if err != nil {
		return RequestResponse{}, dispatcherrors.ErrInvalidRequestID
	}
	if !IsValidPriority(req.Priority) {
		return RequestResponse{}, dispatcherrors.ErrInvalidPriority
	}
	if !IsValidTaskType(req.TaskType) {
		return RequestResponse{}, dispatcherrors.ErrInvalidTaskType
	}

	// Broadcasting is an on-shift act: the requester must hold an open
	// attendance session at the moment of creation.
	status, err := s.attendance.GetStatus(ctx, requesterID)
	if err != nil {
		return RequestResponse{}, err
	}
	if status.Status != attendance.StatusOpen {
		return RequestResponse{}, dispatcherrors.ErrNotClockedIn
	}

	now := s.now().UTC()
	row := &HelpRequest{
		ID:            uuid.New(),
		RequesterID:   requesterUUID,
		RequesterName: requesterName,
		Location:      req.Location,
		TaskType:      req.TaskType,
		Priority:      req.Priority,
		Note:          req.Note,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, row); err != nil {
		s.logger.Error("create help request persist failed",
			zap.String("requester_id", requesterID),
			zap.Error(err),
		)
		return RequestResponse{}, err
	}

	resp := mapToResponse(*row)
	if err := s.enqueueOutbox(ctx, tx, events.EventNewRequest, row, resp); err != nil {
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RequestResponse{}, err
	}

	s.invalidatePoolCache(ctx)
	s.publish(ctx, events.EventNewRequest, resp)

	s.logger.Info("help request broadcast",
		zap.String("request_id", row.ID.String()),
		zap.String("requester_id", requesterID),
		zap.String("task_type", row.TaskType),
		zap.String("priority", row.Priority),
	)
	return resp, nil
}

func (s *service) Accept(ctx context.Context, responderID, responderName, requestID string) (RequestResponse, error) {
	responderUUID, err := uuid.Parse(responderID)
	if err != nil {
		return RequestResponse{}, dispatcherrors.ErrInvalidRequestID
	}
	if _, err := uuid.Parse(requestID); err != nil {
		return RequestResponse{}, dispatcherrors.ErrInvalidRequestID
	}

	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	claimed, err := qtx.ClaimPending(ctx, requestID, responderUUID, responderName, now)
	if err != nil {
		return RequestResponse{}, err
	}
	if claimed == 0 {
		// Either the request never existed or someone else won. The loser
		// gets a conflict, never a silent reassignment.
		if _, err := s.repo.FindByID(ctx, requestID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return RequestResponse{}, dispatcherrors.ErrNotFound
			}
			return RequestResponse{}, err
		}
		return RequestResponse{}, dispatcherrors.ErrAlreadyClaimed
	}

	row, err := qtx.FindByID(ctx, requestID)
	if err != nil {
		return RequestResponse{}, err
	}

	resp := mapToResponse(*row)
	if err := s.enqueueOutbox(ctx, tx, events.EventRequestAccepted, row, resp); err != nil {
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RequestResponse{}, err
	}

	s.invalidatePoolCache(ctx)
	s.publish(ctx, events.EventRequestAccepted, resp)

	s.logger.Info("help request claimed",
		zap.String("request_id", requestID),
		zap.String("responder_id", responderID),
	)
	return resp, nil
}

func (s *service) Complete(ctx context.Context, responderID, requestID string) (RequestResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, dispatcherrors.ErrNotFound
		}
		return RequestResponse{}, err
	}

	if row.Status != StatusAccepted {
		return RequestResponse{}, dispatcherrors.ErrInvalidState
	}
	if row.AssignedResponderID == nil || row.AssignedResponderID.String() != responderID {
		return RequestResponse{}, dispatcherrors.ErrNotAssignedResponder
	}

	now := s.now().UTC()
	row.Status = StatusCompleted
	row.CompletedAt = &now
	row.UpdatedAt = now

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("complete help request persist failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return RequestResponse{}, err
	}

	resp := mapToResponse(*row)
	if err := s.enqueueOutbox(ctx, tx, events.EventRequestCompleted, row, resp); err != nil {
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RequestResponse{}, err
	}

	s.publish(ctx, events.EventRequestCompleted, resp)

	s.logger.Info("help request completed",
		zap.String("request_id", requestID),
		zap.String("responder_id", responderID),
	)
	return resp, nil
}

func (s *service) Cancel(ctx context.Context, requesterID, requestID string) (RequestResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, dispatcherrors.ErrNotFound
		}
		return RequestResponse{}, err
	}

	if row.RequesterID.String() != requesterID {
		return RequestResponse{}, dispatcherrors.ErrNotRequester
	}
	// A claimed request is already someone's work in progress.
	if row.Status != StatusPending {
		return RequestResponse{}, dispatcherrors.ErrInvalidState
	}

	now := s.now().UTC()
	row.Status = StatusCancelled
	row.UpdatedAt = now

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("cancel help request persist failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return RequestResponse{}, err
	}

	resp := mapToResponse(*row)
	if err := s.enqueueOutbox(ctx, tx, events.EventRequestCancelled, row, resp); err != nil {
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RequestResponse{}, err
	}

	s.invalidatePoolCache(ctx)
	s.publish(ctx, events.EventRequestCancelled, resp)

	s.logger.Info("help request cancelled",
		zap.String("request_id", requestID),
		zap.String("requester_id", requesterID),
	)
	return resp, nil
}

// ListPool returns every Pending request, newest first. Reads are collapsed
// through singleflight and cached briefly in redis; every mutation of the
// pool deletes the key, so the TTL only bounds staleness between instances.
func (s *service) ListPool(ctx context.Context) ([]RequestResponse, error) {
	v, err, _ := s.poolGroup.Do(poolCacheKey, func() (any, error) {
		if s.rdb != nil {
			if raw, err := s.rdb.Get(ctx, poolCacheKey).Result(); err == nil {
				var cached []RequestResponse
				if json.Unmarshal([]byte(raw), &cached) == nil {
					return cached, nil
				}
			}
		}

		rows, err := s.repo.FindPending(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]RequestResponse, len(rows))
		for i, row := range rows {
			out[i] = mapToResponse(row)
		}

		if s.rdb != nil {
			if raw, err := json.Marshal(out); err == nil {
				if err := s.rdb.Set(ctx, poolCacheKey, raw, poolCacheTTL).Err(); err != nil {
					s.logger.Warn("pool cache write failed", zap.Error(err))
				}
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]RequestResponse), nil
}

func (s *service) ListMine(ctx context.Context, workerID string) ([]RequestResponse, error) {
	if _, err := uuid.Parse(workerID); err != nil {
		return nil, dispatcherrors.ErrInvalidRequestID
	}

	rows, err := s.repo.FindByParticipant(ctx, workerID)
	if err != nil {
		return nil, err
	}

	out := make([]RequestResponse, len(rows))
	for i, row := range rows {
		out[i] = mapToResponse(row)
	}
	return out, nil
}

func (s *service) enqueueOutbox(ctx context.Context, tx *sql.Tx, eventType string, row *HelpRequest, resp RequestResponse) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)

	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal lifecycle payload failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	event := events.DispatchLifecycleEvent{
		EventType:   eventType,
		RequestID:   row.ID.String(),
		RequesterID: row.RequesterID.String(),
		OccurredAt:  s.now().UTC(),
		Request:     payload,
	}
	if row.AssignedResponderID != nil {
		event.ResponderID = row.AssignedResponderID.String()
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "help_request",
		AggregateID:   row.ID.String(),
		EventType:     eventType,
		Topic:         events.DispatchLifecycleTopic,
		Payload:       raw,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("lifecycle outbox persist failed",
			zap.String("help_request_id", row.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) publish(ctx context.Context, name string, resp RequestResponse) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ctx, notify.Event{Name: name, Payload: resp})
}

func (s *service) invalidatePoolCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, poolCacheKey).Err(); err != nil {
		s.logger.Warn("pool cache invalidation failed", zap.Error(err))
	}
}

func mapToResponse(row HelpRequest) RequestResponse {
	resp := RequestResponse{
		ID:            row.ID.String(),
		RequesterID:   row.RequesterID.String(),
		RequesterName: row.RequesterName,
		Location:      row.Location,
		TaskType:      row.TaskType,
		Priority:      row.Priority,
		Note:          row.Note,
		Status:        row.Status,
		CreatedAt:     row.CreatedAt.Format(time.RFC3339),
	}
	if row.AssignedResponderID != nil {
		v := row.AssignedResponderID.String()
		resp.AssignedResponderID = &v
	}
	resp.AssignedResponderName = row.AssignedResponderName
	if row.AcceptedAt != nil {
		v := row.AcceptedAt.Format(time.RFC3339)
		resp.AcceptedAt = &v
	}
	if row.CompletedAt != nil {
		v := row.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp
}
