package credit

import (
	"context"
	"time"

	"github.com/glbits/Rudraksha-Hospital-IMS/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultLeaderboardLimit = 10

//go:generate mockgen -source=credit_service.go -destination=mock/credit_service_mock.go -package=mock
type Service interface {
	RecordCompletion(ctx context.Context, eventID string, event events.DispatchLifecycleEvent, responderName string) error
	GetMine(ctx context.Context, workerID string) (CreditSummaryResponse, error)
	Leaderboard(ctx context.Context, limit int) ([]CreditSummaryResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("credit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("credit.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) RecordCompletion(ctx context.Context, eventID string, event events.DispatchLifecycleEvent, responderName string) error {
	responderID, err := uuid.Parse(event.ResponderID)
	if err != nil {
		return err
	}
	requestID, err := uuid.Parse(event.RequestID)
	if err != nil {
		return err
	}

	entry := &CreditEntry{
		ID:            uuid.New(),
		EventID:       eventID,
		ResponderID:   responderID,
		ResponderName: responderName,
		RequestID:     requestID,
		CompletedAt:   event.OccurredAt,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return err
	}

	s.logger.Info("completion credited",
		zap.String("responder_id", event.ResponderID),
		zap.String("help_request_id", event.RequestID),
	)
	return nil
}

func (s *service) GetMine(ctx context.Context, workerID string) (CreditSummaryResponse, error) {
	if _, err := uuid.Parse(workerID); err != nil {
		return CreditSummaryResponse{}, err
	}

	tally, err := s.repo.TallyByResponder(ctx, workerID)
	if err != nil {
		return CreditSummaryResponse{}, err
	}

	// A responder with no completions yet still gets a zeroed summary.
	if tally.ResponderID == "" {
		return CreditSummaryResponse{ResponderID: workerID}, nil
	}
	return mapTally(tally), nil
}

func (s *service) Leaderboard(ctx context.Context, limit int) ([]CreditSummaryResponse, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	tallies, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]CreditSummaryResponse, len(tallies))
	for i, t := range tallies {
		out[i] = mapTally(t)
	}
	return out, nil
}

func mapTally(t responderTally) CreditSummaryResponse {
	resp := CreditSummaryResponse{
		ResponderID:    t.ResponderID,
		ResponderName:  t.ResponderName,
		CompletedCount: t.CompletedCount,
	}
	if t.LastCompletedAt != nil {
		v := t.LastCompletedAt.Format(time.RFC3339)
		resp.LastCompletedAt = &v
	}
	return resp
}
