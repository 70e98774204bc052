package credit

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type responderTally struct {
	ResponderID     string
	ResponderName   string
	CompletedCount  int64
	LastCompletedAt *time.Time
}

//go:generate mockgen -source=credit_repo.go -destination=mock/credit_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, e *CreditEntry) error
	TallyByResponder(ctx context.Context, responderID string) (responderTally, error)
	Leaderboard(ctx context.Context, limit int) ([]responderTally, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *CreditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) TallyByResponder(ctx context.Context, responderID string) (responderTally, error) {
	var t responderTally
	err := r.db.WithContext(ctx).
		Model(&CreditEntry{}).
		Select("responder_id::text as responder_id, MAX(responder_name) as responder_name, COUNT(*) as completed_count, MAX(completed_at) as last_completed_at").
		Where("responder_id = ?", responderID).
		Group("responder_id").
		Scan(&t).Error
	return t, err
}

func (r *repository) Leaderboard(ctx context.Context, limit int) ([]responderTally, error) {
	var rows []responderTally
	err := r.db.WithContext(ctx).
		Model(&CreditEntry{}).
		Select("responder_id::text as responder_id, MAX(responder_name) as responder_name, COUNT(*) as completed_count, MAX(completed_at) as last_completed_at").
		Group("responder_id").
		Order("completed_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
