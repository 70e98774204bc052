package dispatch

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=dispatch_repo.go -destination=mock/dispatch_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *HelpRequest) error
	Update(ctx context.Context, r *HelpRequest) error
	FindByID(ctx context.Context, id string) (*HelpRequest, error)
	FindPending(ctx context.Context) ([]HelpRequest, error)
	FindByParticipant(ctx context.Context, workerID string) ([]HelpRequest, error)
	ClaimPending(ctx context.Context, id string, responderID uuid.UUID, responderName string, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, row *HelpRequest) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) Update(ctx context.Context, row *HelpRequest) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*HelpRequest, error) {
	var row HelpRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	return &row, err
}

func (r *repository) FindPending(ctx context.Context) ([]HelpRequest, error) {
	var rows []HelpRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByParticipant(ctx context.Context, workerID string) ([]HelpRequest, error) {
	var rows []HelpRequest
	err := r.db.WithContext(ctx).
		Where(r.db.Where("requester_id = ?", workerID).Or("assigned_responder_id = ?", workerID)).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ClaimPending is the first-wins claim: a single conditional UPDATE keyed on
// the Pending status. Exactly one concurrent caller observes RowsAffected == 1;
// everyone else gets 0 and must not mutate the row.
func (r *repository) ClaimPending(ctx context.Context, id string, responderID uuid.UUID, responderName string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&HelpRequest{}).
		Where("id = ?", id).
		Where("status = ?", StatusPending).
		Updates(map[string]any{
			"status":                  StatusAccepted,
			"assigned_responder_id":   responderID,
			"assigned_responder_name": responderName,
			"accepted_at":             at,
			"updated_at":              at,
		})
	return res.RowsAffected, res.Error
}
