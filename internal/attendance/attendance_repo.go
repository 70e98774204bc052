package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *Session) error
	Update(ctx context.Context, s *Session) error
	FindOpenByWorker(ctx context.Context, workerID string) (*Session, error)
	FindLastClosedByWorkerAndDate(ctx context.Context, workerID string, date time.Time) (*Session, error)
	FindAllByDate(ctx context.Context, date time.Time) ([]Session, error)
	FindByWorkersAndDate(ctx context.Context, workerIDs []string, date time.Time) ([]Session, error)
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

func (r *repository) Create(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) Update(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) FindOpenByWorker(ctx context.Context, workerID string) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Where("status = ?", StatusOpen).
		First(&s).Error
	return &s, err
}

func (r *repository) FindLastClosedByWorkerAndDate(ctx context.Context, workerID string, date time.Time) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Where("status = ?", StatusClosed).
		Where("session_date = ?", date.Format("2006-01-02")).
		Order("clock_out_time DESC").
		First(&s).Error
	return &s, err
}

func (r *repository) FindAllByDate(ctx context.Context, date time.Time) ([]Session, error) {
	var rows []Session
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Where("session_date = ?", date.Format("2006-01-02")).
		Order("clock_in_time DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByWorkersAndDate(ctx context.Context, workerIDs []string, date time.Time) ([]Session, error) {
	var rows []Session
	// Open sessions count toward the day regardless of their start date.
	err := r.db.WithContext(ctx).
		Where("worker_id IN ?", workerIDs).
		Where(r.db.Where("session_date = ?", date.Format("2006-01-02")).Or("status = ?", StatusOpen)).
		Order("clock_in_time ASC").
		Find(&rows).Error
	return rows, err
}
