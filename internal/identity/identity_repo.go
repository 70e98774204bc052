package identity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=identity_repo.go -destination=mock/identity_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, w *Worker) error
	GetByEmail(ctx context.Context, email string) (*Worker, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Worker, error)
	FindAll(ctx context.Context) ([]Worker, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, w *Worker) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Worker, error) {
	var w Worker
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&w).Error
	return &w, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Worker, error) {
	var w Worker
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&w).Error
	return &w, err
}

func (r *repository) FindAll(ctx context.Context) ([]Worker, error) {
	var rows []Worker
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&rows).Error
	return rows, err
}
