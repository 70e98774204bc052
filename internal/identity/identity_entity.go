package identity

import (
	"time"

	"github.com/google/uuid"
)

// Worker is a facility account: doctors, nurses, support staff, and the
// administrators who manage them.
type Worker struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName  string    `gorm:"not null"`
	Email     string    `gorm:"not null;uniqueIndex"`
	Password  string    `gorm:"not null"`
	Role      string    `gorm:"not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Worker) TableName() string {
	return "workers"
}
