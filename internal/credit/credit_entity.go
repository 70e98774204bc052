package credit

import (
	"time"

	"github.com/google/uuid"
)

// CreditEntry is one completed help request credited to a responder. The
// unique event id makes replayed lifecycle events harmless: the second
// insert hits the constraint and is skipped.
type CreditEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID       string    `gorm:"not null;uniqueIndex:uq_credit_entries_event"`
	ResponderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ResponderName string    `gorm:"not null"`
	RequestID     uuid.UUID `gorm:"type:uuid;not null"`
	CompletedAt   time.Time `gorm:"not null"`
	CreatedAt     time.Time
}

func (CreditEntry) TableName() string {
	return "credit_entries"
}
