package dispatch

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "Pending"
	StatusAccepted  = "Accepted"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

const (
	PriorityRoutine   = "Routine"
	PriorityUrgent    = "Urgent"
	PriorityEmergency = "Emergency"
)

// Task types mirror the options on the request form; `Other` is the
// catch-all, so anything the form offers is accepted.
const (
	TaskGeneralAssistance = "General Assistance"
	TaskIVInjection       = "IV / Injection"
	TaskVitalsCheck       = "Vitals Check"
	TaskPatientTransport  = "Patient Transport"
	TaskCodeBlue          = "Code Blue"
	TaskOther             = "Other"
)

// HelpRequest is one broadcast from a requester. Requester and responder
// names are denormalized onto the row so listings never join the workers
// table and records stay readable after a worker is deactivated.
type HelpRequest struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequesterID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	RequesterName         string     `gorm:"not null"`
	Location              string     `gorm:"not null"`
	TaskType              string     `gorm:"not null"`
	Priority              string     `gorm:"not null;default:Routine"`
	Note                  *string    `gorm:"type:text"`
	Status                string     `gorm:"not null;default:Pending;index"`
	AssignedResponderID   *uuid.UUID `gorm:"type:uuid;index"`
	AssignedResponderName *string
	AcceptedAt            *time.Time
	CompletedAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (HelpRequest) TableName() string {
	return "help_requests"
}

func IsValidPriority(p string) bool {
	switch p {
	case PriorityRoutine, PriorityUrgent, PriorityEmergency:
		return true
	}
	return false
}

func IsValidTaskType(t string) bool {
	switch t {
	case TaskGeneralAssistance, TaskIVInjection, TaskVitalsCheck,
		TaskPatientTransport, TaskCodeBlue, TaskOther:
		return true
	}
	return false
}
