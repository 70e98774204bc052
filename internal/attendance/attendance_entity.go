package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// Work modes are a fixed set; the mobile client renders them as buttons.
const (
	WorkModeHospitalBase = "Hospital Base"
	WorkModeFieldDuty    = "Field Duty"
	WorkModeCampEvent    = "Camp/Event"
	WorkModeTraining     = "Training"
)

type Session struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`

	// Partial unique index (WHERE status = 'Open') backs the
	// one-open-session-per-worker invariant at the store level.
	WorkerID    uuid.UUID `gorm:"column:worker_id;type:uuid;not null;index:uq_attendance_sessions_open_worker,unique,where:status = 'Open'"`
	SessionDate time.Time `gorm:"column:session_date;type:date;not null;index"`

	Status string `gorm:"column:status;type:varchar(10);not null;default:Open;index"`

	ClockInTime  time.Time  `gorm:"column:clock_in_time;type:timestamptz;not null"`
	ClockOutTime *time.Time `gorm:"column:clock_out_time;type:timestamptz"`

	ClockInLatitude  *float64 `gorm:"column:clock_in_latitude"`
	ClockInLongitude *float64 `gorm:"column:clock_in_longitude"`
	ClockInAddress   string   `gorm:"column:clock_in_address;type:text"`

	ClockOutLatitude  *float64 `gorm:"column:clock_out_latitude"`
	ClockOutLongitude *float64 `gorm:"column:clock_out_longitude"`
	ClockOutAddress   *string  `gorm:"column:clock_out_address;type:text"`

	WorkMode string  `gorm:"column:work_mode;type:varchar(30);not null"`
	Note     *string `gorm:"column:note;type:text"`

	IsManualEntry bool    `gorm:"column:is_manual_entry;not null;default:false"`
	ManualReason  *string `gorm:"column:manual_reason;type:text"`

	// Final value, fixed at close time. Zero while Open; live elapsed time
	// is derived at read time and never persisted.
	DurationMinutes int `gorm:"column:duration_minutes;not null;default:0"`

	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
	Worker    *WorkerRef `gorm:"foreignKey:WorkerID;references:ID"`
}

func (Session) TableName() string {
	return "attendance_sessions"
}

type WorkerRef struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName string    `gorm:"column:full_name"`
}

func (WorkerRef) TableName() string {
	return "workers"
}

func IsValidWorkMode(mode string) bool {
	switch mode {
	case WorkModeHospitalBase, WorkModeFieldDuty, WorkModeCampEvent, WorkModeTraining:
		return true
	default:
		return false
	}
}
