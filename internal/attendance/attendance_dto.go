package attendance

type LocationPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

type ClockInRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
	WorkMode  string   `json:"workMode" binding:"required"`
	Note      *string  `json:"note"`
}

type ClockOutRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

type ManualClockInRequest struct {
	TargetWorkerID string `json:"targetWorkerId" binding:"required"`
	WorkMode       string `json:"workMode" binding:"required"`
	ManualReason   string `json:"manualReason" binding:"required"`
}

type ManualClockOutRequest struct {
	TargetWorkerID string `json:"targetWorkerId" binding:"required"`
	ManualReason   string `json:"manualReason" binding:"required"`
}

type LocationResponse struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
}

type SessionResponse struct {
	ID               string            `json:"id"`
	WorkerID         string            `json:"workerId"`
	WorkerName       string            `json:"workerName,omitempty"`
	Date             string            `json:"date"`
	Status           string            `json:"status"`
	ClockInTime      string            `json:"clockInTime"`
	ClockOutTime     *string           `json:"clockOutTime,omitempty"`
	ClockInLocation  LocationResponse  `json:"clockInLocation"`
	ClockOutLocation *LocationResponse `json:"clockOutLocation,omitempty"`
	WorkMode         string            `json:"workMode"`
	Note             *string           `json:"note,omitempty"`
	IsManualEntry    bool              `json:"isManualEntry"`
	ManualReason     *string           `json:"manualReason,omitempty"`
	DurationMinutes  int               `json:"durationMinutes"`
}

// StatusResponse mirrors what the attendance page polls: the Open session
// if one exists, otherwise the last Closed session of the day (if any).
type StatusResponse struct {
	Status  string           `json:"status"`
	Session *SessionResponse `json:"session,omitempty"`
}

const (
	LocationKindGPS    = "GPS"
	LocationKindManual = "Manual"
)

type DailyStat struct {
	IsWorking         bool   `json:"isWorking"`
	TotalMinutes      int    `json:"totalMinutes"`
	LastKnownLocation string `json:"lastKnownLocation"`
	LocationKind      string `json:"locationKind"`
}

type AdminDailyResponse struct {
	Sessions []SessionResponse    `json:"sessions"`
	Stats    map[string]DailyStat `json:"stats"`
}
