package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "github.com/glbits/Rudraksha-Hospital-IMS/internal/attendance/errors"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/rbac"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	GetStatus(ctx context.Context, workerID string) (StatusResponse, error)
	ClockIn(ctx context.Context, workerID string, req ClockInRequest) (SessionResponse, error)
	ClockOut(ctx context.Context, workerID string, req ClockOutRequest) (SessionResponse, error)
	ManualClockIn(ctx context.Context, actorID, actorRole string, req ManualClockInRequest) (SessionResponse, error)
	ManualClockOut(ctx context.Context, actorID, actorRole string, req ManualClockOutRequest) (SessionResponse, error)
	GetAllForDate(ctx context.Context, date time.Time) (AdminDailyResponse, error)
	AggregateDailyStats(ctx context.Context, workerIDs []string, date time.Time) (map[string]DailyStat, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, logger: l, now: time.Now}
}

func (s *service) GetStatus(ctx context.Context, workerID string) (StatusResponse, error) {
	if _, err := uuid.Parse(workerID); err != nil {
		return StatusResponse{}, attendanceerrors.ErrInvalidWorkerID
	}

	open, err := s.repo.FindOpenByWorker(ctx, workerID)
	if err == nil {
		resp := s.mapToResponse(*open)
		return StatusResponse{Status: StatusOpen, Session: &resp}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return StatusResponse{}, err
	}

	today := s.today()
	last, err := s.repo.FindLastClosedByWorkerAndDate(ctx, workerID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusResponse{Status: StatusClosed}, nil
		}
		return StatusResponse{}, err
	}

	resp := s.mapToResponse(*last)
	return StatusResponse{Status: StatusClosed, Session: &resp}, nil
}

func (s *service) ClockIn(ctx context.Context, workerID string, req ClockInRequest) (SessionResponse, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return SessionResponse{}, attendanceerrors.ErrInvalidLocation
	}

	return s.openSession(ctx, openSessionParams{
		workerID: workerID,
		workMode: req.WorkMode,
		note:     req.Note,
		location: LocationPayload{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Address:   req.Address,
		},
	})
}

func (s *service) ClockOut(ctx context.Context, workerID string, req ClockOutRequest) (SessionResponse, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return SessionResponse{}, attendanceerrors.ErrInvalidLocation
	}

	return s.closeSession(ctx, workerID, &LocationPayload{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	}, nil)
}

func (s *service) ManualClockIn(ctx context.Context, actorID, actorRole string, req ManualClockInRequest) (SessionResponse, error) {
	if actorRole != rbac.RoleAdmin {
		return SessionResponse{}, attendanceerrors.ErrForbidden
	}
	if req.ManualReason == "" {
		return SessionResponse{}, attendanceerrors.ErrManualReasonRequired
	}

	s.logger.Info("manual clock-in requested",
		zap.String("actor_id", actorID),
		zap.String("target_worker_id", req.TargetWorkerID),
	)

	reason := req.ManualReason
	return s.openSession(ctx, openSessionParams{
		workerID:     req.TargetWorkerID,
		workMode:     req.WorkMode,
		manualReason: &reason,
	})
}

func (s *service) ManualClockOut(ctx context.Context, actorID, actorRole string, req ManualClockOutRequest) (SessionResponse, error) {
	if actorRole != rbac.RoleAdmin {
		return SessionResponse{}, attendanceerrors.ErrForbidden
	}
	if req.ManualReason == "" {
		return SessionResponse{}, attendanceerrors.ErrManualReasonRequired
	}

	s.logger.Info("manual clock-out requested",
		zap.String("actor_id", actorID),
		zap.String("target_worker_id", req.TargetWorkerID),
	)

	reason := req.ManualReason
	return s.closeSession(ctx, req.TargetWorkerID, nil, &reason)
}

type openSessionParams struct {
	workerID     string
	workMode     string
	note         *string
	location     LocationPayload
	manualReason *string
}

func (s *service) openSession(ctx context.Context, p openSessionParams) (SessionResponse, error) {
	workerUUID, err := uuid.Parse(p.workerID)
	if err != nil {
		return SessionResponse{}, attendanceerrors.ErrInvalidWorkerID
	}
	if !IsValidWorkMode(p.workMode) {
		return SessionResponse{}, attendanceerrors.ErrInvalidWorkMode
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SessionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	_, err = qtx.FindOpenByWorker(ctx, p.workerID)
	if err == nil {
		return SessionResponse{}, attendanceerrors.ErrAlreadyOpen
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SessionResponse{}, err
	}

	now := s.now().UTC()
	row := &Session{
		ID:               uuid.New(),
		WorkerID:         workerUUID,
		SessionDate:      now.Truncate(24 * time.Hour),
		Status:           StatusOpen,
		ClockInTime:      now,
		ClockInLatitude:  p.location.Latitude,
		ClockInLongitude: p.location.Longitude,
		ClockInAddress:   p.location.Address,
		WorkMode:         p.workMode,
		Note:             p.note,
		IsManualEntry:    p.manualReason != nil,
		ManualReason:     p.manualReason,
	}

	if err := qtx.Create(ctx, row); err != nil {
		s.logger.Error("open session persist failed",
			zap.String("worker_id", p.workerID),
			zap.Error(err),
		)
		return SessionResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return SessionResponse{}, err
	}

	s.logger.Info("session opened",
		zap.String("session_id", row.ID.String()),
		zap.String("worker_id", p.workerID),
		zap.String("work_mode", p.workMode),
		zap.Bool("manual", row.IsManualEntry),
	)
	return s.mapToResponse(*row), nil
}

func (s *service) closeSession(ctx context.Context, workerID string, loc *LocationPayload, manualReason *string) (SessionResponse, error) {
	if _, err := uuid.Parse(workerID); err != nil {
		return SessionResponse{}, attendanceerrors.ErrInvalidWorkerID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SessionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindOpenByWorker(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionResponse{}, attendanceerrors.ErrNoOpenSession
		}
		return SessionResponse{}, err
	}

	now := s.now().UTC()
	row.Status = StatusClosed
	row.ClockOutTime = &now
	row.DurationMinutes = int(now.Sub(row.ClockInTime).Minutes())
	if loc != nil {
		row.ClockOutLatitude = loc.Latitude
		row.ClockOutLongitude = loc.Longitude
		if loc.Address != "" {
			addr := loc.Address
			row.ClockOutAddress = &addr
		}
	}
	if manualReason != nil {
		row.IsManualEntry = true
		row.ManualReason = manualReason
	}

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("close session persist failed",
			zap.String("session_id", row.ID.String()),
			zap.Error(err),
		)
		return SessionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return SessionResponse{}, err
	}

	s.logger.Info("session closed",
		zap.String("session_id", row.ID.String()),
		zap.String("worker_id", workerID),
		zap.Int("duration_minutes", row.DurationMinutes),
	)
	return s.mapToResponse(*row), nil
}

func (s *service) GetAllForDate(ctx context.Context, date time.Time) (AdminDailyResponse, error) {
	rows, err := s.repo.FindAllByDate(ctx, date)
	if err != nil {
		return AdminDailyResponse{}, err
	}

	resp := AdminDailyResponse{
		Sessions: make([]SessionResponse, len(rows)),
		Stats:    s.buildStats(rows),
	}
	for i, r := range rows {
		resp.Sessions[i] = s.mapToResponse(r)
	}
	return resp, nil
}

func (s *service) AggregateDailyStats(ctx context.Context, workerIDs []string, date time.Time) (map[string]DailyStat, error) {
	for _, id := range workerIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, attendanceerrors.ErrInvalidWorkerID
		}
	}

	rows, err := s.repo.FindByWorkersAndDate(ctx, workerIDs, date)
	if err != nil {
		return nil, err
	}

	stats := s.buildStats(rows)

	// Workers with no sessions still get an entry.
	for _, id := range workerIDs {
		if _, ok := stats[id]; !ok {
			stats[id] = DailyStat{}
		}
	}
	return stats, nil
}

// buildStats folds a snapshot of session rows into per-worker aggregates.
// Live elapsed time for Open sessions is computed against the current
// clock on every call and never cached.
func (s *service) buildStats(rows []Session) map[string]DailyStat {
	now := s.now().UTC()
	stats := make(map[string]DailyStat)
	lastSeen := make(map[string]Session)

	for _, row := range rows {
		id := row.WorkerID.String()
		st := stats[id]

		if row.Status == StatusOpen {
			st.IsWorking = true
			st.TotalMinutes += int(now.Sub(row.ClockInTime).Minutes())
		} else {
			st.TotalMinutes += row.DurationMinutes
		}

		// The most recent relevant session: an Open one beats any Closed one.
		prev, seen := lastSeen[id]
		switch {
		case !seen, row.Status == StatusOpen:
			lastSeen[id] = row
		case prev.Status != StatusOpen && row.ClockInTime.After(prev.ClockInTime):
			lastSeen[id] = row
		}

		stats[id] = st
	}

	for id, row := range lastSeen {
		st := stats[id]
		st.LastKnownLocation = lastLocation(row)
		if row.IsManualEntry {
			st.LocationKind = LocationKindManual
		} else {
			st.LocationKind = LocationKindGPS
		}
		stats[id] = st
	}

	return stats
}

func lastLocation(row Session) string {
	if row.Status == StatusClosed && row.ClockOutAddress != nil && *row.ClockOutAddress != "" {
		return *row.ClockOutAddress
	}
	return row.ClockInAddress
}

func (s *service) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

func (s *service) mapToResponse(row Session) SessionResponse {
	resp := SessionResponse{
		ID:          row.ID.String(),
		WorkerID:    row.WorkerID.String(),
		Date:        row.SessionDate.Format("2006-01-02"),
		Status:      row.Status,
		ClockInTime: row.ClockInTime.Format(time.RFC3339),
		ClockInLocation: LocationResponse{
			Latitude:  row.ClockInLatitude,
			Longitude: row.ClockInLongitude,
			Address:   row.ClockInAddress,
		},
		WorkMode:        row.WorkMode,
		Note:            row.Note,
		IsManualEntry:   row.IsManualEntry,
		ManualReason:    row.ManualReason,
		DurationMinutes: row.DurationMinutes,
	}
	if row.Worker != nil {
		resp.WorkerName = row.Worker.FullName
	}
	if row.ClockOutTime != nil {
		v := row.ClockOutTime.Format(time.RFC3339)
		resp.ClockOutTime = &v
	}
	if row.ClockOutLatitude != nil || row.ClockOutAddress != nil {
		out := LocationResponse{
			Latitude:  row.ClockOutLatitude,
			Longitude: row.ClockOutLongitude,
		}
		if row.ClockOutAddress != nil {
			out.Address = *row.ClockOutAddress
		}
		resp.ClockOutLocation = &out
	}
	if row.Status == StatusOpen {
		resp.DurationMinutes = int(s.now().UTC().Sub(row.ClockInTime).Minutes())
	}
	return resp
}
