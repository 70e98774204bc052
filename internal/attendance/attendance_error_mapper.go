package attendance

import (
	"errors"
	"strings"

	attendanceerrors "github.com/glbits/Rudraksha-Hospital-IMS/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapRepositoryError translates store-level failures into domain errors.
// The partial unique index on Open sessions can fire when two clock-ins
// race past the service-level check.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_attendance_sessions_open_worker" {
			return attendanceerrors.ErrAlreadyOpen
		}
		return err
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_attendance_sessions_open_worker") {
		return attendanceerrors.ErrAlreadyOpen
	}

	return err
}
