package attendanceerrors

import (
	"net/http"

	"github.com/glbits/Rudraksha-Hospital-IMS/internal/shared/apperror"
)

var (
	ErrAlreadyOpen = apperror.New(
		apperror.CodeAlreadyOpen,
		"an open attendance session already exists, clock out first",
		http.StatusConflict,
	)
	ErrNoOpenSession = apperror.New(
		apperror.CodeNoOpenSession,
		"no open attendance session to clock out of",
		http.StatusConflict,
	)
	ErrInvalidLocation = apperror.New(
		apperror.CodeInvalidInput,
		"latitude and longitude are required",
		http.StatusBadRequest,
	)
	ErrInvalidWorkMode = apperror.New(
		apperror.CodeInvalidInput,
		"invalid work mode",
		http.StatusBadRequest,
	)
	ErrInvalidWorkerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid worker id",
		http.StatusBadRequest,
	)
	ErrManualReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"manualReason is required for manual entries",
		http.StatusBadRequest,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"administrator capability is required for manual attendance entries",
		http.StatusForbidden,
	)
)
