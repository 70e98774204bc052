package dispatcherrors

import (
	"net/http"

	"github.com/glbits/Rudraksha-Hospital-IMS/internal/shared/apperror"
)

var (
	ErrNotClockedIn = apperror.New(
		apperror.CodeNotClockedIn,
		"an open attendance session is required to broadcast a request",
		http.StatusConflict,
	)
	ErrAlreadyClaimed = apperror.New(
		apperror.CodeAlreadyClaimed,
		"request has already been claimed by another responder",
		http.StatusConflict,
	)
	ErrInvalidState = apperror.New(
		apperror.CodeInvalidState,
		"request status does not allow this transition",
		http.StatusConflict,
	)
	ErrNotFound = apperror.New(
		apperror.CodeNotFound,
		"help request not found",
		http.StatusNotFound,
	)
	ErrNotAssignedResponder = apperror.New(
		apperror.CodeForbidden,
		"only the assigned responder can complete this request",
		http.StatusForbidden,
	)
	ErrNotRequester = apperror.New(
		apperror.CodeForbidden,
		"only the requester can cancel this request",
		http.StatusForbidden,
	)
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid request id",
		http.StatusBadRequest,
	)
	ErrInvalidPriority = apperror.New(
		apperror.CodeInvalidInput,
		"priority must be Routine, Urgent, or Emergency",
		http.StatusBadRequest,
	)
	ErrInvalidTaskType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown task type",
		http.StatusBadRequest,
	)
)
