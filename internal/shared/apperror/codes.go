package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput   = "INVALID_INPUT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeInvalidState   = "INVALID_STATE"
	CodeAlreadyClaimed = "ALREADY_CLAIMED"
	CodeNotClockedIn   = "NOT_CLOCKED_IN"
	CodeAlreadyOpen    = "ALREADY_OPEN"
	CodeNoOpenSession  = "NO_OPEN_SESSION"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
