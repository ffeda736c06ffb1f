package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"

	// Leave validation rules, one code per rule so callers can map the
	// failure back to a specific form field.
	CodeInvalidRange      = "INVALID_RANGE"
	CodePastDate          = "PAST_DATE"
	CodeNonWorkingRange   = "NON_WORKING_RANGE"
	CodeOverlap           = "OVERLAP"
	CodeAllowanceExceeded = "ALLOWANCE_EXCEEDED"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeDeliveryFailed     = "DELIVERY_FAILED"
	CodeConfigError        = "CONFIG_ERROR"
)
