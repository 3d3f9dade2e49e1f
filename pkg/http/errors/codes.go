package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound        = "not_found"
	ErrCodeQuizNotFound    = "quiz_not_found"
	ErrCodeAttemptNotFound = "attempt_not_found"
	ErrCodeResultNotFound  = "result_not_found"

	// Upstream repository errors
	ErrCodeUpstreamError     = "upstream_error"
	ErrCodeMalformedResponse = "malformed_response"

	// Attempt flow errors
	ErrCodeStaleAttempt = "stale_attempt"
	ErrCodeSubmitFailed = "submit_failed"

	// WebSocket errors
	ErrCodeConnectionError = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
