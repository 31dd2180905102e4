package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"
	ErrCodeConflict = "conflict"

	// Quiz session errors
	ErrCodeSessionNotFound    = "session_not_found"
	ErrCodeInvalidSessionID   = "invalid_session_id"
	ErrCodeSessionCompleted   = "session_completed"
	ErrCodeUnknownQuestion    = "unknown_question"
	ErrCodeEmptyResponse      = "empty_response"
	ErrCodeInvalidResponse    = "invalid_response"
	ErrCodeNothingToSave      = "nothing_to_save"
	ErrCodeSessionStartFailed = "session_start_failed"

	// Progress errors
	ErrCodeProgressNotFound    = "progress_not_found"
	ErrCodeProgressFetchFailed = "progress_fetch_failed"
	ErrCodeProgressSaveFailed  = "progress_save_failed"
	ErrCodeResetFailed         = "reset_failed"

	// Learning activity errors
	ErrCodeActivityFailed = "activity_failed"
	ErrCodeInvalidAction  = "invalid_action"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
