package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Quiz errors
	ErrCodeUnknownBank         = "unknown_bank"
	ErrCodeNoMatchingQuestions = "no_matching_questions"
	ErrCodeInvalidSelection    = "invalid_selection"
	ErrCodeInvalidSessionID    = "invalid_session_id"
	ErrCodeSessionNotFound     = "session_not_found"
	ErrCodeSessionInProgress   = "session_in_progress"
	ErrCodeSessionComplete     = "session_complete"
	ErrCodeSessionBusy         = "session_busy"
	ErrCodeSessionConflict     = "session_conflict"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"

	// Results and leaderboard errors
	ErrCodeResultsFetchFailed     = "results_fetch_failed"
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"
)
