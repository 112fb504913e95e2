package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a collaborator is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExternalService indicates an error from an upstream model or recognizer.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeRateLimited indicates the client exceeded the request rate.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Input errors
const (
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
)

// Caller-contract violations raised at API boundaries.
const (
	// ErrCodeInvalidThreshold indicates a confidence threshold outside [0, 1].
	ErrCodeInvalidThreshold ErrorCode = "INVALID_THRESHOLD"
	// ErrCodeUnorderedTokens indicates a token stream not ordered by start time.
	ErrCodeUnorderedTokens ErrorCode = "UNORDERED_TOKENS"
)

// ErrCodeInternal indicates an unexpected internal failure.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeExternalService:    true,
	ErrCodeRateLimited:        true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
