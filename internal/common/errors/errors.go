package errors

import (
	"fmt"
	"time"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeConflict     ErrorCode = "CONFLICT"

	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"

	// Store errors are transient: the operator is expected to retry.
	ErrCodeStoreError ErrorCode = "STORE_ERROR"
	ErrCodeCacheError ErrorCode = "CACHE_ERROR"

	// The confirmed duplicate delete batch failed as a whole. Not retried
	// automatically, the operator has to run a fresh scan.
	ErrCodeBatchFailed ErrorCode = "BATCH_DELETE_FAILED"

	ErrCodeScanExpired ErrorCode = "SCAN_EXPIRED"
)

// AppError is the error type every handler ultimately reports.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for %q: %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewUserNotFoundError(id string) *AppError {
	return New(ErrCodeUserNotFound, fmt.Sprintf("user not found: %s", id)).
		WithDetail("user_id", id)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, "unauthorized: "+reason)
}

// NewStoreError wraps a transient document store failure. Marked retryable:
// nothing already served to the operator is invalidated by it.
func NewStoreError(operation string, err error) *AppError {
	appErr := Wrap(err, ErrCodeStoreError, "store operation failed: "+operation).
		WithDetail("operation", operation)
	appErr.Retryable = true
	return appErr
}

// NewBatchFailedError wraps a failed duplicate delete batch. The batch is
// atomic, so no documents were removed.
func NewBatchFailedError(err error, count int) *AppError {
	return Wrap(err, ErrCodeBatchFailed, "duplicate delete batch failed, no records were deleted").
		WithDetail("attempted", count)
}

func NewScanExpiredError(token string) *AppError {
	return New(ErrCodeScanExpired, "duplicate scan expired or unknown, run a new scan").
		WithDetail("scan_token", token)
}

func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound || e.Code == ErrCodeUserNotFound
}

func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeStoreError || e.Code == ErrCodeCacheError
}

// AsAppError extracts an *AppError when err is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
