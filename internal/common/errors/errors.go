// Package errors provides standardized error handling for the assistant's
// HTTP surface and its optional Zeebe job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeUpstreamBusy      ErrorCode = "UPSTREAM_BUSY"
	ErrCodeUpstreamTimeout   ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamFailed    ErrorCode = "UPSTREAM_FAILED"
	ErrCodeUpstreamMalformed ErrorCode = "UPSTREAM_MALFORMED"

	ErrCodeDatasetInvalid    ErrorCode = "DATASET_INVALID"
	ErrCodeDatasetLoadFailed ErrorCode = "DATASET_LOAD_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeTranslationFailed  ErrorCode = "TRANSLATION_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError reports a malformed request.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Invalid request payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError reports an unknown chat session id.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Chat session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamBusyError reports rate limiting or overload at the model provider.
func NewUpstreamBusyError(status int, body string) *StandardError {
	return newError(ErrCodeUpstreamBusy, "Language model service is busy", fmt.Errorf("status %d: %s", status, body)).
		WithMetadata("status", status)
}

// NewUpstreamTimeoutError reports that the model call ran past its deadline.
func NewUpstreamTimeoutError(err error) *StandardError {
	return newError(ErrCodeUpstreamTimeout, "Language model request timed out", err)
}

// NewUpstreamFailedError reports a transport failure or a non-success status.
func NewUpstreamFailedError(err error) *StandardError {
	return newError(ErrCodeUpstreamFailed, "Language model request failed", err)
}

// NewUpstreamMalformedError reports model output that could not be used.
func NewUpstreamMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamMalformed,
		Message:   "Language model returned malformed output",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetInvalidError reports a record that violates dataset invariants.
func NewDatasetInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatasetInvalid,
		Message:   "Assessment dataset failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetLoadFailedError reports a failure reading the dataset source.
func NewDatasetLoadFailedError(err error) *StandardError {
	return newError(ErrCodeDatasetLoadFailed, "Assessment dataset could not be loaded", err)
}

// NewSessionStoreError reports a failure in the session backend.
func NewSessionStoreError(operation string, err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, fmt.Sprintf("Session store %s failed", operation), err)
}

// NewTranslationFailedError reports a translation that could not be produced.
func NewTranslationFailedError(err error) *StandardError {
	return newError(ErrCodeTranslationFailed, "Translation failed", err)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err)
}

// ==========================
// 3. Classification
// ==========================

// As extracts a *StandardError from err's chain. Anything else becomes INTERNAL_ERROR.
func As(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeUpstreamBusy:
		return http.StatusServiceUnavailable
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUpstreamFailed, ErrCodeUpstreamMalformed, ErrCodeTranslationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns the number of Zeebe job retries for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamBusy, ErrCodeUpstreamFailed, ErrCodeSessionStoreFailed:
		return 2
	case ErrCodeUpstreamTimeout:
		return 1
	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "UPSTREAM"), strings.HasPrefix(codeStr, "TRANSLATION"):
		return "AI"
	case strings.HasPrefix(codeStr, "DATASET"):
		return "DATASET"
	case strings.HasPrefix(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// ==========================
// 4. BPMN Error Integration
// ==========================

// BPMNError represents an error thrown to the Camunda workflow engine when
// the pipeline steps run as job workers.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError converts a StandardError to a BPMNError. Codes pass through unchanged.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: stdErr.Metadata,
	}
}
