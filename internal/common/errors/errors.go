// Package errors provides the standardized error type shared by the intake engine,
// its adapters and the HTTP/worker surfaces.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Infrastructure errors are fatal to a form session; form errors reject a single action.
const (
	ErrCodeMarketConfigNotFound ErrorCode = "MARKET_CONFIG_NOT_FOUND"
	ErrCodeMarketConfigInvalid  ErrorCode = "MARKET_CONFIG_INVALID"

	ErrCodeContactNotFound    ErrorCode = "CONTACT_NOT_FOUND"
	ErrCodeContactReadFailed  ErrorCode = "CONTACT_READ_FAILED"
	ErrCodeContactWriteFailed ErrorCode = "CONTACT_WRITE_FAILED"

	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"

	ErrCodeFormAlreadySubmitted ErrorCode = "FORM_ALREADY_SUBMITTED"
	ErrCodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	ErrCodeUnknownOption        ErrorCode = "UNKNOWN_OPTION"
	ErrCodeInvalidAnswer        ErrorCode = "INVALID_ANSWER"

	ErrCodeInvitationSendFailed ErrorCode = "INVITATION_SEND_FAILED"
	ErrCodeInputParsingFailed   ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
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

// Is matches on code so callers can compare against the sentinel constructors' codes.
func (e *StandardError) Is(target error) bool {
	var other *StandardError
	if stderrors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewMarketConfigNotFoundError blocks the whole form; it is never a validation failure.
func NewMarketConfigNotFoundError(marketType, targetMarket string) *StandardError {
	return newError(ErrCodeMarketConfigNotFound,
		"No market configuration for the requested market",
		fmt.Sprintf("marketType: %s, targetMarket: %s", marketType, targetMarket),
		false, nil)
}

func NewMarketConfigInvalidError(details string) *StandardError {
	return newError(ErrCodeMarketConfigInvalid, "Market configuration is invalid", details, false, nil)
}

func NewContactNotFoundError(contactID string) *StandardError {
	return newError(ErrCodeContactNotFound, "Contact not found",
		fmt.Sprintf("contactId: %s", contactID), false, nil)
}

func NewContactReadFailedError(err error) *StandardError {
	return newError(ErrCodeContactReadFailed, "Contact repository read failed", err.Error(), true, err)
}

// NewContactWriteFailedError is retryable: the form stays on the summary and the
// same submit may be repeated.
func NewContactWriteFailedError(err error) *StandardError {
	return newError(ErrCodeContactWriteFailed, "Contact repository write failed", err.Error(), true, err)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Intake session not found or expired",
		fmt.Sprintf("sessionId: %s", sessionID), false, nil)
}

func NewSessionStoreFailedError(err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, "Session store unavailable", err.Error(), true, err)
}

func NewFormAlreadySubmittedError() *StandardError {
	return newError(ErrCodeFormAlreadySubmitted, "Form has already been submitted", "", false, nil)
}

func NewInvalidTransitionError(details string) *StandardError {
	return newError(ErrCodeInvalidTransition, "Transition not allowed from the current state", details, false, nil)
}

func NewUnknownOptionError(field, value string) *StandardError {
	return newError(ErrCodeUnknownOption, "Option is not offered in this market",
		fmt.Sprintf("field: %s, value: %s", field, value), false, nil)
}

func NewInvalidAnswerError(field, details string) *StandardError {
	return newError(ErrCodeInvalidAnswer, "Answer rejected",
		fmt.Sprintf("field: %s, %s", field, details), false, nil)
}

func NewInvitationSendFailedError(err error) *StandardError {
	return newError(ErrCodeInvitationSendFailed, "Invitation email could not be sent", err.Error(), true, err)
}

func NewInputParsingFailedError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Failed to parse input", err.Error(), false, err)
}

// CodeOf returns the error code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether the failed operation may be repeated unchanged.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}
