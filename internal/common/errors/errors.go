// internal/common/errors/errors.go
// Package errors provides standardized error handling for the summary pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Generation errors
	ErrCodeNoResponses          ErrorCode = "NO_RESPONSES"
	ErrCodeInvalidResponseShape ErrorCode = "INVALID_RESPONSE_SHAPE"
	ErrCodeExternalCallFailure  ErrorCode = "EXTERNAL_CALL_FAILURE"
	ErrCodePersistenceFailure   ErrorCode = "PERSISTENCE_FAILURE"

	// Survey lifecycle errors
	ErrCodeSurveyNotFound       ErrorCode = "SURVEY_NOT_FOUND"
	ErrCodeSurveyNotActive      ErrorCode = "SURVEY_NOT_ACTIVE"
	ErrCodeDuplicateSurveyTitle ErrorCode = "DUPLICATE_SURVEY_TITLE"
	ErrCodeDuplicateResponse    ErrorCode = "DUPLICATE_RESPONSE"

	// Delivery errors
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeIndexingFailed         ErrorCode = "INDEXING_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewNoResponsesError creates a non-retryable error for surveys without
// responses. Retrying cannot help until someone responds.
func NewNoResponsesError(surveyID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoResponses,
		Message:   "Survey has no responses to summarize",
		Details:   fmt.Sprintf("surveyId: %d", surveyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidResponseShapeError creates a retryable error for malformed
// analysis output. A subsequent call may produce a well-formed payload.
func NewInvalidResponseShapeError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidResponseShape,
		Message:   "Analysis output missing required fields or unparsable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalCallFailureError creates a retryable error for analysis
// service transport failures.
func NewExternalCallFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalCallFailure,
		Message:   "Analysis service call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailureError creates a retryable storage-layer error.
func NewPersistenceFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailure,
		Message:   "Storage operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSurveyNotFoundError creates a non-retryable lookup error.
func NewSurveyNotFoundError(surveyID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeSurveyNotFound,
		Message:   "Survey not found",
		Details:   fmt.Sprintf("surveyId: %d", surveyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSurveyNotActiveError creates a non-retryable error for responses
// submitted to a survey that is no longer accepting them.
func NewSurveyNotActiveError(surveyID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeSurveyNotActive,
		Message:   "Survey is not accepting responses",
		Details:   fmt.Sprintf("surveyId: %d", surveyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateSurveyTitleError creates a non-retryable uniqueness error.
func NewDuplicateSurveyTitleError(companyID int64, title string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateSurveyTitle,
		Message:   "Company already has a survey with this title",
		Details:   fmt.Sprintf("companyId: %d, title: %s", companyID, title),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateResponseError creates a non-retryable uniqueness error.
func NewDuplicateResponseError(surveyID int64, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateResponse,
		Message:   "Participant has already responded to this survey",
		Details:   fmt.Sprintf("surveyId: %d, participantEmail: %s", surveyID, email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a retryable search-indexing error.
func NewIndexingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Summary indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError normalizes any error to a StandardError. Unknown errors
// are treated as retryable so the job's attempt ceiling still applies.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodePersistenceFailure,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether the error is worth another attempt.
func IsRetryable(err error) bool {
	return AsStandardError(err).Retryable
}

// CodeOf returns the error code, or PERSISTENCE_FAILURE for foreign errors.
func CodeOf(err error) ErrorCode {
	return AsStandardError(err).Code
}
