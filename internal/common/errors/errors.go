// Package errors provides standardized error handling for the triage pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Configuration errors are fatal at startup, before any submission is
	// processed. Everything else is contained at or below the orchestrator.
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"

	ErrCodeCheckUnavailable ErrorCode = "CHECK_UNAVAILABLE"

	ErrCodeIssueFetchFailed    ErrorCode = "ISSUE_FETCH_FAILED"
	ErrCodeIssuePayloadInvalid ErrorCode = "ISSUE_PAYLOAD_INVALID"
	ErrCodeCommentPostFailed   ErrorCode = "COMMENT_POST_FAILED"
	ErrCodeCommentUpdateFailed ErrorCode = "COMMENT_UPDATE_FAILED"

	ErrCodeMappingLookupFailed ErrorCode = "MAPPING_LOOKUP_FAILED"
	ErrCodeWebsiteFetchFailed  ErrorCode = "WEBSITE_FETCH_FAILED"
	ErrCodeOutreachSendFailed  ErrorCode = "OUTREACH_SEND_FAILED"

	ErrCodeArchiveWriteFailed ErrorCode = "ARCHIVE_WRITE_FAILED"
	ErrCodeSearchIndexFailed  ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeStateStoreFailed   ErrorCode = "STATE_STORE_FAILED"

	ErrCodeSubmissionProcessingFailed ErrorCode = "SUBMISSION_PROCESSING_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigurationError creates a fatal configuration error.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCheckUnavailableError records a check whose prerequisite data is
// missing. Checks convert this into a fail outcome, never a panic.
func NewCheckUnavailableError(checkName, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCheckUnavailable,
		Message:   fmt.Sprintf("Check '%s' prerequisite missing", checkName),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIssueFetchFailedError creates a retryable issue-tracker fetch error.
func NewIssueFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIssueFetchFailed,
		Message:   "Issue tracker fetch error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIssuePayloadInvalidError creates a non-retryable payload contract error.
func NewIssuePayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIssuePayloadInvalid,
		Message:   "Issue payload failed contract validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCommentPostFailedError creates a retryable comment post error.
func NewCommentPostFailedError(issueNumber int64, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCommentPostFailed,
		Message:   "Report comment post failed",
		Details:   fmt.Sprintf("issue: %d, error: %s", issueNumber, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCommentUpdateFailedError creates a retryable comment update error.
func NewCommentUpdateFailedError(commentID int64, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCommentUpdateFailed,
		Message:   "Report comment update failed",
		Details:   fmt.Sprintf("comment: %d, error: %s", commentID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMappingLookupFailedError creates a retryable mapping-service error.
func NewMappingLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMappingLookupFailed,
		Message:   "Mapping service lookup error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebsiteFetchFailedError creates a non-retryable website fetch error;
// the check keeps its baseline and surfaces the cause as evidence.
func NewWebsiteFetchFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebsiteFetchFailed,
		Message:   "Website fetch error",
		Details:   fmt.Sprintf("url: %s, error: %s", url, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOutreachSendFailedError creates a retryable outreach delivery error.
func NewOutreachSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutreachSendFailed,
		Message:   "Outreach delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchiveWriteFailedError creates a retryable archive write error.
func NewArchiveWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveWriteFailed,
		Message:   "Result archive write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexFailedError creates a retryable search index error.
func NewSearchIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Result search indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStateStoreFailedError creates a retryable outreach state store error.
func NewStateStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStateStoreFailed,
		Message:   "Outreach state store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionProcessingError wraps an unexpected per-submission failure.
// It is caught at the orchestrator boundary; the batch continues.
func NewSubmissionProcessingError(issueNumber int64, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionProcessingFailed,
		Message:   "Submission processing failed",
		Details:   fmt.Sprintf("issue: %d, error: %s", issueNumber, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeIssueFetchFailed,
		ErrCodeCommentPostFailed,
		ErrCodeCommentUpdateFailed,
		ErrCodeArchiveWriteFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeStateStoreFailed,
		ErrCodeOutreachSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeMappingLookupFailed:
		return 2 // External rate-limited API

	default:
		return 0 // Business and contract errors: no retry
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
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "ISSUE") || strings.Contains(codeStr, "COMMENT"):
		return "ISSUE_TRACKER"
	case strings.Contains(codeStr, "MAPPING") || strings.Contains(codeStr, "WEBSITE"):
		return "COLLABORATOR"
	case strings.Contains(codeStr, "OUTREACH"):
		return "OUTREACH"
	case strings.Contains(codeStr, "ARCHIVE") || strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	case strings.Contains(codeStr, "CHECK"):
		return "CHECK"
	default:
		return "OTHER"
	}
}
