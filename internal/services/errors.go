package services

import (
	"errors"
	"fmt"

	apperrors "github.com/prepworks/scoring-service/internal/errors"
	"github.com/prepworks/scoring-service/internal/grading"
	"github.com/prepworks/scoring-service/internal/scoring"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")

	// Submission specific errors
	ErrQuestionSetNotFound  = errors.New("question set not found")
	ErrInvalidTestType      = errors.New("invalid test type")
	ErrHistoryEntryNotFound = errors.New("history entry not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// Re-exported so handlers can classify without importing the subpackages.
var (
	ErrGradingTimeout = grading.ErrGradingTimeout
	ErrInvalidSection = scoring.ErrInvalidSection
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// SaveFailedError is returned when persistence retries are exhausted. The
// grading result was computed; only the save failed. Retryable by the caller,
// and the backup id identifies the attempt for support-driven recovery.
type SaveFailedError struct {
	UserID   string `json:"user_id"`
	BackupID string `json:"backup_id"`
	Attempts int    `json:"attempts"`
	Err      error  `json:"-"`
}

func (e *SaveFailedError) Error() string {
	return fmt.Sprintf("failed to save test history for user %s after %d attempts (backup %s): %v",
		e.UserID, e.Attempts, e.BackupID, e.Err)
}

func (e *SaveFailedError) Unwrap() error {
	return e.Err
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionSetNotFound) ||
		errors.Is(err, ErrHistoryEntryNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrInvalidSection) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsSaveFailed checks if error represents an exhausted persistence attempt
func IsSaveFailed(err error) bool {
	var sfe *SaveFailedError
	return errors.As(err, &sfe)
}
