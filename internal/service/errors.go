package service

import (
	"errors"
	"fmt"

	"github.com/lexmatch/placement-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); unexpected errors are wrapped in
// MatchingServiceError instead.
var (
	// ErrMatchNotFound indicates that the match does not exist.
	ErrMatchNotFound = errors.New("match not found")

	// ErrNoEligibleStudents indicates a matching run was requested while no
	// student is eligible for placement.
	ErrNoEligibleStudents = errors.New("no students eligible for matching")

	// ErrNoOpenPositions indicates a matching run was requested while no
	// organization has open positions.
	ErrNoOpenPositions = errors.New("no organizations with open positions")

	// ErrInvalidResults indicates the computed assignment failed integrity
	// validation and was not persisted.
	ErrInvalidResults = errors.New("matching results failed validation")
)

// MatchingServiceError wraps errors from the matching service with context.
type MatchingServiceError struct {
	// Operation is the operation that failed (e.g., "run_matching", "accept_match")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for MatchingServiceError.
func (e *MatchingServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("matching service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("matching service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *MatchingServiceError) Unwrap() error {
	return e.Err
}

// NewMatchingServiceError creates a new MatchingServiceError.
// It returns known sentinel errors directly without wrapping.
func NewMatchingServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	// Service-defined sentinels pass through untouched
	if errors.Is(err, ErrMatchNotFound) ||
		errors.Is(err, ErrNoEligibleStudents) ||
		errors.Is(err, ErrNoOpenPositions) ||
		errors.Is(err, ErrInvalidResults) {
		return err
	}

	// Store-level sentinels map to service-level ones
	if errors.Is(err, store.ErrMatchNotFound) {
		return ErrMatchNotFound
	}

	return &MatchingServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
