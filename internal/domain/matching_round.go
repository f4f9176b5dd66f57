package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MatchingRoundStatus represents the lifecycle state of a matching run.
type MatchingRoundStatus string

// Possible matching round status values
const (
	MatchingRoundStatusStarted   MatchingRoundStatus = "started"
	MatchingRoundStatusCompleted MatchingRoundStatus = "completed"
	MatchingRoundStatusFailed    MatchingRoundStatus = "failed"
)

// MatchingRound-specific validation errors
var (
	// ErrMatchingRoundIDEmpty is returned when a matching round ID is empty or nil.
	ErrMatchingRoundIDEmpty = errors.New("matching round ID cannot be empty")

	// ErrMatchingRoundNumberInvalid is returned when a round number is zero or negative.
	ErrMatchingRoundNumberInvalid = errors.New("matching round number must be positive")

	// ErrInvalidMatchingRoundStatus is returned when a round status is not a known value.
	ErrInvalidMatchingRoundStatus = errors.New("invalid matching round status")
)

// MatchingRound records one complete run of the matching algorithm, with
// summary counts filled in when the run completes.
type MatchingRound struct {
	ID                 uuid.UUID           `json:"id"`
	RoundNumber        int                 `json:"round_number"`
	Status             MatchingRoundStatus `json:"status"`
	StartedBy          uuid.UUID           `json:"started_by"`
	StartedAt          time.Time           `json:"started_at"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty"`
	TotalStudents      int                 `json:"total_students"`
	MatchedStudents    int                 `json:"matched_students"`
	TotalOrganizations int                 `json:"total_organizations"`
	ErrorMessage       string              `json:"error_message,omitempty"`
}

// NewMatchingRound creates a new MatchingRound in the started state.
// Returns an error if validation fails.
func NewMatchingRound(roundNumber int, startedBy uuid.UUID) (*MatchingRound, error) {
	round := &MatchingRound{
		ID:          uuid.New(),
		RoundNumber: roundNumber,
		Status:      MatchingRoundStatusStarted,
		StartedBy:   startedBy,
		StartedAt:   time.Now().UTC(),
	}

	if err := round.Validate(); err != nil {
		return nil, err
	}

	return round, nil
}

// Validate checks if the MatchingRound has valid data.
// Returns an error if any field fails validation.
func (r *MatchingRound) Validate() error {
	if r.ID == uuid.Nil {
		return ErrMatchingRoundIDEmpty
	}

	if r.RoundNumber <= 0 {
		return ErrMatchingRoundNumberInvalid
	}

	if !isValidMatchingRoundStatus(r.Status) {
		return ErrInvalidMatchingRoundStatus
	}

	return nil
}

// Complete marks the round as completed and records its summary counts.
func (r *MatchingRound) Complete(totalStudents, matchedStudents, totalOrganizations int) {
	now := time.Now().UTC()
	r.Status = MatchingRoundStatusCompleted
	r.CompletedAt = &now
	r.TotalStudents = totalStudents
	r.MatchedStudents = matchedStudents
	r.TotalOrganizations = totalOrganizations
}

// Fail marks the round as failed with the given error message.
func (r *MatchingRound) Fail(errorMessage string) {
	now := time.Now().UTC()
	r.Status = MatchingRoundStatusFailed
	r.CompletedAt = &now
	r.ErrorMessage = errorMessage
}

// isValidMatchingRoundStatus checks if the given status is a valid MatchingRoundStatus.
func isValidMatchingRoundStatus(status MatchingRoundStatus) bool {
	switch status {
	case MatchingRoundStatusStarted, MatchingRoundStatusCompleted, MatchingRoundStatusFailed:
		return true
	default:
		return false
	}
}
