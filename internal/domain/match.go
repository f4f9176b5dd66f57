package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MatchStatus represents the lifecycle state of a match.
type MatchStatus string

// Possible match status values
const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusAccepted MatchStatus = "accepted"
	MatchStatusRejected MatchStatus = "rejected"
)

// MatchType distinguishes how a match was created.
type MatchType string

// Possible match type values
const (
	MatchTypeAlgorithmic MatchType = "algorithmic"
	MatchTypeManual      MatchType = "manual"
)

// Match-specific validation errors
var (
	// ErrMatchIDEmpty is returned when a match ID is empty or nil.
	ErrMatchIDEmpty = errors.New("match ID cannot be empty")

	// ErrMatchStudentIDEmpty is returned when a match's student ID is empty or nil.
	ErrMatchStudentIDEmpty = errors.New("match student ID cannot be empty")

	// ErrMatchOrganizationIDEmpty is returned when a match's organization ID is empty or nil.
	ErrMatchOrganizationIDEmpty = errors.New("match organization ID cannot be empty")

	// ErrInvalidMatchStatus is returned when a match status is not a known value.
	ErrInvalidMatchStatus = errors.New("invalid match status")

	// ErrInvalidMatchType is returned when a match type is not a known value.
	ErrInvalidMatchType = errors.New("invalid match type")

	// ErrMatchNotPending is returned when accepting or rejecting a match that
	// has already left the pending state. Decisions are final; a new match
	// must be created to revisit one.
	ErrMatchNotPending = errors.New("match is not pending")

	// ErrMatchActorEmpty is returned when an accept/reject action has no acting user.
	ErrMatchActorEmpty = errors.New("match action requires an acting user ID")
)

// MatchScores holds the five weighted component scores that sum to the
// total match score. Each value is already scaled by its component weight.
type MatchScores struct {
	Ranking   float64 `json:"ranking"`
	Grades    float64 `json:"grades"`
	Statement float64 `json:"statement"`
	Location  float64 `json:"location"`
	WorkMode  float64 `json:"work_mode"`
}

// Total returns the sum of all component scores.
func (s MatchScores) Total() float64 {
	return s.Ranking + s.Grades + s.Statement + s.Location + s.WorkMode
}

// Match represents a proposed placement of a student at an organization.
// Matches are created pending and move to accepted or rejected exactly once;
// every transition produces a MatchHistory entry for the audit trail.
type Match struct {
	ID             uuid.UUID   `json:"id"`
	StudentID      uuid.UUID   `json:"student_id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	Status         MatchStatus `json:"status"`
	Type           MatchType   `json:"type"`
	Score          float64     `json:"score"`
	Scores         MatchScores `json:"scores"`
	RoundNumber    int         `json:"round_number"`
	CreatedBy      uuid.UUID   `json:"created_by,omitempty"`
	ModifiedBy     uuid.UUID   `json:"modified_by,omitempty"`
	AcceptedAt     *time.Time  `json:"accepted_at,omitempty"`
	RejectedAt     *time.Time  `json:"rejected_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// MatchHistory is an immutable audit record of a match status transition.
type MatchHistory struct {
	ID          uuid.UUID   `json:"id"`
	MatchID     uuid.UUID   `json:"match_id"`
	Action      string      `json:"action"`
	OldStatus   MatchStatus `json:"old_status"`
	NewStatus   MatchStatus `json:"new_status"`
	PerformedBy uuid.UUID   `json:"performed_by"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewMatch creates a new pending Match for a (student, organization) pair
// with the given total and component scores and the round that produced it.
// Returns an error if validation fails.
func NewMatch(
	studentID, organizationID uuid.UUID,
	matchType MatchType,
	scores MatchScores,
	roundNumber int,
) (*Match, error) {
	match := &Match{
		ID:             uuid.New(),
		StudentID:      studentID,
		OrganizationID: organizationID,
		Status:         MatchStatusPending,
		Type:           matchType,
		Score:          scores.Total(),
		Scores:         scores,
		RoundNumber:    roundNumber,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := match.Validate(); err != nil {
		return nil, err
	}

	return match, nil
}

// Validate checks if the Match has valid data.
// Returns an error if any field fails validation.
func (m *Match) Validate() error {
	if m.ID == uuid.Nil {
		return ErrMatchIDEmpty
	}

	if m.StudentID == uuid.Nil {
		return ErrMatchStudentIDEmpty
	}

	if m.OrganizationID == uuid.Nil {
		return ErrMatchOrganizationIDEmpty
	}

	if !isValidMatchStatus(m.Status) {
		return ErrInvalidMatchStatus
	}

	if !isValidMatchType(m.Type) {
		return ErrInvalidMatchType
	}

	return nil
}

// Accept transitions the match from pending to accepted and returns the
// history entry recording the transition. Returns ErrMatchNotPending if the
// match has already been decided.
func (m *Match) Accept(by uuid.UUID) (*MatchHistory, error) {
	if by == uuid.Nil {
		return nil, ErrMatchActorEmpty
	}
	if m.Status != MatchStatusPending {
		return nil, ErrMatchNotPending
	}

	now := time.Now().UTC()
	history := m.newHistory("accepted", MatchStatusAccepted, by, "")

	m.Status = MatchStatusAccepted
	m.AcceptedAt = &now
	m.ModifiedBy = by
	m.UpdatedAt = now

	return history, nil
}

// Reject transitions the match from pending to rejected and returns the
// history entry recording the transition and the optional reason.
// Returns ErrMatchNotPending if the match has already been decided.
func (m *Match) Reject(by uuid.UUID, reason string) (*MatchHistory, error) {
	if by == uuid.Nil {
		return nil, ErrMatchActorEmpty
	}
	if m.Status != MatchStatusPending {
		return nil, ErrMatchNotPending
	}

	now := time.Now().UTC()
	history := m.newHistory("rejected", MatchStatusRejected, by, reason)

	m.Status = MatchStatusRejected
	m.RejectedAt = &now
	m.ModifiedBy = by
	m.UpdatedAt = now

	return history, nil
}

// newHistory builds the audit entry for a transition out of the current status.
func (m *Match) newHistory(action string, newStatus MatchStatus, by uuid.UUID, notes string) *MatchHistory {
	return &MatchHistory{
		ID:          uuid.New(),
		MatchID:     m.ID,
		Action:      action,
		OldStatus:   m.Status,
		NewStatus:   newStatus,
		PerformedBy: by,
		Notes:       notes,
		CreatedAt:   time.Now().UTC(),
	}
}

// isValidMatchStatus checks if the given status is a valid MatchStatus.
func isValidMatchStatus(status MatchStatus) bool {
	switch status {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusRejected:
		return true
	default:
		return false
	}
}

// isValidMatchType checks if the given type is a valid MatchType.
func isValidMatchType(t MatchType) bool {
	switch t {
	case MatchTypeAlgorithmic, MatchTypeManual:
		return true
	default:
		return false
	}
}
