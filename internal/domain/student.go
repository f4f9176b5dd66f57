package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// StudentStatus represents a student's placement state.
type StudentStatus string

// Possible student status values
const (
	StudentStatusUnmatched StudentStatus = "unmatched"
	StudentStatusPending   StudentStatus = "pending"
	StudentStatusMatched   StudentStatus = "matched"
)

// Student-specific validation errors
var (
	// ErrStudentIDEmpty is returned when a student ID is empty or nil.
	ErrStudentIDEmpty = errors.New("student ID cannot be empty")

	// ErrStudentGradeNegative is returned when a student's overall grade is negative.
	ErrStudentGradeNegative = errors.New("student overall grade cannot be negative")

	// ErrStudentGradeTooHigh is returned when a student's overall grade exceeds the 40-point scale.
	ErrStudentGradeTooHigh = errors.New("student overall grade cannot exceed 40")

	// ErrStudentRankInvalid is returned when an area-of-law rank is zero or negative.
	ErrStudentRankInvalid = errors.New("area ranking must be a positive rank")

	// ErrInvalidStudentStatus is returned when a student status is not a known value.
	ErrInvalidStudentStatus = errors.New("invalid student status")
)

// Student is the matching-facing projection of a student profile.
// Rankings maps area of law to the student's rank for that area (1 = most
// preferred). Statements and StatementRatings are keyed by area of law;
// missing entries are valid and simply score zero for that component.
type Student struct {
	ID               uuid.UUID                 `json:"id"`
	Rankings         map[string]float64        `json:"rankings"`
	OverallGrade     float64                   `json:"overall_grade"`
	Statements       map[string]string         `json:"statements"`
	StatementRatings map[string]map[string]int `json:"statement_ratings"`
	Locations        []string                  `json:"location_preferences"`
	WorkModes        []string                  `json:"work_mode_preferences"`
	Status           StudentStatus             `json:"status"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// NewStudent creates a new Student with unmatched status and fresh timestamps.
// Returns an error if validation fails.
func NewStudent(id uuid.UUID, overallGrade float64) (*Student, error) {
	student := &Student{
		ID:               id,
		Rankings:         make(map[string]float64),
		OverallGrade:     overallGrade,
		Statements:       make(map[string]string),
		StatementRatings: make(map[string]map[string]int),
		Status:           StudentStatusUnmatched,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	if err := student.Validate(); err != nil {
		return nil, err
	}

	return student, nil
}

// Validate checks if the Student has valid data.
// Optional matching inputs (rankings, statements, ratings, preferences) may
// be absent; validation only rejects structurally impossible values.
func (s *Student) Validate() error {
	if s.ID == uuid.Nil {
		return ErrStudentIDEmpty
	}

	if s.OverallGrade < 0 {
		return ErrStudentGradeNegative
	}
	if s.OverallGrade > 40 {
		return ErrStudentGradeTooHigh
	}

	for _, rank := range s.Rankings {
		if rank <= 0 {
			return ErrStudentRankInvalid
		}
	}

	if !isValidStudentStatus(s.Status) {
		return ErrInvalidStudentStatus
	}

	return nil
}

// UpdateStatus updates the student's placement status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (s *Student) UpdateStatus(status StudentStatus) error {
	if !isValidStudentStatus(status) {
		return ErrInvalidStudentStatus
	}

	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValid reports whether the status is a known StudentStatus value.
func (s StudentStatus) IsValid() bool {
	switch s {
	case StudentStatusUnmatched, StudentStatusPending, StudentStatusMatched:
		return true
	default:
		return false
	}
}

// isValidStudentStatus checks if the given status is a valid StudentStatus.
func isValidStudentStatus(status StudentStatus) bool {
	return status.IsValid()
}
