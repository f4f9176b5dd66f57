package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Organization work mode values. Stored as plain strings so that student
// preference lists can carry the same vocabulary.
const (
	WorkModeInPerson = "in-person"
	WorkModeHybrid   = "hybrid"
	WorkModeRemote   = "remote"
)

// Organization-specific validation errors
var (
	// ErrOrganizationIDEmpty is returned when an organization ID is empty or nil.
	ErrOrganizationIDEmpty = errors.New("organization ID cannot be empty")

	// ErrOrganizationNameEmpty is returned when an organization's name is empty.
	ErrOrganizationNameEmpty = errors.New("organization name cannot be empty")

	// ErrNegativeCapacity is returned when an organization reports negative
	// available positions. This is a population-level contradiction the
	// matching engine refuses to work around.
	ErrNegativeCapacity = errors.New("organization available positions cannot be negative")

	// ErrNegativeMinimumGrade is returned when an organization's minimum grade
	// requirement is negative.
	ErrNegativeMinimumGrade = errors.New("organization minimum grade cannot be negative")
)

// Organization is the matching-facing projection of a host organization.
// AvailablePositions is the remaining capacity, already net of positions
// filled in previously committed matching runs.
type Organization struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	AreaOfLaw          string    `json:"area_of_law"`
	Location           string    `json:"location"`
	WorkMode           string    `json:"work_mode"`
	AvailablePositions int       `json:"available_positions"`
	MinimumGrade       float64   `json:"minimum_grade"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewOrganization creates a new Organization with fresh timestamps.
// Returns an error if validation fails.
func NewOrganization(id uuid.UUID, name, areaOfLaw string, positions int) (*Organization, error) {
	org := &Organization{
		ID:                 id,
		Name:               name,
		AreaOfLaw:          areaOfLaw,
		AvailablePositions: positions,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}

	if err := org.Validate(); err != nil {
		return nil, err
	}

	return org, nil
}

// Validate checks if the Organization has valid data.
// Returns an error if any field fails validation.
func (o *Organization) Validate() error {
	if o.ID == uuid.Nil {
		return ErrOrganizationIDEmpty
	}

	if o.Name == "" {
		return ErrOrganizationNameEmpty
	}

	if o.AvailablePositions < 0 {
		return ErrNegativeCapacity
	}

	if o.MinimumGrade < 0 {
		return ErrNegativeMinimumGrade
	}

	return nil
}

// HasOpenPositions reports whether the organization can still accept students.
func (o *Organization) HasOpenPositions() bool {
	return o.AvailablePositions > 0
}
