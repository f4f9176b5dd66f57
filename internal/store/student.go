package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
)

// StudentStore defines the interface for student data persistence.
type StudentStore interface {
	// Create saves a new student to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, student *domain.Student) error

	// GetByID retrieves a student by their unique ID.
	// Returns ErrStudentNotFound if the student does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error)

	// GetEligibleForMatching retrieves all students whose status makes them
	// eligible for a matching run (unmatched or pending), with their
	// rankings, statements, ratings, grade and preference data populated.
	// Returns an empty slice if no students are eligible.
	GetEligibleForMatching(ctx context.Context) ([]*domain.Student, error)

	// UpdateStatus updates a student's placement status.
	// Returns ErrStudentNotFound if the student does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.StudentStatus) error

	// WithTx returns a new StudentStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service).
	WithTx(tx *sql.Tx) StudentStore
}
