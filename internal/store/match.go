package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
)

// MatchStore defines the interface for match data persistence.
type MatchStore interface {
	// Create saves a new match to the store.
	// Returns ErrMatchExists if a match already exists for the same
	// (student, organization) pair.
	Create(ctx context.Context, match *domain.Match) error

	// GetByID retrieves a match by its unique ID.
	// Returns ErrMatchNotFound if the match does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)

	// ExistsForPair reports whether any match already exists for the given
	// (student, organization) pair, regardless of status.
	ExistsForPair(ctx context.Context, studentID, organizationID uuid.UUID) (bool, error)

	// GetActive retrieves all matches that still occupy a position, i.e.
	// those in pending or accepted status. Rejected matches release their
	// position and are excluded.
	GetActive(ctx context.Context) ([]*domain.Match, error)

	// Update saves changes to an existing match (status, decision
	// timestamps, modifier). Returns ErrMatchNotFound if the match does
	// not exist.
	Update(ctx context.Context, match *domain.Match) error

	// CreateHistory appends an immutable history entry for a match
	// transition.
	CreateHistory(ctx context.Context, history *domain.MatchHistory) error

	// WithTx returns a new MatchStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) MatchStore
}
