package store

import (
	"context"
	"database/sql"

	"github.com/lexmatch/placement-api/internal/domain"
)

// MatchingRoundStore defines the interface for matching round persistence.
type MatchingRoundStore interface {
	// Create saves a new matching round record to the store.
	Create(ctx context.Context, round *domain.MatchingRound) error

	// GetByRoundNumber retrieves a matching round by its round number.
	// Returns ErrMatchingRoundNotFound if no such round exists.
	GetByRoundNumber(ctx context.Context, roundNumber int) (*domain.MatchingRound, error)

	// CountRounds returns the total number of matching rounds recorded.
	// Used to derive the next round number when none is specified.
	CountRounds(ctx context.Context) (int, error)

	// Update saves changes to an existing matching round (status, summary
	// counts, completion timestamp).
	// Returns ErrMatchingRoundNotFound if the round does not exist.
	Update(ctx context.Context, round *domain.MatchingRound) error

	// WithTx returns a new MatchingRoundStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) MatchingRoundStore
}
