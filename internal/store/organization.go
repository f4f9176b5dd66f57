package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
)

// OrganizationStore defines the interface for organization data persistence.
type OrganizationStore interface {
	// Create saves a new organization to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, org *domain.Organization) error

	// GetByID retrieves an organization by its unique ID.
	// Returns ErrOrganizationNotFound if the organization does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)

	// GetWithOpenPositions retrieves all organizations with remaining
	// capacity > 0, including their minimum grade requirement. Returns an
	// empty slice if no organization has open positions.
	GetWithOpenPositions(ctx context.Context) ([]*domain.Organization, error)

	// WithTx returns a new OrganizationStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) OrganizationStore
}
