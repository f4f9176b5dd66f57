package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
	"github.com/lexmatch/placement-api/internal/platform/logger"
	"github.com/lexmatch/placement-api/internal/store"
)

// PostgresOrganizationStore implements the store.OrganizationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresOrganizationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOrganizationStore creates a new PostgreSQL implementation of the
// OrganizationStore interface. If logger is nil, a default logger will be used.
func NewPostgresOrganizationStore(db store.DBTX, logger *slog.Logger) *PostgresOrganizationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresOrganizationStore{
		db:     db,
		logger: logger.With(slog.String("component", "organization_store")),
	}
}

// Ensure PostgresOrganizationStore implements store.OrganizationStore interface
var _ store.OrganizationStore = (*PostgresOrganizationStore)(nil)

// Create implements store.OrganizationStore.Create
// It saves a new organization to the database, handling domain validation.
func (s *PostgresOrganizationStore) Create(ctx context.Context, org *domain.Organization) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := org.Validate(); err != nil {
		log.Warn("organization validation failed during create",
			slog.String("error", err.Error()),
			slog.String("organization_id", org.ID.String()))
		return err
	}

	query := `
		INSERT INTO organizations
			(id, name, area_of_law, location, work_mode,
			 available_positions, minimum_grade, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		org.ID,
		org.Name,
		org.AreaOfLaw,
		org.Location,
		org.WorkMode,
		org.AvailablePositions,
		org.MinimumGrade,
		org.CreatedAt,
		org.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create organization",
			slog.String("error", err.Error()),
			slog.String("organization_id", org.ID.String()))
		return MapError(err)
	}

	log.Info("organization created successfully",
		slog.String("organization_id", org.ID.String()),
		slog.String("name", org.Name))
	return nil
}

// GetByID implements store.OrganizationStore.GetByID
// Returns store.ErrOrganizationNotFound if the organization does not exist.
func (s *PostgresOrganizationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving organization by ID",
		slog.String("organization_id", id.String()))

	query := `
		SELECT id, name, area_of_law, location, work_mode,
		       available_positions, minimum_grade, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	org, err := scanOrganization(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("organization not found",
				slog.String("organization_id", id.String()))
			return nil, store.ErrOrganizationNotFound
		}
		log.Error("failed to get organization by ID",
			slog.String("error", err.Error()),
			slog.String("organization_id", id.String()))
		return nil, MapError(err)
	}

	return org, nil
}

// GetWithOpenPositions implements store.OrganizationStore.GetWithOpenPositions
// It retrieves organizations with remaining capacity, ordered by ID so run
// inputs are stable across invocations.
func (s *PostgresOrganizationStore) GetWithOpenPositions(ctx context.Context) ([]*domain.Organization, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, area_of_law, location, work_mode,
		       available_positions, minimum_grade, created_at, updated_at
		FROM organizations
		WHERE available_positions > 0
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query organizations with open positions",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var orgs []*domain.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			log.Error("failed to scan organization row",
				slog.String("error", err.Error()))
			return nil, err
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning organization rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if orgs == nil {
		orgs = []*domain.Organization{}
	}

	log.Debug("found organizations with open positions",
		slog.Int("count", len(orgs)))
	return orgs, nil
}

// WithTx implements store.OrganizationStore.WithTx
// It returns a new OrganizationStore that uses the provided transaction.
func (s *PostgresOrganizationStore) WithTx(tx *sql.Tx) store.OrganizationStore {
	return &PostgresOrganizationStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanOrganization reads one organization row.
func scanOrganization(row rowScanner) (*domain.Organization, error) {
	var org domain.Organization

	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.AreaOfLaw,
		&org.Location,
		&org.WorkMode,
		&org.AvailablePositions,
		&org.MinimumGrade,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &org, nil
}
