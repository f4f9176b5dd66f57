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

// PostgresMatchingRoundStore implements the store.MatchingRoundStore
// interface using a PostgreSQL database as the storage backend.
type PostgresMatchingRoundStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMatchingRoundStore creates a new PostgreSQL implementation of
// the MatchingRoundStore interface. If logger is nil, a default logger will
// be used.
func NewPostgresMatchingRoundStore(db store.DBTX, logger *slog.Logger) *PostgresMatchingRoundStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMatchingRoundStore{
		db:     db,
		logger: logger.With(slog.String("component", "matching_round_store")),
	}
}

// Ensure PostgresMatchingRoundStore implements store.MatchingRoundStore interface
var _ store.MatchingRoundStore = (*PostgresMatchingRoundStore)(nil)

// Create implements store.MatchingRoundStore.Create
func (s *PostgresMatchingRoundStore) Create(ctx context.Context, round *domain.MatchingRound) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO matching_rounds
			(id, round_number, status, started_by, started_at, completed_at,
			 total_students, matched_students, total_organizations,
			 error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		round.ID,
		round.RoundNumber,
		round.Status,
		nullableUUID(round.StartedBy),
		round.StartedAt,
		round.CompletedAt,
		round.TotalStudents,
		round.MatchedStudents,
		round.TotalOrganizations,
		round.ErrorMessage,
	)

	if err != nil {
		log.Error("failed to create matching round",
			slog.String("error", err.Error()),
			slog.Int("round_number", round.RoundNumber))
		return MapError(err)
	}

	log.Info("matching round created",
		slog.String("round_id", round.ID.String()),
		slog.Int("round_number", round.RoundNumber))
	return nil
}

// GetByRoundNumber implements store.MatchingRoundStore.GetByRoundNumber
// Returns store.ErrMatchingRoundNotFound if no such round exists.
func (s *PostgresMatchingRoundStore) GetByRoundNumber(
	ctx context.Context,
	roundNumber int,
) (*domain.MatchingRound, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, round_number, status, started_by, started_at, completed_at,
		       total_students, matched_students, total_organizations,
		       error_message
		FROM matching_rounds
		WHERE round_number = $1
	`

	round, err := scanMatchingRound(s.db.QueryRowContext(ctx, query, roundNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("matching round not found",
				slog.Int("round_number", roundNumber))
			return nil, store.ErrMatchingRoundNotFound
		}
		log.Error("failed to get matching round",
			slog.String("error", err.Error()),
			slog.Int("round_number", roundNumber))
		return nil, MapError(err)
	}

	return round, nil
}

// CountRounds implements store.MatchingRoundStore.CountRounds
func (s *PostgresMatchingRoundStore) CountRounds(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matching_rounds`).Scan(&count)
	if err != nil {
		log.Error("failed to count matching rounds",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	return count, nil
}

// Update implements store.MatchingRoundStore.Update
// Returns store.ErrMatchingRoundNotFound if the round does not exist.
func (s *PostgresMatchingRoundStore) Update(ctx context.Context, round *domain.MatchingRound) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE matching_rounds
		SET status = $1, completed_at = $2, total_students = $3,
		    matched_students = $4, total_organizations = $5,
		    error_message = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		round.Status,
		round.CompletedAt,
		round.TotalStudents,
		round.MatchedStudents,
		round.TotalOrganizations,
		round.ErrorMessage,
		round.ID,
	)

	if err != nil {
		log.Error("failed to update matching round",
			slog.String("error", err.Error()),
			slog.String("round_id", round.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "matching round"); err != nil {
		log.Debug("matching round not found for update",
			slog.String("round_id", round.ID.String()))
		return store.ErrMatchingRoundNotFound
	}

	log.Info("matching round updated",
		slog.String("round_id", round.ID.String()),
		slog.String("status", string(round.Status)))
	return nil
}

// WithTx implements store.MatchingRoundStore.WithTx
// It returns a new MatchingRoundStore that uses the provided transaction.
func (s *PostgresMatchingRoundStore) WithTx(tx *sql.Tx) store.MatchingRoundStore {
	return &PostgresMatchingRoundStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanMatchingRound reads one matching round row.
func scanMatchingRound(row rowScanner) (*domain.MatchingRound, error) {
	var round domain.MatchingRound
	var startedBy uuid.NullUUID
	var completedAt sql.NullTime
	var errorMessage sql.NullString

	err := row.Scan(
		&round.ID,
		&round.RoundNumber,
		&round.Status,
		&startedBy,
		&round.StartedAt,
		&completedAt,
		&round.TotalStudents,
		&round.MatchedStudents,
		&round.TotalOrganizations,
		&errorMessage,
	)
	if err != nil {
		return nil, err
	}

	if startedBy.Valid {
		round.StartedBy = startedBy.UUID
	}
	if completedAt.Valid {
		t := completedAt.Time
		round.CompletedAt = &t
	}
	round.ErrorMessage = errorMessage.String

	return &round, nil
}
