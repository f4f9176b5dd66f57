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

// PostgresMatchStore implements the store.MatchStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMatchStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMatchStore creates a new PostgreSQL implementation of the
// MatchStore interface. If logger is nil, a default logger will be used.
func NewPostgresMatchStore(db store.DBTX, logger *slog.Logger) *PostgresMatchStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMatchStore{
		db:     db,
		logger: logger.With(slog.String("component", "match_store")),
	}
}

// Ensure PostgresMatchStore implements store.MatchStore interface
var _ store.MatchStore = (*PostgresMatchStore)(nil)

// Create implements store.MatchStore.Create
// Returns store.ErrMatchExists if a match already exists for the same
// (student, organization) pair.
func (s *PostgresMatchStore) Create(ctx context.Context, match *domain.Match) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := match.Validate(); err != nil {
		log.Warn("match validation failed during create",
			slog.String("error", err.Error()),
			slog.String("match_id", match.ID.String()))
		return err
	}

	query := `
		INSERT INTO matches
			(id, student_id, organization_id, status, match_type,
			 score, ranking_score, grades_score, statement_score,
			 location_score, work_mode_score, round_number,
			 created_by, modified_by, accepted_at, rejected_at,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		match.ID,
		match.StudentID,
		match.OrganizationID,
		match.Status,
		match.Type,
		match.Score,
		match.Scores.Ranking,
		match.Scores.Grades,
		match.Scores.Statement,
		match.Scores.Location,
		match.Scores.WorkMode,
		match.RoundNumber,
		nullableUUID(match.CreatedBy),
		nullableUUID(match.ModifiedBy),
		match.AcceptedAt,
		match.RejectedAt,
		match.CreatedAt,
		match.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("match already exists for pair",
				slog.String("student_id", match.StudentID.String()),
				slog.String("organization_id", match.OrganizationID.String()))
			return store.ErrMatchExists
		}
		log.Error("failed to create match",
			slog.String("error", err.Error()),
			slog.String("match_id", match.ID.String()))
		return MapError(err)
	}

	log.Info("match created successfully",
		slog.String("match_id", match.ID.String()),
		slog.String("student_id", match.StudentID.String()),
		slog.String("organization_id", match.OrganizationID.String()),
		slog.Int("round_number", match.RoundNumber))
	return nil
}

// GetByID implements store.MatchStore.GetByID
// Returns store.ErrMatchNotFound if the match does not exist.
func (s *PostgresMatchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving match by ID", slog.String("match_id", id.String()))

	query := `
		SELECT id, student_id, organization_id, status, match_type,
		       score, ranking_score, grades_score, statement_score,
		       location_score, work_mode_score, round_number,
		       created_by, modified_by, accepted_at, rejected_at,
		       created_at, updated_at
		FROM matches
		WHERE id = $1
	`

	match, err := scanMatch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("match not found", slog.String("match_id", id.String()))
			return nil, store.ErrMatchNotFound
		}
		log.Error("failed to get match by ID",
			slog.String("error", err.Error()),
			slog.String("match_id", id.String()))
		return nil, MapError(err)
	}

	return match, nil
}

// ExistsForPair implements store.MatchStore.ExistsForPair
func (s *PostgresMatchStore) ExistsForPair(
	ctx context.Context,
	studentID, organizationID uuid.UUID,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE student_id = $1 AND organization_id = $2
		)
	`

	var exists bool
	err := s.db.QueryRowContext(ctx, query, studentID, organizationID).Scan(&exists)
	if err != nil {
		log.Error("failed to check match existence",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()),
			slog.String("organization_id", organizationID.String()))
		return false, MapError(err)
	}

	return exists, nil
}

// GetActive implements store.MatchStore.GetActive
// It retrieves matches in pending or accepted status, ordered by creation
// time so earlier rounds come first.
func (s *PostgresMatchStore) GetActive(ctx context.Context) ([]*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, student_id, organization_id, status, match_type,
		       score, ranking_score, grades_score, statement_score,
		       location_score, work_mode_score, round_number,
		       created_by, modified_by, accepted_at, rejected_at,
		       created_at, updated_at
		FROM matches
		WHERE status IN ($1, $2)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query,
		domain.MatchStatusPending, domain.MatchStatusAccepted)
	if err != nil {
		log.Error("failed to query active matches",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var matches []*domain.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			log.Error("failed to scan match row",
				slog.String("error", err.Error()))
			return nil, err
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning match rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if matches == nil {
		matches = []*domain.Match{}
	}

	log.Debug("found active matches", slog.Int("count", len(matches)))
	return matches, nil
}

// Update implements store.MatchStore.Update
// It persists status, decision timestamps and modifier changes.
// Returns store.ErrMatchNotFound if the match does not exist.
func (s *PostgresMatchStore) Update(ctx context.Context, match *domain.Match) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := match.Validate(); err != nil {
		log.Warn("match validation failed during update",
			slog.String("error", err.Error()),
			slog.String("match_id", match.ID.String()))
		return err
	}

	query := `
		UPDATE matches
		SET status = $1, modified_by = $2, accepted_at = $3,
		    rejected_at = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		match.Status,
		nullableUUID(match.ModifiedBy),
		match.AcceptedAt,
		match.RejectedAt,
		match.UpdatedAt,
		match.ID,
	)

	if err != nil {
		log.Error("failed to update match",
			slog.String("error", err.Error()),
			slog.String("match_id", match.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "match"); err != nil {
		log.Debug("match not found for update",
			slog.String("match_id", match.ID.String()))
		return store.ErrMatchNotFound
	}

	log.Info("match updated successfully",
		slog.String("match_id", match.ID.String()),
		slog.String("status", string(match.Status)))
	return nil
}

// CreateHistory implements store.MatchStore.CreateHistory
func (s *PostgresMatchStore) CreateHistory(ctx context.Context, history *domain.MatchHistory) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO match_history
			(id, match_id, action, old_status, new_status,
			 performed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		history.ID,
		history.MatchID,
		history.Action,
		history.OldStatus,
		history.NewStatus,
		history.PerformedBy,
		history.Notes,
		history.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create match history entry",
			slog.String("error", err.Error()),
			slog.String("match_id", history.MatchID.String()),
			slog.String("action", history.Action))
		return MapError(err)
	}

	log.Debug("match history entry created",
		slog.String("match_id", history.MatchID.String()),
		slog.String("action", history.Action))
	return nil
}

// WithTx implements store.MatchStore.WithTx
// It returns a new MatchStore that uses the provided transaction.
func (s *PostgresMatchStore) WithTx(tx *sql.Tx) store.MatchStore {
	return &PostgresMatchStore{
		db:     tx,
		logger: s.logger,
	}
}

// nullableUUID converts the zero UUID to a SQL NULL so optional actor columns
// stay NULL instead of storing the zero value.
func nullableUUID(id uuid.UUID) interface{} {
	if id == uuid.Nil {
		return nil
	}
	return id
}

// scanMatch reads one match row, reassembling the component scores.
func scanMatch(row rowScanner) (*domain.Match, error) {
	var match domain.Match
	var createdBy, modifiedBy uuid.NullUUID
	var acceptedAt, rejectedAt sql.NullTime

	err := row.Scan(
		&match.ID,
		&match.StudentID,
		&match.OrganizationID,
		&match.Status,
		&match.Type,
		&match.Score,
		&match.Scores.Ranking,
		&match.Scores.Grades,
		&match.Scores.Statement,
		&match.Scores.Location,
		&match.Scores.WorkMode,
		&match.RoundNumber,
		&createdBy,
		&modifiedBy,
		&acceptedAt,
		&rejectedAt,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if createdBy.Valid {
		match.CreatedBy = createdBy.UUID
	}
	if modifiedBy.Valid {
		match.ModifiedBy = modifiedBy.UUID
	}
	if acceptedAt.Valid {
		t := acceptedAt.Time
		match.AcceptedAt = &t
	}
	if rejectedAt.Valid {
		t := rejectedAt.Time
		match.RejectedAt = &t
	}

	return &match, nil
}
