package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
	"github.com/lexmatch/placement-api/internal/platform/logger"
	"github.com/lexmatch/placement-api/internal/store"
)

// PostgresStudentStore implements the store.StudentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStudentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudentStore creates a new PostgreSQL implementation of the
// StudentStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresStudentStore(db store.DBTX, logger *slog.Logger) *PostgresStudentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStudentStore{
		db:     db,
		logger: logger.With(slog.String("component", "student_store")),
	}
}

// Ensure PostgresStudentStore implements store.StudentStore interface
var _ store.StudentStore = (*PostgresStudentStore)(nil)

// Create implements store.StudentStore.Create
// It saves a new student to the database, handling domain validation.
func (s *PostgresStudentStore) Create(ctx context.Context, student *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := student.Validate(); err != nil {
		log.Warn("student validation failed during create",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID.String()))
		return err
	}

	rankings, statements, ratings, locations, workModes, err := marshalStudentJSON(student)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO students
			(id, rankings, overall_grade, statements, statement_ratings,
			 locations, work_modes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		student.ID,
		rankings,
		student.OverallGrade,
		statements,
		ratings,
		locations,
		workModes,
		student.Status,
		student.CreatedAt,
		student.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create student",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID.String()))
		return MapError(err)
	}

	log.Info("student created successfully",
		slog.String("student_id", student.ID.String()),
		slog.String("status", string(student.Status)))
	return nil
}

// GetByID implements store.StudentStore.GetByID
// Returns store.ErrStudentNotFound if the student does not exist.
func (s *PostgresStudentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving student by ID", slog.String("student_id", id.String()))

	query := `
		SELECT id, rankings, overall_grade, statements, statement_ratings,
		       locations, work_modes, status, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	student, err := scanStudent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("student not found", slog.String("student_id", id.String()))
			return nil, store.ErrStudentNotFound
		}
		log.Error("failed to get student by ID",
			slog.String("error", err.Error()),
			slog.String("student_id", id.String()))
		return nil, MapError(err)
	}

	return student, nil
}

// GetEligibleForMatching implements store.StudentStore.GetEligibleForMatching
// It retrieves students whose status makes them candidates for a matching
// run, ordered by ID so run inputs are stable across invocations.
func (s *PostgresStudentStore) GetEligibleForMatching(ctx context.Context) ([]*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, rankings, overall_grade, statements, statement_ratings,
		       locations, work_modes, status, created_at, updated_at
		FROM students
		WHERE status IN ($1, $2)
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query,
		domain.StudentStatusUnmatched, domain.StudentStatusPending)
	if err != nil {
		log.Error("failed to query eligible students",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var students []*domain.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			log.Error("failed to scan student row",
				slog.String("error", err.Error()))
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning student rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if students == nil {
		students = []*domain.Student{}
	}

	log.Debug("found eligible students", slog.Int("count", len(students)))
	return students, nil
}

// UpdateStatus implements store.StudentStore.UpdateStatus
// Returns store.ErrStudentNotFound if the student does not exist.
func (s *PostgresStudentStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.StudentStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("updating student status",
		slog.String("student_id", id.String()),
		slog.String("status", string(status)))

	if !status.IsValid() {
		return domain.ErrInvalidStudentStatus
	}

	query := `
		UPDATE students
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update student status",
			slog.String("error", err.Error()),
			slog.String("student_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("student_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("student not found for status update",
			slog.String("student_id", id.String()))
		return store.ErrStudentNotFound
	}

	log.Info("student status updated successfully",
		slog.String("student_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.StudentStore.WithTx
// It returns a new StudentStore that uses the provided transaction.
func (s *PostgresStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return &PostgresStudentStore{
		db:     tx,
		logger: s.logger,
	}
}

// marshalStudentJSON serializes the student's document-shaped fields for
// storage in JSONB columns.
func marshalStudentJSON(student *domain.Student) (rankings, statements, ratings, locations, workModes []byte, err error) {
	if rankings, err = json.Marshal(student.Rankings); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal rankings: %w", err)
	}
	if statements, err = json.Marshal(student.Statements); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal statements: %w", err)
	}
	if ratings, err = json.Marshal(student.StatementRatings); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal statement ratings: %w", err)
	}
	if locations, err = json.Marshal(student.Locations); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal locations: %w", err)
	}
	if workModes, err = json.Marshal(student.WorkModes); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal work modes: %w", err)
	}
	return rankings, statements, ratings, locations, workModes, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanStudent reads one student row, decoding the JSONB columns.
func scanStudent(row rowScanner) (*domain.Student, error) {
	var student domain.Student
	var status string
	var rankings, statements, ratings, locations, workModes []byte

	err := row.Scan(
		&student.ID,
		&rankings,
		&student.OverallGrade,
		&statements,
		&ratings,
		&locations,
		&workModes,
		&status,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rankings, &student.Rankings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rankings: %w", err)
	}
	if err := json.Unmarshal(statements, &student.Statements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statements: %w", err)
	}
	if err := json.Unmarshal(ratings, &student.StatementRatings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement ratings: %w", err)
	}
	if err := json.Unmarshal(locations, &student.Locations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal locations: %w", err)
	}
	if err := json.Unmarshal(workModes, &student.WorkModes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal work modes: %w", err)
	}

	student.Status = domain.StudentStatus(status)
	return &student, nil
}
