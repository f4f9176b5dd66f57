package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
)

// Common errors
var (
	ErrNilMatchingService = errors.New("matching service cannot be nil")
	ErrNilLogger          = errors.New("logger cannot be nil")
	ErrInvalidMaxRounds   = errors.New("max rounds must be positive")
)

// MatchingService defines the interface for running a matching run.
// The concrete implementation lives in the service package; the task only
// needs the run entry point.
type MatchingService interface {
	// RunMatching executes up to maxRounds matching rounds and persists the
	// resulting matches. roundNumber selects an explicit round number; zero
	// means the next available. startedBy records the initiating user.
	RunMatching(
		ctx context.Context,
		maxRounds int,
		roundNumber int,
		startedBy uuid.UUID,
	) (*domain.MatchingRound, error)
}

// matchingRunPayload represents the serialized data stored in the task
type matchingRunPayload struct {
	MaxRounds   int       `json:"max_rounds"`
	RoundNumber int       `json:"round_number,omitempty"`
	StartedBy   uuid.UUID `json:"started_by,omitempty"`
}

// MatchingRunTask implements the Task interface for executing a placement
// matching run in the background.
type MatchingRunTask struct {
	id              uuid.UUID
	maxRounds       int
	roundNumber     int
	startedBy       uuid.UUID
	matchingService MatchingService
	logger          *slog.Logger
	status          TaskStatus
}

// NewMatchingRunTask creates a new matching run task
func NewMatchingRunTask(
	maxRounds int,
	roundNumber int,
	startedBy uuid.UUID,
	matchingService MatchingService,
	logger *slog.Logger,
) (*MatchingRunTask, error) {
	if matchingService == nil {
		return nil, ErrNilMatchingService
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if maxRounds <= 0 {
		return nil, ErrInvalidMaxRounds
	}

	return &MatchingRunTask{
		id:              uuid.New(),
		maxRounds:       maxRounds,
		roundNumber:     roundNumber,
		startedBy:       startedBy,
		matchingService: matchingService,
		logger:          logger.With("task_type", TaskTypeMatchingRun),
		status:          TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *MatchingRunTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *MatchingRunTask) Type() string {
	return TaskTypeMatchingRun
}

// Payload returns the task data as a byte slice
func (t *MatchingRunTask) Payload() []byte {
	payload := matchingRunPayload{
		MaxRounds:   t.maxRounds,
		RoundNumber: t.roundNumber,
		StartedBy:   t.startedBy,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *MatchingRunTask) Status() TaskStatus {
	return t.status
}

// Execute runs the matching run task. The matching service owns the whole
// lifecycle: loading the population, running rounds, validating results and
// persisting matches atomically. The task just reports the outcome.
func (t *MatchingRunTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting matching run task",
		"max_rounds", t.maxRounds,
		"round_number", t.roundNumber)

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	round, err := t.matchingService.RunMatching(ctx, t.maxRounds, t.roundNumber, t.startedBy)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("matching run failed", "error", err)
		return fmt.Errorf("matching run failed: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("matching run task completed successfully",
		"round_number", round.RoundNumber,
		"total_students", round.TotalStudents,
		"matched_students", round.MatchedStudents,
		"total_organizations", round.TotalOrganizations)
	return nil
}
