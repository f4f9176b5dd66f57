package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// MatchingRunTaskFactory creates MatchingRunTask instances
type MatchingRunTaskFactory struct {
	matchingService MatchingService
	logger          *slog.Logger
}

// NewMatchingRunTaskFactory creates a new factory for MatchingRunTasks
func NewMatchingRunTaskFactory(
	matchingService MatchingService,
	logger *slog.Logger,
) *MatchingRunTaskFactory {
	return &MatchingRunTaskFactory{
		matchingService: matchingService,
		logger:          logger.With("component", "matching_run_task_factory"),
	}
}

// CreateTask creates a new MatchingRunTask with the given run parameters
func (f *MatchingRunTaskFactory) CreateTask(
	maxRounds int,
	roundNumber int,
	startedBy uuid.UUID,
) (Task, error) {
	task, err := NewMatchingRunTask(
		maxRounds,
		roundNumber,
		startedBy,
		f.matchingService,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTaskFromPayload reconstructs a MatchingRunTask from a persisted
// payload. Used during crash recovery, when the stored task row has to be
// turned back into something executable.
func (f *MatchingRunTaskFactory) CreateTaskFromPayload(payload []byte) (Task, error) {
	var p matchingRunPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matching run payload: %w", err)
	}

	return f.CreateTask(p.MaxRounds, p.RoundNumber, p.StartedBy)
}
