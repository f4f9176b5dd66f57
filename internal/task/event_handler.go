package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/events"
)

// TaskFactory creates tasks from run parameters. Satisfied by
// MatchingRunTaskFactory.
type TaskFactory interface {
	CreateTask(maxRounds int, roundNumber int, startedBy uuid.UUID) (Task, error)
}

// TaskSubmitter accepts tasks for background execution. Satisfied by
// TaskRunner.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to handle matching run request events and delegate them to the task
// factory and runner.
type TaskFactoryEventHandler struct {
	taskFactory TaskFactory
	taskRunner  TaskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given
// task factory to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	taskFactory TaskFactory,
	taskRunner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes matching run request events by creating and
// submitting tasks. Events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeMatchingRun {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload matchingRunPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	h.logger.Debug("creating matching run task",
		"max_rounds", payload.MaxRounds,
		"round_number", payload.RoundNumber,
		"event_id", event.ID)

	task, err := h.taskFactory.CreateTask(payload.MaxRounds, payload.RoundNumber, payload.StartedBy)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	h.logger.Debug("submitting task to runner",
		"task_id", task.ID(),
		"event_id", event.ID)

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
