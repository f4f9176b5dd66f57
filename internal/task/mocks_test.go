package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
)

// mockTask is a configurable Task implementation for runner and queue tests.
type mockTask struct {
	id        uuid.UUID
	taskType  string
	status    TaskStatus
	executeFn func(ctx context.Context) error
	executed  chan struct{}
}

func newMockTask() *mockTask {
	return &mockTask{
		id:       uuid.New(),
		taskType: "mock_task",
		status:   TaskStatusPending,
		executed: make(chan struct{}, 1),
	}
}

func (t *mockTask) ID() uuid.UUID      { return t.id }
func (t *mockTask) Type() string       { return t.taskType }
func (t *mockTask) Payload() []byte    { return []byte(`{}`) }
func (t *mockTask) Status() TaskStatus { return t.status }

func (t *mockTask) Execute(ctx context.Context) error {
	defer func() {
		select {
		case t.executed <- struct{}{}:
		default:
		}
	}()
	if t.executeFn != nil {
		return t.executeFn(ctx)
	}
	return nil
}

// mockTaskStore is an in-memory TaskStore that records status transitions.
type mockTaskStore struct {
	mu         sync.Mutex
	saved      []Task
	statuses   map[uuid.UUID][]TaskStatus
	saveErr    error
	pending    []Task
	processing []Task
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{
		statuses: make(map[uuid.UUID][]TaskStatus),
	}
}

func (s *mockTaskStore) SaveTask(ctx context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, task)
	return nil
}

func (s *mockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[taskID] = append(s.statuses[taskID], status)
	return nil
}

func (s *mockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, nil
}

func (s *mockTaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing, nil
}

func (s *mockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

func (s *mockTaskStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *mockTaskStore) statusHistory(taskID uuid.UUID) []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]TaskStatus, len(s.statuses[taskID]))
	copy(history, s.statuses[taskID])
	return history
}

// mockMatchingService records RunMatching invocations.
type mockMatchingService struct {
	mu        sync.Mutex
	calls     []mockRunCall
	round     *domain.MatchingRound
	returnErr error
}

type mockRunCall struct {
	maxRounds   int
	roundNumber int
	startedBy   uuid.UUID
}

func (m *mockMatchingService) RunMatching(
	ctx context.Context,
	maxRounds int,
	roundNumber int,
	startedBy uuid.UUID,
) (*domain.MatchingRound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mockRunCall{maxRounds, roundNumber, startedBy})
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	if m.round != nil {
		return m.round, nil
	}
	round, _ := domain.NewMatchingRound(1, startedBy)
	round.Complete(0, 0, 0)
	return round, nil
}
