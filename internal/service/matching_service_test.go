package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
	"github.com/lexmatch/placement-api/internal/domain/matching"
	"github.com/lexmatch/placement-api/internal/events"
	"github.com/lexmatch/placement-api/internal/store"
	"github.com/lexmatch/placement-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testEnv bundles the service under test with its mocked dependencies.
type testEnv struct {
	service  MatchingService
	db       *sql.DB
	dbMock   sqlmock.Sqlmock
	students *MockStudentStore
	orgs     *MockOrganizationStore
	matches  *MockMatchStore
	rounds   *MockMatchingRoundStore
	emitter  *MockEventEmitter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		db:       db,
		dbMock:   dbMock,
		students: new(MockStudentStore),
		orgs:     new(MockOrganizationStore),
		matches:  new(MockMatchStore),
		rounds:   new(MockMatchingRoundStore),
		emitter:  new(MockEventEmitter),
	}

	env.service, err = NewMatchingService(
		db,
		env.students,
		env.orgs,
		env.matches,
		env.rounds,
		matching.NewEngine(matching.DefaultWeights()),
		env.emitter,
		nil,
	)
	require.NoError(t, err)

	return env
}

func eligibleStudent(id uuid.UUID) *domain.Student {
	return &domain.Student{
		ID:           id,
		Rankings:     map[string]float64{"commercial": 1},
		OverallGrade: 30,
		Status:       domain.StudentStatusUnmatched,
	}
}

func openOrganization(id uuid.UUID, positions int) *domain.Organization {
	return &domain.Organization{
		ID:                 id,
		Name:               "Harbour & Finch LLP",
		AreaOfLaw:          "commercial",
		AvailablePositions: positions,
	}
}

func TestNewMatchingService_NilDependencies(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	engine := matching.NewEngine(matching.DefaultWeights())

	_, err = NewMatchingService(nil, new(MockStudentStore), new(MockOrganizationStore),
		new(MockMatchStore), new(MockMatchingRoundStore), engine, new(MockEventEmitter), nil)
	assert.Error(t, err)

	_, err = NewMatchingService(db, nil, new(MockOrganizationStore),
		new(MockMatchStore), new(MockMatchingRoundStore), engine, new(MockEventEmitter), nil)
	assert.Error(t, err)

	_, err = NewMatchingService(db, new(MockStudentStore), new(MockOrganizationStore),
		new(MockMatchStore), new(MockMatchingRoundStore), nil, new(MockEventEmitter), nil)
	assert.Error(t, err)

	// A nil logger is fine; the default logger is used.
	_, err = NewMatchingService(db, new(MockStudentStore), new(MockOrganizationStore),
		new(MockMatchStore), new(MockMatchingRoundStore), engine, new(MockEventEmitter), nil)
	assert.NoError(t, err)
}

func TestRunMatching_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	studentID := uuid.New()
	orgID := uuid.New()
	startedBy := uuid.New()

	env.rounds.On("CountRounds", mock.Anything).Return(2, nil)
	env.rounds.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.MatchingRound) bool {
		return r.RoundNumber == 3 && r.Status == domain.MatchingRoundStatusStarted
	})).Return(nil)

	env.students.On("GetEligibleForMatching", mock.Anything).
		Return([]*domain.Student{eligibleStudent(studentID)}, nil)
	env.orgs.On("GetWithOpenPositions", mock.Anything).
		Return([]*domain.Organization{openOrganization(orgID, 1)}, nil)
	env.matches.On("GetActive", mock.Anything).Return([]*domain.Match{}, nil)

	env.dbMock.ExpectBegin()
	env.matches.On("ExistsForPair", mock.Anything, studentID, orgID).Return(false, nil)
	env.matches.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Match) bool {
		return m.StudentID == studentID &&
			m.OrganizationID == orgID &&
			m.Type == domain.MatchTypeAlgorithmic &&
			m.RoundNumber == 3 &&
			m.CreatedBy == startedBy &&
			m.Score > 0
	})).Return(nil)
	env.students.On("UpdateStatus", mock.Anything, studentID, domain.StudentStatusPending).
		Return(nil)
	env.rounds.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.MatchingRound) bool {
		return r.Status == domain.MatchingRoundStatusCompleted
	})).Return(nil)
	env.dbMock.ExpectCommit()

	round, err := env.service.RunMatching(ctx, 3, 0, startedBy)
	require.NoError(t, err)

	assert.Equal(t, 3, round.RoundNumber)
	assert.Equal(t, domain.MatchingRoundStatusCompleted, round.Status)
	assert.Equal(t, 1, round.TotalStudents)
	assert.Equal(t, 1, round.MatchedStudents)
	assert.Equal(t, 1, round.TotalOrganizations)

	env.rounds.AssertExpectations(t)
	env.matches.AssertExpectations(t)
	env.students.AssertExpectations(t)
	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}

func TestRunMatching_NoEligibleStudents(t *testing.T) {
	env := newTestEnv(t)

	env.rounds.On("CountRounds", mock.Anything).Return(0, nil)
	env.rounds.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.students.On("GetEligibleForMatching", mock.Anything).
		Return([]*domain.Student{}, nil)

	// The round record is marked failed so the run leaves a trace.
	env.rounds.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.MatchingRound) bool {
		return r.Status == domain.MatchingRoundStatusFailed && r.ErrorMessage != ""
	})).Return(nil)

	_, err := env.service.RunMatching(context.Background(), 3, 0, uuid.Nil)
	assert.ErrorIs(t, err, ErrNoEligibleStudents)

	env.rounds.AssertExpectations(t)
}

func TestRunMatching_NoOpenPositions(t *testing.T) {
	env := newTestEnv(t)

	env.rounds.On("CountRounds", mock.Anything).Return(0, nil)
	env.rounds.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.students.On("GetEligibleForMatching", mock.Anything).
		Return([]*domain.Student{eligibleStudent(uuid.New())}, nil)
	env.orgs.On("GetWithOpenPositions", mock.Anything).
		Return([]*domain.Organization{}, nil)
	env.rounds.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.MatchingRound) bool {
		return r.Status == domain.MatchingRoundStatusFailed
	})).Return(nil)

	_, err := env.service.RunMatching(context.Background(), 3, 0, uuid.Nil)
	assert.ErrorIs(t, err, ErrNoOpenPositions)

	env.rounds.AssertExpectations(t)
}

func TestRunMatching_ActiveMatchesKeepSeatsOccupied(t *testing.T) {
	env := newTestEnv(t)

	studentID := uuid.New()
	orgID := uuid.New()

	env.rounds.On("CountRounds", mock.Anything).Return(1, nil)
	env.rounds.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.students.On("GetEligibleForMatching", mock.Anything).
		Return([]*domain.Student{eligibleStudent(studentID)}, nil)
	env.orgs.On("GetWithOpenPositions", mock.Anything).
		Return([]*domain.Organization{openOrganization(orgID, 1)}, nil)

	// A match from an earlier run still occupies the only seat.
	env.matches.On("GetActive", mock.Anything).Return([]*domain.Match{
		{ID: uuid.New(), StudentID: uuid.New(), OrganizationID: orgID,
			Status: domain.MatchStatusPending},
	}, nil)

	// No new matches get created; the round still completes.
	env.dbMock.ExpectBegin()
	env.rounds.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.MatchingRound) bool {
		return r.Status == domain.MatchingRoundStatusCompleted && r.MatchedStudents == 0
	})).Return(nil)
	env.dbMock.ExpectCommit()

	round, err := env.service.RunMatching(context.Background(), 3, 0, uuid.Nil)
	require.NoError(t, err)

	assert.Equal(t, 0, round.MatchedStudents)
	env.matches.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}

func TestRunMatching_RejectedPairIsNotRecreated(t *testing.T) {
	env := newTestEnv(t)

	studentID := uuid.New()
	orgID := uuid.New()

	env.rounds.On("CountRounds", mock.Anything).Return(2, nil)
	env.rounds.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.students.On("GetEligibleForMatching", mock.Anything).
		Return([]*domain.Student{eligibleStudent(studentID)}, nil)
	env.orgs.On("GetWithOpenPositions", mock.Anything).
		Return([]*domain.Organization{openOrganization(orgID, 1)}, nil)

	// The pair's previous match was rejected, so the student is unmatched
	// and the seat is free, but the match row is still on record. The
	// engine re-proposes the pair; persistence must leave it alone instead
	// of tripping the unique (student, organization) constraint.
	env.matches.On("GetActive", mock.Anything).Return([]*domain.Match{}, nil)

	env.dbMock.ExpectBegin()
	env.matches.On("ExistsForPair", mock.Anything, studentID, orgID).Return(true, nil)
	env.rounds.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.MatchingRound) bool {
		return r.Status == domain.MatchingRoundStatusCompleted && r.MatchedStudents == 0
	})).Return(nil)
	env.dbMock.ExpectCommit()

	round, err := env.service.RunMatching(context.Background(), 3, 0, uuid.Nil)
	require.NoError(t, err)

	assert.Equal(t, 0, round.MatchedStudents)
	env.matches.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.students.AssertNotCalled(t, "UpdateStatus",
		mock.Anything, studentID, domain.StudentStatusPending)
	env.matches.AssertExpectations(t)
	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}

func TestRunMatching_EngineError(t *testing.T) {
	env := newTestEnv(t)

	org := openOrganization(uuid.New(), 0)
	org.AvailablePositions = -1

	env.rounds.On("CountRounds", mock.Anything).Return(0, nil)
	env.rounds.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.students.On("GetEligibleForMatching", mock.Anything).
		Return([]*domain.Student{eligibleStudent(uuid.New())}, nil)
	env.orgs.On("GetWithOpenPositions", mock.Anything).
		Return([]*domain.Organization{org}, nil)
	env.matches.On("GetActive", mock.Anything).Return([]*domain.Match{}, nil)
	env.rounds.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.MatchingRound) bool {
		return r.Status == domain.MatchingRoundStatusFailed
	})).Return(nil)

	_, err := env.service.RunMatching(context.Background(), 3, 0, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrNegativeCapacity)

	env.rounds.AssertExpectations(t)
}

func TestRequestMatchingRun(t *testing.T) {
	env := newTestEnv(t)
	startedBy := uuid.New()

	env.emitter.On("EmitEvent", mock.Anything, mock.MatchedBy(func(e *events.TaskRequestEvent) bool {
		return e.Type == task.TaskTypeMatchingRun
	})).Return(nil)

	err := env.service.RequestMatchingRun(context.Background(), 3, 0, startedBy)
	assert.NoError(t, err)

	env.emitter.AssertExpectations(t)
}

func TestAcceptMatch(t *testing.T) {
	env := newTestEnv(t)

	match, err := domain.NewMatch(uuid.New(), uuid.New(), domain.MatchTypeAlgorithmic,
		domain.MatchScores{Ranking: 0.3}, 1)
	require.NoError(t, err)
	actor := uuid.New()

	env.dbMock.ExpectBegin()
	env.matches.On("GetByID", mock.Anything, match.ID).Return(match, nil)
	env.matches.On("Update", mock.Anything, mock.MatchedBy(func(m *domain.Match) bool {
		return m.Status == domain.MatchStatusAccepted && m.ModifiedBy == actor
	})).Return(nil)
	env.matches.On("CreateHistory", mock.Anything, mock.MatchedBy(func(h *domain.MatchHistory) bool {
		return h.MatchID == match.ID &&
			h.OldStatus == domain.MatchStatusPending &&
			h.NewStatus == domain.MatchStatusAccepted &&
			h.PerformedBy == actor
	})).Return(nil)
	env.students.On("UpdateStatus", mock.Anything, match.StudentID, domain.StudentStatusMatched).
		Return(nil)
	env.dbMock.ExpectCommit()

	accepted, err := env.service.AcceptMatch(context.Background(), match.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, domain.MatchStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.AcceptedAt)

	env.matches.AssertExpectations(t)
	env.students.AssertExpectations(t)
	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}

func TestAcceptMatch_NotFound(t *testing.T) {
	env := newTestEnv(t)
	matchID := uuid.New()

	env.dbMock.ExpectBegin()
	env.matches.On("GetByID", mock.Anything, matchID).
		Return(nil, store.ErrMatchNotFound)
	env.dbMock.ExpectRollback()

	_, err := env.service.AcceptMatch(context.Background(), matchID, uuid.New())
	assert.ErrorIs(t, err, ErrMatchNotFound)

	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}

func TestAcceptMatch_AlreadyDecided(t *testing.T) {
	env := newTestEnv(t)

	match, err := domain.NewMatch(uuid.New(), uuid.New(), domain.MatchTypeAlgorithmic,
		domain.MatchScores{}, 1)
	require.NoError(t, err)
	_, err = match.Accept(uuid.New())
	require.NoError(t, err)

	env.dbMock.ExpectBegin()
	env.matches.On("GetByID", mock.Anything, match.ID).Return(match, nil)
	env.dbMock.ExpectRollback()

	_, err = env.service.AcceptMatch(context.Background(), match.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrMatchNotPending)

	env.matches.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}

func TestRejectMatch(t *testing.T) {
	env := newTestEnv(t)

	match, err := domain.NewMatch(uuid.New(), uuid.New(), domain.MatchTypeAlgorithmic,
		domain.MatchScores{}, 1)
	require.NoError(t, err)
	actor := uuid.New()

	env.dbMock.ExpectBegin()
	env.matches.On("GetByID", mock.Anything, match.ID).Return(match, nil)
	env.matches.On("Update", mock.Anything, mock.MatchedBy(func(m *domain.Match) bool {
		return m.Status == domain.MatchStatusRejected
	})).Return(nil)
	env.matches.On("CreateHistory", mock.Anything, mock.MatchedBy(func(h *domain.MatchHistory) bool {
		return h.NewStatus == domain.MatchStatusRejected && h.Notes == "too far away"
	})).Return(nil)

	// Rejection releases the student back into the matching pool.
	env.students.On("UpdateStatus", mock.Anything, match.StudentID, domain.StudentStatusUnmatched).
		Return(nil)
	env.dbMock.ExpectCommit()

	rejected, err := env.service.RejectMatch(context.Background(), match.ID, actor, "too far away")
	require.NoError(t, err)

	assert.Equal(t, domain.MatchStatusRejected, rejected.Status)
	assert.NotNil(t, rejected.RejectedAt)

	env.matches.AssertExpectations(t)
	env.students.AssertExpectations(t)
	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}
