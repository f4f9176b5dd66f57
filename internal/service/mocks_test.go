package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
	"github.com/lexmatch/placement-api/internal/events"
	"github.com/lexmatch/placement-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockStudentStore is a mock implementation of store.StudentStore.
// WithTx returns the mock itself so expectations cover transactional calls.
type MockStudentStore struct {
	mock.Mock
}

func (m *MockStudentStore) Create(ctx context.Context, student *domain.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	args := m.Called(ctx, id)
	student, _ := args.Get(0).(*domain.Student)
	return student, args.Error(1)
}

func (m *MockStudentStore) GetEligibleForMatching(ctx context.Context) ([]*domain.Student, error) {
	args := m.Called(ctx)
	students, _ := args.Get(0).([]*domain.Student)
	return students, args.Error(1)
}

func (m *MockStudentStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.StudentStatus,
) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return m
}

// MockOrganizationStore is a mock implementation of store.OrganizationStore.
type MockOrganizationStore struct {
	mock.Mock
}

func (m *MockOrganizationStore) Create(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	org, _ := args.Get(0).(*domain.Organization)
	return org, args.Error(1)
}

func (m *MockOrganizationStore) GetWithOpenPositions(
	ctx context.Context,
) ([]*domain.Organization, error) {
	args := m.Called(ctx)
	orgs, _ := args.Get(0).([]*domain.Organization)
	return orgs, args.Error(1)
}

func (m *MockOrganizationStore) WithTx(tx *sql.Tx) store.OrganizationStore {
	return m
}

// MockMatchStore is a mock implementation of store.MatchStore.
type MockMatchStore struct {
	mock.Mock
}

func (m *MockMatchStore) Create(ctx context.Context, match *domain.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	args := m.Called(ctx, id)
	match, _ := args.Get(0).(*domain.Match)
	return match, args.Error(1)
}

func (m *MockMatchStore) ExistsForPair(
	ctx context.Context,
	studentID, organizationID uuid.UUID,
) (bool, error) {
	args := m.Called(ctx, studentID, organizationID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMatchStore) GetActive(ctx context.Context) ([]*domain.Match, error) {
	args := m.Called(ctx)
	matches, _ := args.Get(0).([]*domain.Match)
	return matches, args.Error(1)
}

func (m *MockMatchStore) Update(ctx context.Context, match *domain.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchStore) CreateHistory(ctx context.Context, history *domain.MatchHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockMatchStore) WithTx(tx *sql.Tx) store.MatchStore {
	return m
}

// MockMatchingRoundStore is a mock implementation of store.MatchingRoundStore.
type MockMatchingRoundStore struct {
	mock.Mock
}

func (m *MockMatchingRoundStore) Create(ctx context.Context, round *domain.MatchingRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockMatchingRoundStore) GetByRoundNumber(
	ctx context.Context,
	roundNumber int,
) (*domain.MatchingRound, error) {
	args := m.Called(ctx, roundNumber)
	round, _ := args.Get(0).(*domain.MatchingRound)
	return round, args.Error(1)
}

func (m *MockMatchingRoundStore) CountRounds(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockMatchingRoundStore) Update(ctx context.Context, round *domain.MatchingRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockMatchingRoundStore) WithTx(tx *sql.Tx) store.MatchingRoundStore {
	return m
}

// MockEventEmitter is a mock implementation of events.EventEmitter.
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
