package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
	"github.com/lexmatch/placement-api/internal/domain/matching"
	"github.com/lexmatch/placement-api/internal/events"
	"github.com/lexmatch/placement-api/internal/redact"
	"github.com/lexmatch/placement-api/internal/store"
	"github.com/lexmatch/placement-api/internal/task"
)

// MatchingService provides the matching run lifecycle and match decisions.
type MatchingService interface {
	// RunMatching loads the current population, executes up to maxRounds
	// deferred acceptance rounds over it, validates the combined assignment
	// and persists all resulting matches atomically. roundNumber selects an
	// explicit round number; zero means the next available. startedBy
	// records the initiating user and may be uuid.Nil for system-initiated
	// runs.
	RunMatching(
		ctx context.Context,
		maxRounds int,
		roundNumber int,
		startedBy uuid.UUID,
	) (*domain.MatchingRound, error)

	// RequestMatchingRun emits an event requesting a background matching
	// run with the given parameters.
	RequestMatchingRun(
		ctx context.Context,
		maxRounds int,
		roundNumber int,
		startedBy uuid.UUID,
	) error

	// AcceptMatch transitions a pending match to accepted, marks the
	// student as matched and records the transition in the audit trail.
	AcceptMatch(ctx context.Context, matchID, by uuid.UUID) (*domain.Match, error)

	// RejectMatch transitions a pending match to rejected, returns the
	// student to the unmatched pool and records the transition with the
	// given reason.
	RejectMatch(ctx context.Context, matchID, by uuid.UUID, reason string) (*domain.Match, error)
}

// matchingServiceImpl implements the MatchingService interface
type matchingServiceImpl struct {
	db           *sql.DB
	studentStore store.StudentStore
	orgStore     store.OrganizationStore
	matchStore   store.MatchStore
	roundStore   store.MatchingRoundStore
	engine       *matching.Engine
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewMatchingService creates a new MatchingService.
// It returns an error if any of the required dependencies are nil.
func NewMatchingService(
	db *sql.DB,
	studentStore store.StudentStore,
	orgStore store.OrganizationStore,
	matchStore store.MatchStore,
	roundStore store.MatchingRoundStore,
	engine *matching.Engine,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (MatchingService, error) {
	if db == nil {
		return nil, &MatchingServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if studentStore == nil {
		return nil, &MatchingServiceError{Operation: "create_service", Message: "studentStore cannot be nil"}
	}
	if orgStore == nil {
		return nil, &MatchingServiceError{Operation: "create_service", Message: "orgStore cannot be nil"}
	}
	if matchStore == nil {
		return nil, &MatchingServiceError{Operation: "create_service", Message: "matchStore cannot be nil"}
	}
	if roundStore == nil {
		return nil, &MatchingServiceError{Operation: "create_service", Message: "roundStore cannot be nil"}
	}
	if engine == nil {
		return nil, &MatchingServiceError{Operation: "create_service", Message: "engine cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &MatchingServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &matchingServiceImpl{
		db:           db,
		studentStore: studentStore,
		orgStore:     orgStore,
		matchStore:   matchStore,
		roundStore:   roundStore,
		engine:       engine,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "matching_service"),
	}, nil
}

// Ensure matchingServiceImpl satisfies the task package's service interface
var _ task.MatchingService = (MatchingService)(nil)

// RunMatching executes a full matching run.
//
// The population snapshot (eligible students, organizations with open
// positions, matches still occupying a seat) is loaded once up front; all
// rounds run over that snapshot in memory. Matches from earlier runs reduce
// effective capacity instead of being recomputed, so rerunning never
// overfills an organization or re-places an already placed student.
func (s *matchingServiceImpl) RunMatching(
	ctx context.Context,
	maxRounds int,
	roundNumber int,
	startedBy uuid.UUID,
) (*domain.MatchingRound, error) {
	if maxRounds <= 0 {
		maxRounds = 1
	}

	if roundNumber == 0 {
		count, err := s.roundStore.CountRounds(ctx)
		if err != nil {
			return nil, NewMatchingServiceError("run_matching", "failed to count rounds", err)
		}
		roundNumber = count + 1
	}

	round, err := domain.NewMatchingRound(roundNumber, startedBy)
	if err != nil {
		return nil, NewMatchingServiceError("run_matching", "failed to create round record", err)
	}

	// Record the round before doing any work so failures leave a trace.
	if err := s.roundStore.Create(ctx, round); err != nil {
		return nil, NewMatchingServiceError("run_matching", "failed to persist round record", err)
	}

	log := s.logger.With("round_id", round.ID, "round_number", roundNumber)
	log.Info("starting matching run", "max_rounds", maxRounds)

	students, orgs, heldByOrg, err := s.loadSnapshot(ctx)
	if err != nil {
		s.failRound(ctx, round, err)
		return nil, err
	}

	// Run rounds until nothing new is placed or the round budget is spent.
	newByOrg := make(map[uuid.UUID][]uuid.UUID)
	for i := 0; i < maxRounds; i++ {
		result, err := s.engine.RunRound(students, orgs, heldByOrg)
		if err != nil {
			wrapped := NewMatchingServiceError("run_matching", "matching round failed", err)
			s.failRound(ctx, round, wrapped)
			return nil, wrapped
		}

		placedThisRound := 0
		for oid, sids := range result.Matches {
			placedThisRound += len(sids)
			heldByOrg[oid] = append(heldByOrg[oid], sids...)
			newByOrg[oid] = append(newByOrg[oid], sids...)
		}

		log.Debug("matching round finished",
			"iteration", i+1,
			"placed", placedThisRound,
			"unmatched", len(result.Unmatched))

		if placedThisRound == 0 {
			break
		}
	}

	if problems := matching.ValidateResults(newByOrg, students, orgs); len(problems) > 0 {
		wrapped := fmt.Errorf("%w: %s", ErrInvalidResults, strings.Join(problems, "; "))
		s.failRound(ctx, round, wrapped)
		return nil, wrapped
	}

	matched, err := s.persistResults(ctx, round, students, orgs, newByOrg)
	if err != nil {
		s.failRound(ctx, round, err)
		return nil, err
	}

	log.Info("matching run completed",
		"total_students", round.TotalStudents,
		"matched_students", matched,
		"total_organizations", round.TotalOrganizations)

	return round, nil
}

// loadSnapshot reads the population the run operates on: eligible students,
// organizations with open positions, and the seats already held by matches
// from earlier runs.
func (s *matchingServiceImpl) loadSnapshot(ctx context.Context) (
	map[uuid.UUID]*domain.Student,
	map[uuid.UUID]*domain.Organization,
	map[uuid.UUID][]uuid.UUID,
	error,
) {
	studentList, err := s.studentStore.GetEligibleForMatching(ctx)
	if err != nil {
		return nil, nil, nil, NewMatchingServiceError("run_matching", "failed to load students", err)
	}
	if len(studentList) == 0 {
		return nil, nil, nil, ErrNoEligibleStudents
	}

	orgList, err := s.orgStore.GetWithOpenPositions(ctx)
	if err != nil {
		return nil, nil, nil, NewMatchingServiceError("run_matching", "failed to load organizations", err)
	}
	if len(orgList) == 0 {
		return nil, nil, nil, ErrNoOpenPositions
	}

	activeMatches, err := s.matchStore.GetActive(ctx)
	if err != nil {
		return nil, nil, nil, NewMatchingServiceError("run_matching", "failed to load active matches", err)
	}

	students := make(map[uuid.UUID]*domain.Student, len(studentList))
	for _, student := range studentList {
		students[student.ID] = student
	}

	orgs := make(map[uuid.UUID]*domain.Organization, len(orgList))
	for _, org := range orgList {
		orgs[org.ID] = org
	}

	heldByOrg := make(map[uuid.UUID][]uuid.UUID)
	for _, m := range activeMatches {
		heldByOrg[m.OrganizationID] = append(heldByOrg[m.OrganizationID], m.StudentID)
	}

	return students, orgs, heldByOrg, nil
}

// persistResults writes the run's new matches, the student status updates
// and the completed round record in a single transaction. Pairs that already
// have a match row, typically from a match rejected after an earlier run, are
// left untouched so the unique (student, organization) constraint never
// aborts the run.
func (s *matchingServiceImpl) persistResults(
	ctx context.Context,
	round *domain.MatchingRound,
	students map[uuid.UUID]*domain.Student,
	orgs map[uuid.UUID]*domain.Organization,
	newByOrg map[uuid.UUID][]uuid.UUID,
) (int, error) {
	matched := 0

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txMatches := s.matchStore.WithTx(tx)
		txStudents := s.studentStore.WithTx(tx)
		txRounds := s.roundStore.WithTx(tx)

		for oid, sids := range newByOrg {
			org := orgs[oid]
			for _, sid := range sids {
				student := students[sid]

				exists, err := txMatches.ExistsForPair(ctx, sid, oid)
				if err != nil {
					return NewMatchingServiceError("run_matching", "failed to check for existing match", err)
				}
				if exists {
					s.logger.Debug("skipping already recorded pair",
						"student_id", sid,
						"organization_id", oid)
					continue
				}

				_, scores := s.engine.Score(student, org)
				match, err := domain.NewMatch(sid, oid, domain.MatchTypeAlgorithmic, scores, round.RoundNumber)
				if err != nil {
					return NewMatchingServiceError("run_matching", "failed to build match", err)
				}
				match.CreatedBy = round.StartedBy

				if err := txMatches.Create(ctx, match); err != nil {
					return NewMatchingServiceError("run_matching", "failed to save match", err)
				}

				if err := txStudents.UpdateStatus(ctx, sid, domain.StudentStatusPending); err != nil {
					return NewMatchingServiceError("run_matching", "failed to update student status", err)
				}

				matched++
			}
		}

		round.Complete(len(students), matched, len(orgs))
		if err := txRounds.Update(ctx, round); err != nil {
			return NewMatchingServiceError("run_matching", "failed to complete round record", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return matched, nil
}

// failRound marks the round record as failed. Best effort: a failure to
// record the failure is logged, not returned, so the original error wins.
func (s *matchingServiceImpl) failRound(ctx context.Context, round *domain.MatchingRound, cause error) {
	round.Fail(redact.Error(cause))
	if err := s.roundStore.Update(ctx, round); err != nil {
		s.logger.Error("failed to record round failure",
			"round_id", round.ID,
			"error", err,
			"original_error", cause)
	}
}

// RequestMatchingRun emits a task request event for a background matching run.
func (s *matchingServiceImpl) RequestMatchingRun(
	ctx context.Context,
	maxRounds int,
	roundNumber int,
	startedBy uuid.UUID,
) error {
	payload := struct {
		MaxRounds   int       `json:"max_rounds"`
		RoundNumber int       `json:"round_number,omitempty"`
		StartedBy   uuid.UUID `json:"started_by,omitempty"`
	}{
		MaxRounds:   maxRounds,
		RoundNumber: roundNumber,
		StartedBy:   startedBy,
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeMatchingRun, payload)
	if err != nil {
		s.logger.Error("failed to create matching run event", "error", err)
		return NewMatchingServiceError("request_matching_run", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit matching run event",
			"error", err,
			"event_id", event.ID)
		return NewMatchingServiceError("request_matching_run", "failed to emit event", err)
	}

	s.logger.Info("matching run event emitted",
		"event_id", event.ID,
		"max_rounds", maxRounds,
		"round_number", roundNumber)
	return nil
}

// AcceptMatch transitions a pending match to accepted inside a transaction,
// together with the student status update and the audit trail entry.
func (s *matchingServiceImpl) AcceptMatch(
	ctx context.Context,
	matchID, by uuid.UUID,
) (*domain.Match, error) {
	var match *domain.Match

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txMatches := s.matchStore.WithTx(tx)
		txStudents := s.studentStore.WithTx(tx)

		var err error
		match, err = txMatches.GetByID(ctx, matchID)
		if err != nil {
			if errors.Is(err, store.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return NewMatchingServiceError("accept_match", "failed to retrieve match", err)
		}

		history, err := match.Accept(by)
		if err != nil {
			return NewMatchingServiceError("accept_match", "failed to accept match", err)
		}

		if err := txMatches.Update(ctx, match); err != nil {
			return NewMatchingServiceError("accept_match", "failed to save match", err)
		}

		if err := txMatches.CreateHistory(ctx, history); err != nil {
			return NewMatchingServiceError("accept_match", "failed to record history", err)
		}

		if err := txStudents.UpdateStatus(ctx, match.StudentID, domain.StudentStatusMatched); err != nil {
			return NewMatchingServiceError("accept_match", "failed to update student status", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match accepted",
		"match_id", matchID,
		"student_id", match.StudentID,
		"organization_id", match.OrganizationID)
	return match, nil
}

// RejectMatch transitions a pending match to rejected inside a transaction.
// The student returns to the unmatched pool and becomes eligible for the
// next matching run; the seat is released for the organization.
func (s *matchingServiceImpl) RejectMatch(
	ctx context.Context,
	matchID, by uuid.UUID,
	reason string,
) (*domain.Match, error) {
	var match *domain.Match

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txMatches := s.matchStore.WithTx(tx)
		txStudents := s.studentStore.WithTx(tx)

		var err error
		match, err = txMatches.GetByID(ctx, matchID)
		if err != nil {
			if errors.Is(err, store.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return NewMatchingServiceError("reject_match", "failed to retrieve match", err)
		}

		history, err := match.Reject(by, reason)
		if err != nil {
			return NewMatchingServiceError("reject_match", "failed to reject match", err)
		}

		if err := txMatches.Update(ctx, match); err != nil {
			return NewMatchingServiceError("reject_match", "failed to save match", err)
		}

		if err := txMatches.CreateHistory(ctx, history); err != nil {
			return NewMatchingServiceError("reject_match", "failed to record history", err)
		}

		if err := txStudents.UpdateStatus(ctx, match.StudentID, domain.StudentStatusUnmatched); err != nil {
			return NewMatchingServiceError("reject_match", "failed to update student status", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match rejected",
		"match_id", matchID,
		"student_id", match.StudentID,
		"organization_id", match.OrganizationID,
		"reason", reason)
	return match, nil
}
