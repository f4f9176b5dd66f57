package matching

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
)

// RoundResult is the outcome of a single deferred acceptance round.
type RoundResult struct {
	// Matches maps organization ID to the students tentatively placed there.
	Matches map[uuid.UUID][]uuid.UUID

	// StudentScores holds, per student, the scores of the preferences left
	// unconsumed when the round ended. Informational only.
	StudentScores map[uuid.UUID][]float64

	// Unmatched lists the students that exhausted their preference lists
	// without being placed, in ascending ID order.
	Unmatched []uuid.UUID
}

// Engine runs capacity-constrained deferred acceptance rounds over an
// in-memory population snapshot. It performs no I/O and never observes
// changes made to the underlying records while it runs; rerunning the same
// snapshot always reproduces the same assignment.
type Engine struct {
	weights Weights
}

// NewEngine creates an Engine using the given component weights.
func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// Score computes the weighted match score for one (student, organization)
// pair using the engine's weights.
func (e *Engine) Score(student *domain.Student, org *domain.Organization) (float64, domain.MatchScores) {
	return CalculateMatchScores(student, org, e.weights)
}

// RunRound executes one deferred acceptance round.
//
// Students repeatedly propose to their best remaining organization;
// organizations provisionally hold their best proposals up to capacity,
// bumping weaker holders as better offers arrive. A bumped student has the
// organization removed from their preference list before re-entering the
// queue, so preference lists shrink monotonically and the loop always
// terminates. A student whose list empties is dropped from the round.
//
// previousMatches carries placements from earlier rounds of the same run:
// those students are excluded from proposing and their seats reduce the
// organization's effective capacity, so merging rounds can never overfill
// an organization.
//
// Returns an error if any organization reports negative capacity.
func (e *Engine) RunRound(
	students map[uuid.UUID]*domain.Student,
	orgs map[uuid.UUID]*domain.Organization,
	previousMatches map[uuid.UUID][]uuid.UUID,
) (*RoundResult, error) {
	placed := make(map[uuid.UUID]bool)
	for _, sids := range previousMatches {
		for _, sid := range sids {
			placed[sid] = true
		}
	}

	// Effective remaining capacity per organization for this round.
	capacities := make(map[uuid.UUID]int, len(orgs))
	for oid, org := range orgs {
		if org.AvailablePositions < 0 {
			return nil, fmt.Errorf("organization %s: %w", oid, domain.ErrNegativeCapacity)
		}
		capacity := org.AvailablePositions - len(previousMatches[oid])
		if capacity < 0 {
			capacity = 0
		}
		capacities[oid] = capacity
	}

	candidates := make(map[uuid.UUID]*domain.Student, len(students))
	for sid, student := range students {
		if !placed[sid] {
			candidates[sid] = student
		}
	}

	preferences := buildPreferences(candidates, orgs, capacities, e.weights)
	unmatched := sortedStudentIDs(candidates)
	matches := make(map[uuid.UUID][]uuid.UUID)

	for len(unmatched) > 0 {
		sid := unmatched[0]
		unmatched = unmatched[1:]

		prefs := preferences[sid]
		if len(prefs) == 0 {
			// No viable organization left for this student this round.
			continue
		}

		top := prefs[0]
		capacity := capacities[top.orgID]
		held := matches[top.orgID]

		if len(held) < capacity {
			matches[top.orgID] = append(held, sid)
			continue
		}

		// Organization is full: rank all holders plus the proposer and keep
		// the top `capacity` of them.
		type scored struct {
			id    uuid.UUID
			score float64
		}
		contenders := make([]scored, 0, len(held)+1)
		for _, msid := range held {
			contenders = append(contenders, scored{id: msid, score: preferenceScoreFor(preferences[msid], top.orgID)})
		}
		contenders = append(contenders, scored{id: sid, score: top.score})

		sort.Slice(contenders, func(i, j int) bool {
			if contenders[i].score != contenders[j].score {
				return contenders[i].score > contenders[j].score
			}
			return lessUUID(contenders[i].id, contenders[j].id)
		})

		kept := make([]uuid.UUID, 0, capacity)
		for _, c := range contenders[:capacity] {
			kept = append(kept, c.id)
		}
		matches[top.orgID] = kept

		for _, c := range contenders[capacity:] {
			preferences[c.id] = removePreference(preferences[c.id], top.orgID)
			unmatched = append(unmatched, c.id)
		}
	}

	result := &RoundResult{
		Matches:       matches,
		StudentScores: make(map[uuid.UUID][]float64, len(preferences)),
	}

	for sid, prefs := range preferences {
		scores := make([]float64, 0, len(prefs))
		for _, p := range prefs {
			scores = append(scores, p.score)
		}
		result.StudentScores[sid] = scores
	}

	matchedStudents := make(map[uuid.UUID]bool)
	for _, sids := range matches {
		for _, sid := range sids {
			matchedStudents[sid] = true
		}
	}
	for _, sid := range sortedStudentIDs(candidates) {
		if !matchedStudents[sid] {
			result.Unmatched = append(result.Unmatched, sid)
		}
	}

	return result, nil
}
