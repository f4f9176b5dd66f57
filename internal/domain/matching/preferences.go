package matching

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
)

// preference is one entry in a student's preference list: a viable
// organization and the student's total match score for it.
type preference struct {
	orgID uuid.UUID
	score float64
}

// buildPreferences computes each student's preference list over the given
// organizations: candidate organizations ranked by total score descending.
// Only organizations with remaining capacity > 0 and only pairs scoring
// above zero appear; zero-score pairs are never proposed to.
//
// Ties in score break by organization ID ascending so that a fixed
// population snapshot always yields the same lists.
func buildPreferences(
	students map[uuid.UUID]*domain.Student,
	orgs map[uuid.UUID]*domain.Organization,
	capacities map[uuid.UUID]int,
	weights Weights,
) map[uuid.UUID][]preference {
	prefs := make(map[uuid.UUID][]preference, len(students))

	for sid, student := range students {
		var list []preference
		for oid, org := range orgs {
			if capacities[oid] <= 0 {
				continue
			}
			score, _ := CalculateMatchScores(student, org, weights)
			if score > 0 {
				list = append(list, preference{orgID: oid, score: score})
			}
		}

		sort.Slice(list, func(i, j int) bool {
			if list[i].score != list[j].score {
				return list[i].score > list[j].score
			}
			return lessUUID(list[i].orgID, list[j].orgID)
		})

		prefs[sid] = list
	}

	return prefs
}

// preferenceScoreFor looks up the student's score for the given organization
// in their preference list. Returns 0 if the organization is absent, which
// should not occur for a tentatively matched student by construction.
func preferenceScoreFor(list []preference, orgID uuid.UUID) float64 {
	for _, p := range list {
		if p.orgID == orgID {
			return p.score
		}
	}
	return 0.0
}

// removePreference returns the list with every entry for the given
// organization removed.
func removePreference(list []preference, orgID uuid.UUID) []preference {
	out := list[:0]
	for _, p := range list {
		if p.orgID != orgID {
			out = append(out, p)
		}
	}
	return out
}

// lessUUID orders UUIDs by their byte representation.
func lessUUID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// sortedStudentIDs returns the student IDs in ascending order, giving the
// deferred acceptance loop a deterministic proposal order.
func sortedStudentIDs(students map[uuid.UUID]*domain.Student) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(students))
	for id := range students {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return lessUUID(ids[i], ids[j]) })
	return ids
}
