package matching

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/domain"
)

// ValidateResults checks an assignment for structural integrity: every
// referenced organization and student must exist in the population, no
// organization may exceed its available positions, and no student may be
// assigned to more than one organization.
//
// All violations are accumulated rather than short-circuited, and returned
// as human-readable strings; an empty slice means the assignment is valid.
// The check is read-only and can be run independently of the engine for
// post-hoc auditing.
func ValidateResults(
	matches map[uuid.UUID][]uuid.UUID,
	students map[uuid.UUID]*domain.Student,
	orgs map[uuid.UUID]*domain.Organization,
) []string {
	errors := []string{}

	orgIDs := make([]uuid.UUID, 0, len(matches))
	for oid := range matches {
		orgIDs = append(orgIDs, oid)
	}
	sort.Slice(orgIDs, func(i, j int) bool { return lessUUID(orgIDs[i], orgIDs[j]) })

	for _, oid := range orgIDs {
		org, ok := orgs[oid]
		if !ok {
			errors = append(errors, fmt.Sprintf("unknown organization ID: %s", oid))
			continue
		}
		if matched := len(matches[oid]); matched > org.AvailablePositions {
			errors = append(errors, fmt.Sprintf(
				"organization %s matched with %d students but capacity is %d",
				oid, matched, org.AvailablePositions))
		}
	}

	assigned := make(map[uuid.UUID]bool)
	for _, oid := range orgIDs {
		for _, sid := range matches[oid] {
			if _, ok := students[sid]; !ok {
				errors = append(errors, fmt.Sprintf(
					"unknown student ID: %s in matches for organization %s", sid, oid))
			}
			if assigned[sid] {
				errors = append(errors, fmt.Sprintf("student %s matched multiple times", sid))
			}
			assigned[sid] = true
		}
	}

	return errors
}
