package matching

import (
	"github.com/lexmatch/placement-api/internal/domain"
)

// maxOverallGrade is the top of the grading scale student grades are
// normalized against.
const maxOverallGrade = 40.0

// maxStatementRating is the top of the per-criterion statement rating scale.
const maxStatementRating = 5.0

// CalculateMatchScores computes the weighted match score for a
// (student, organization) pair.
//
// Each component is first computed on a [0, 1] scale and then multiplied by
// its weight, so the returned MatchScores hold weighted values and the total
// is their sum. Missing student data (no rankings, no statement, no
// preferences) is never an error; it resolves to the documented zero or
// neutral value for that component, degrading the candidate's
// competitiveness instead of blocking the run.
func CalculateMatchScores(
	student *domain.Student,
	org *domain.Organization,
	weights Weights,
) (float64, domain.MatchScores) {
	scores := domain.MatchScores{
		Ranking:   calculateRankingScore(student.Rankings, org.AreaOfLaw) * weights.Ranking,
		Grades:    calculateGradesScore(student.OverallGrade, org.MinimumGrade) * weights.Grades,
		Statement: calculateStatementScore(student.Statements[org.AreaOfLaw], student.StatementRatings[org.AreaOfLaw]) * weights.Statement,
		Location:  calculatePreferenceScore(student.Locations, org.Location) * weights.Location,
		WorkMode:  calculatePreferenceScore(student.WorkModes, org.WorkMode) * weights.WorkMode,
	}

	return scores.Total(), scores
}

// calculateRankingScore converts the student's area-of-law ranking into a
// [0, 1] score. Lower rank means higher preference, so the rank is inverted
// and normalized by the student's worst (largest) rank: rank 1 scores 1.0,
// the worst ranked area scores 1/maxRank. An area the student did not rank
// is treated as the worst rank. No rankings at all, or an empty organization
// area, scores zero.
func calculateRankingScore(rankings map[string]float64, orgArea string) float64 {
	if len(rankings) == 0 || orgArea == "" {
		return 0.0
	}

	var maxRank float64
	for _, rank := range rankings {
		if rank > maxRank {
			maxRank = rank
		}
	}
	if maxRank <= 0 {
		return 0.0
	}

	areaRank, ok := rankings[orgArea]
	if !ok {
		areaRank = maxRank
	}

	return (maxRank - areaRank + 1) / maxRank
}

// calculateGradesScore scores the student's overall grade against the
// organization's minimum requirement. A grade strictly below the minimum is
// a hard cutoff scoring zero; otherwise the grade is normalized against the
// 40-point scale and clamped to 1.0.
func calculateGradesScore(studentGrade, minimumGrade float64) float64 {
	if studentGrade < minimumGrade {
		return 0.0
	}

	score := studentGrade / maxOverallGrade
	if score > 1.0 {
		return 1.0
	}
	return score
}

// calculateStatementScore averages the graded statement ratings for the
// organization's area of law into a [0, 1] score. Only ratings that were
// actually given count toward both the sum and the maximum; a missing
// statement or missing ratings score zero.
func calculateStatementScore(statement string, ratings map[string]int) float64 {
	if statement == "" || len(ratings) == 0 {
		return 0.0
	}

	sum := 0
	for _, rating := range ratings {
		sum += rating
	}

	return float64(sum) / (float64(len(ratings)) * maxStatementRating)
}

// calculatePreferenceScore scores a categorical preference match: 1.0 when
// the organization's value is among the student's preferences, 0.0 when it
// is not, and a neutral 0.5 when the student expressed no preference at all.
// Used for both location and work mode.
func calculatePreferenceScore(preferred []string, actual string) float64 {
	if len(preferred) == 0 {
		return 0.5
	}

	for _, p := range preferred {
		if p == actual {
			return 1.0
		}
	}
	return 0.0
}
