package feedback

import "github.com/sqlsentinel/sentinel-engine/pkg/models"

// Recommendations turns a score into short actionable lines, one
// headline for the overall band plus one line per weak sub-score.
func Recommendations(score models.FeedbackScore) []string {
	var recs []string

	switch {
	case score.Overall >= 90:
		recs = append(recs, "Excellent query: well structured and efficient.")
	case score.Overall >= 70:
		recs = append(recs, "Good query with room for minor improvements.")
	case score.Overall >= 50:
		recs = append(recs, "Query needs attention in several areas before regular use.")
	default:
		recs = append(recs, "Query requires significant rework before production use.")
	}

	if score.Syntax < 70 {
		recs = append(recs, "Review SQL syntax and fix the structural issues.")
	}
	if score.Semantic < 70 {
		recs = append(recs, "Check that the query actually answers the request as phrased.")
	}
	if score.Performance < 70 {
		recs = append(recs, "Consider performance fixes: explicit columns, row limits, join conditions.")
	}
	if score.Security < 80 {
		recs = append(recs, "Address the security findings before running this query anywhere.")
	}

	return recs
}
