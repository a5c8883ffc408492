// Package feedback derives quality scores for generated SQL. The scorer
// reuses the sqlcheck analysis so the verdict and the scores always
// describe the same reading of the query.
package feedback

import (
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/sqlsentinel/sentinel-engine/pkg/models"
	"github.com/sqlsentinel/sentinel-engine/pkg/sqlcheck"
)

// Aggregate weighting, fixed and documented: syntax and semantic
// alignment carry 30% each, performance and security 20% each. The
// security sub-score also dominates indirectly because each security
// finding costs more than twice an ordinary error.
const (
	WeightSyntax      = 0.30
	WeightSemantic    = 0.30
	WeightPerformance = 0.20
	WeightSecurity    = 0.20

	penaltyPerError    = 20
	penaltyPerSecurity = 34

	neutralSemanticScore = 80 // used when no natural language text is supplied
)

// intentKeywords maps words in a natural-language request to SQL
// constructs the query should contain when that intent is present.
var intentKeywords = map[string][]string{
	"count":   {"COUNT", "SUM"},
	"total":   {"SUM", "COUNT"},
	"average": {"AVG"},
	"maximum": {"MAX"},
	"minimum": {"MIN"},
	"sort":    {"ORDER BY"},
	"recent":  {"ORDER BY", "DESC"},
	"group":   {"GROUP BY"},
	"filter":  {"WHERE", "HAVING"},
	"join":    {"JOIN"},
}

// timeIndicators are request words that imply a date filter.
var timeIndicators = []string{
	"today", "yesterday", "last week", "this month", "this year", "recent",
}

// dateFunctions is what we look for when a time indicator is present.
var dateFunctions = []string{
	"DATE", "NOW", "CURRENT_DATE", "CURRENT_TIMESTAMP", "GETDATE", "CURDATE", "INTERVAL",
}

// Scorer computes feedback scores from a SQL string. It is stateless
// and safe for concurrent use.
type Scorer struct {
	validator *sqlcheck.Validator
}

// NewScorer wraps a validator. The same validator options that gate the
// verdict gate the scoring analysis.
func NewScorer(v *sqlcheck.Validator) *Scorer {
	return &Scorer{validator: v}
}

// Score produces the four sub-scores and their weighted aggregate. It
// never fails: SQL that is broken or hostile simply scores low. The
// natural-language request is optional; without it the semantic
// sub-score falls back to a neutral value.
func (s *Scorer) Score(sql string, schema sqlcheck.SchemaContext, naturalLanguage string) models.FeedbackScore {
	a := s.validator.Analyze(sql, schema)

	var errorCount, securityCount int
	for _, issue := range a.Issues {
		switch issue.Severity {
		case sqlcheck.SeverityError:
			errorCount++
		case sqlcheck.SeveritySecurity:
			securityCount++
		}
	}

	score := models.FeedbackScore{
		Syntax:      clamp(100 - float64(errorCount)*penaltyPerError),
		Security:    clamp(100 - float64(securityCount)*penaltyPerSecurity),
		Performance: performanceScore(a.Structure),
		Semantic:    semanticScore(a, naturalLanguage),
	}
	score.Overall = clamp(score.Syntax*WeightSyntax +
		score.Semantic*WeightSemantic +
		score.Performance*WeightPerformance +
		score.Security*WeightSecurity)
	return score
}

// performanceScore applies fixed deductions for structural
// anti-patterns and a small credit for bounding the result set.
func performanceScore(f sqlcheck.StructureFacts) float64 {
	score := 80.0
	if f.SelectStar {
		score -= 15
	}
	if f.LeadingWildcardLike {
		score -= 20
	}
	if f.HasOrderBy && !f.HasRowLimit {
		score -= 10
	}
	if f.SubqueryDepth > 2 {
		score -= 15
	}
	if f.HasDistinct {
		score -= 5
	}
	if f.JoinWithoutOn {
		score -= 15
	}
	if len(f.Tables) > 1 && !f.HasWhere {
		score -= 10
	}
	if f.HasRowLimit {
		score += 10
	}
	return clamp(score)
}

// semanticScore estimates how well the SQL reflects the request. It is
// a coarse lexical heuristic: intent keywords must find their SQL
// counterparts, request words should overlap the identifiers used
// (singular/plural forms both count), and time words expect a date
// filter. No overlap at all drags the score down hard.
func semanticScore(a sqlcheck.Analysis, naturalLanguage string) float64 {
	nl := strings.ToLower(strings.TrimSpace(naturalLanguage))
	if nl == "" {
		return neutralSemanticScore
	}

	score := 70.0
	norm := a.Tokens.NormalizedUpper()

	for intent, constructs := range intentKeywords {
		if !strings.Contains(nl, intent) {
			continue
		}
		matched := false
		for _, c := range constructs {
			if strings.Contains(norm, c) {
				matched = true
				break
			}
		}
		if matched {
			score += 5
		} else {
			score -= 15
		}
	}

	overlap := identifierOverlap(nl, a)
	switch {
	case overlap == 0:
		score -= 30
	case overlap >= 3:
		score += 10
	default:
		score += float64(overlap) * 3
	}

	for _, indicator := range timeIndicators {
		if !strings.Contains(nl, indicator) {
			continue
		}
		hasDate := false
		for _, fn := range dateFunctions {
			if strings.Contains(norm, fn) {
				hasDate = true
				break
			}
		}
		if !hasDate {
			score -= 20
		}
		break
	}

	return clamp(score)
}

// identifierOverlap counts request words that name an identifier used
// in the SQL. "users" in the query matches both "user" and "users" in
// the request, and vice versa.
func identifierOverlap(nl string, a sqlcheck.Analysis) int {
	names := map[string]bool{}
	for _, ref := range sqlcheck.CollectIdentifiers(a.Tokens) {
		for _, part := range strings.Split(strings.ToLower(ref.Name), ".") {
			if part != "" {
				names[part] = true
				names[inflection.Singular(part)] = true
			}
		}
	}

	count := 0
	seen := map[string]bool{}
	for _, word := range strings.FieldsFunc(nl, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '_'
	}) {
		if len(word) < 3 || seen[word] {
			continue
		}
		seen[word] = true
		if names[word] || names[inflection.Singular(word)] {
			count++
		}
	}
	return count
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
