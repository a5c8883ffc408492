package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsentinel/sentinel-engine/pkg/models"
	"github.com/sqlsentinel/sentinel-engine/pkg/sqlcheck"
)

type stubSchema map[string][]string

func (s stubSchema) HasTable(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

func (s stubSchema) TableColumns(name string) ([]string, bool) {
	cols, ok := s[strings.ToLower(name)]
	return cols, ok
}

func newTestScorer() *Scorer {
	return NewScorer(sqlcheck.NewValidator(sqlcheck.Options{}))
}

func testSchema() stubSchema {
	return stubSchema{
		"users":  {"id", "name", "email"},
		"orders": {"id", "user_id", "total"},
	}
}

func TestScore_CleanQuery(t *testing.T) {
	score := newTestScorer().Score("SELECT id, name FROM users WHERE id = 1 LIMIT 10", testSchema(), "")

	assert.InDelta(t, 100, score.Syntax, 0.001)
	assert.InDelta(t, 100, score.Security, 0.001)
	assert.InDelta(t, 90, score.Performance, 0.001) // base 80 + row limit credit
	assert.InDelta(t, 80, score.Semantic, 0.001)    // neutral without request text
	assert.InDelta(t, 92, score.Overall, 0.001)
}

func TestScore_WeightedAggregate(t *testing.T) {
	inputs := []string{
		"SELECT id FROM users",
		"SELECT * FROM users WHERE 1=1",
		"SELECT id FROM users; DROP TABLE users",
		"",
	}
	for _, sql := range inputs {
		score := newTestScorer().Score(sql, testSchema(), "list users")
		want := score.Syntax*WeightSyntax +
			score.Semantic*WeightSemantic +
			score.Performance*WeightPerformance +
			score.Security*WeightSecurity
		assert.InDelta(t, want, score.Overall, 0.001, "sql %q", sql)
	}
}

func TestScore_ErrorsDragSyntaxDown(t *testing.T) {
	s := newTestScorer()
	clean := s.Score("SELECT id FROM users", testSchema(), "")
	broken := s.Score("SELECT id FROM users; DROP TABLE users", testSchema(), "")

	assert.InDelta(t, 100, clean.Syntax, 0.001)
	assert.Less(t, broken.Syntax, clean.Syntax)
	assert.Less(t, broken.Security, 50.0, "two security findings cost more than one error")
}

func TestScore_SecurityFindingsCostMoreThanErrors(t *testing.T) {
	score := newTestScorer().Score("SELECT * FROM users WHERE 1=1", testSchema(), "")
	// One security finding: 100 - 34.
	assert.InDelta(t, 66, score.Security, 0.001)
	assert.InDelta(t, 100, score.Syntax, 0.001)
}

func TestScore_PerformanceDeductions(t *testing.T) {
	s := newTestScorer()
	tests := []struct {
		name string
		sql  string
		want float64
	}{
		{"select star", "SELECT * FROM users", 65},
		{"leading wildcard", "SELECT id FROM users WHERE name LIKE '%x'", 60},
		{"order by without limit", "SELECT id FROM users ORDER BY id", 70},
		{"distinct", "SELECT DISTINCT id FROM users", 75},
		{"join without on and no where", "SELECT id FROM users JOIN orders", 55},
		{"row limit credit", "SELECT id FROM users LIMIT 5", 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := s.Score(tt.sql, testSchema(), "")
			assert.InDelta(t, tt.want, score.Performance, 0.001)
		})
	}
}

func TestScore_SemanticIntentMatching(t *testing.T) {
	s := newTestScorer()

	matched := s.Score("SELECT COUNT(id) FROM users", testSchema(), "count the users")
	unmatched := s.Score("SELECT id FROM users", testSchema(), "count the users")
	assert.Greater(t, matched.Semantic, unmatched.Semantic,
		"a count request should score higher when the SQL aggregates")
}

func TestScore_SemanticIdentifierOverlap(t *testing.T) {
	s := newTestScorer()
	sql := "SELECT id FROM users"

	overlapping := s.Score(sql, testSchema(), "show every user record")
	unrelated := s.Score(sql, testSchema(), "show every invoice record")
	assert.Greater(t, overlapping.Semantic, unrelated.Semantic,
		"singular request word should match the plural table name")
}

func TestScore_SemanticNoOverlapPenalty(t *testing.T) {
	score := newTestScorer().Score("SELECT x FROM t", testSchema(), "show all customer invoices")
	assert.InDelta(t, 40, score.Semantic, 0.001) // 70 - 30
}

func TestScore_SemanticTimeIndicator(t *testing.T) {
	s := newTestScorer()

	missing := s.Score("SELECT id FROM orders", testSchema(), "orders from today")
	present := s.Score("SELECT id FROM orders WHERE placed > CURRENT_DATE", testSchema(), "orders from today")
	assert.Greater(t, present.Semantic, missing.Semantic,
		"a time-worded request expects a date function in the SQL")
}

func TestScore_NeutralSemanticWithoutRequest(t *testing.T) {
	score := newTestScorer().Score("SELECT id FROM users", testSchema(), "")
	assert.InDelta(t, neutralSemanticScore, score.Semantic, 0.001)
}

func TestScore_NeverPanicsOnGarbage(t *testing.T) {
	s := newTestScorer()
	for _, sql := range []string{"", "'; DROP TABLE x; --", "((((", "\x00\xff"} {
		score := s.Score(sql, nil, "anything at all")
		assert.GreaterOrEqual(t, score.Overall, 0.0)
		assert.LessOrEqual(t, score.Overall, 100.0)
	}
}

func TestRecommendations_Bands(t *testing.T) {
	tests := []struct {
		overall  float64
		fragment string
	}{
		{95, "Excellent"},
		{75, "Good"},
		{55, "needs attention"},
		{20, "significant rework"},
	}
	for _, tt := range tests {
		recs := Recommendations(scoreWithOverall(tt.overall))
		assert.NotEmpty(t, recs)
		assert.Contains(t, recs[0], tt.fragment)
	}
}

func TestRecommendations_WeakSubScores(t *testing.T) {
	recs := Recommendations(scoreWithOverall(60, func(s *scoreParts) {
		s.syntax = 50
		s.semantic = 50
		s.performance = 50
		s.security = 50
	}))
	joined := strings.Join(recs, "\n")
	assert.Contains(t, joined, "syntax")
	assert.Contains(t, joined, "answers the request")
	assert.Contains(t, joined, "performance")
	assert.Contains(t, joined, "security")
}

type scoreParts struct {
	syntax, semantic, performance, security float64
}

func scoreWithOverall(overall float64, opts ...func(*scoreParts)) models.FeedbackScore {
	parts := scoreParts{syntax: 90, semantic: 90, performance: 90, security: 90}
	for _, opt := range opts {
		opt(&parts)
	}
	return models.FeedbackScore{
		Syntax:      parts.syntax,
		Semantic:    parts.semantic,
		Performance: parts.performance,
		Security:    parts.security,
		Overall:     overall,
	}
}
