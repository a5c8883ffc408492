package sqlcheck

import (
	"reflect"
	"strings"
	"testing"
)

func testSchema() fakeSchema {
	return fakeSchema{
		"users":  {"id", "name", "email"},
		"orders": {"id", "user_id", "total"},
	}
}

func TestValidate_ValidSelect(t *testing.T) {
	v := NewValidator(Options{})
	report := v.Validate("SELECT id, name FROM users WHERE id = 1", testSchema())

	if !report.IsValid {
		t.Fatalf("expected valid, got %+v", report)
	}
	if report.StatementType != StatementSelect || report.StatementCount != 1 {
		t.Errorf("type=%s count=%d", report.StatementType, report.StatementCount)
	}
	if len(report.Errors) != 0 || len(report.SecurityIssues) != 0 {
		t.Errorf("unexpected blocking issues: %+v", report)
	}
}

func TestValidate_SelectStarGetsSuggestionAndExpansion(t *testing.T) {
	v := NewValidator(Options{})
	report := v.Validate("SELECT * FROM users", testSchema())

	if !report.IsValid {
		t.Fatalf("expected valid, got %+v", report)
	}
	found := false
	for _, s := range report.Suggestions {
		if strings.Contains(s, "SELECT *") {
			found = true
		}
	}
	if !found {
		t.Errorf("no SELECT * suggestion: %v", report.Suggestions)
	}
	if report.OptimizedSQL != "SELECT email, id, name FROM users" {
		t.Errorf("OptimizedSQL = %q", report.OptimizedSQL)
	}
}

func TestValidate_StackedDropIsMultiAndSecurity(t *testing.T) {
	v := NewValidator(Options{})
	report := v.Validate("SELECT id FROM users; DROP TABLE users", testSchema())

	if report.IsValid {
		t.Fatal("batch with DROP must not be valid")
	}
	if report.StatementType != StatementMulti {
		t.Errorf("StatementType = %s, want MULTI", report.StatementType)
	}
	if len(report.Errors) == 0 {
		t.Error("expected a statement-count error")
	}
	if len(report.SecurityIssues) == 0 {
		t.Error("expected security findings for the stacked DROP")
	}
	if report.OptimizedSQL != "" {
		t.Errorf("invalid query must not carry OptimizedSQL, got %q", report.OptimizedSQL)
	}
}

func TestValidate_TautologyBlocksValidity(t *testing.T) {
	v := NewValidator(Options{})
	report := v.Validate("SELECT * FROM users WHERE 1=1", testSchema())

	if report.IsValid {
		t.Fatal("tautology must not be valid")
	}
	found := false
	for _, s := range report.SecurityIssues {
		if strings.Contains(s, "always true") {
			found = true
		}
	}
	if !found {
		t.Errorf("no tautology finding: %v", report.SecurityIssues)
	}
}

func TestValidate_TrailingCommentIsValid(t *testing.T) {
	v := NewValidator(Options{})
	report := v.Validate("SELECT id FROM users -- fetch all ids", testSchema())

	if !report.IsValid {
		t.Fatalf("trailing annotation comment must stay valid: %+v", report)
	}
}

func TestValidate_EmptyInput(t *testing.T) {
	v := NewValidator(Options{})
	for _, input := range []string{"", "   ", "-- only a comment"} {
		report := v.Validate(input, nil)
		if report.IsValid {
			t.Errorf("%q: expected invalid", input)
		}
		if report.StatementType != StatementEmpty {
			t.Errorf("%q: StatementType = %s, want EMPTY", input, report.StatementType)
		}
		if len(report.Errors) != 1 {
			t.Errorf("%q: got %d errors, want exactly 1: %v", input, len(report.Errors), report.Errors)
		}
	}
}

func TestValidate_LiteralKeywordsStayValid(t *testing.T) {
	v := NewValidator(Options{})
	report := v.Validate("SELECT 'please DROP TABLE nothing'", nil)
	if !report.IsValid {
		t.Fatalf("verbs inside a literal are data, not SQL: %+v", report)
	}
}

func TestValidate_NonSelectRejected(t *testing.T) {
	v := NewValidator(Options{})
	tests := []struct {
		input    string
		wantType StatementType
	}{
		{"INSERT INTO users (id) VALUES (1)", StatementInsert},
		{"UPDATE users SET name = 'x'", StatementUpdate},
		{"DELETE FROM users", StatementDelete},
		{"DROP TABLE users", StatementDDL},
		{"TRUNCATE TABLE users", StatementDDL},
	}
	for _, tt := range tests {
		report := v.Validate(tt.input, nil)
		if report.IsValid {
			t.Errorf("%q: must not be valid", tt.input)
		}
		if report.StatementType != tt.wantType {
			t.Errorf("%q: type = %s, want %s", tt.input, report.StatementType, tt.wantType)
		}
	}
}

func TestValidate_ValidityInvariant(t *testing.T) {
	// IsValid must equal: no errors, no security issues, single SELECT.
	v := NewValidator(Options{DialectWarnings: true})
	inputs := []string{
		"SELECT id FROM users",
		"SELECT * FROM users WHERE 1=1",
		"SELECT id FROM users; DROP TABLE users",
		"",
		"DELETE FROM users",
		"SELECT 'x' FROM dual",
		"SELECT id FROM users WHERE name = 'O''Brien' ORDER BY id LIMIT 5",
		"SELECT (1",
		"SELECT 'unterminated",
	}
	for _, input := range inputs {
		report := v.Validate(input, testSchema())
		derived := len(report.Errors) == 0 &&
			len(report.SecurityIssues) == 0 &&
			report.StatementType == StatementSelect &&
			report.StatementCount == 1
		if report.IsValid != derived {
			t.Errorf("%q: IsValid = %v but derived verdict = %v (%+v)", input, report.IsValid, derived, report)
		}
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := NewValidator(Options{DialectWarnings: true})
	inputs := []string{
		"SELECT id FROM users",
		"SELECT * FROM users WHERE 1=1; DROP TABLE users",
		"",
	}
	for _, input := range inputs {
		first := v.Validate(input, testSchema())
		second := v.Validate(input, testSchema())
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%q: repeated validation differs:\n%+v\n%+v", input, first, second)
		}
	}
}

func TestValidate_AppendingAttackNeverImproves(t *testing.T) {
	v := NewValidator(Options{})
	base := "SELECT id FROM users"
	baseReport := v.Validate(base, testSchema())
	if !baseReport.IsValid {
		t.Fatalf("base query should be valid: %+v", baseReport)
	}

	for _, suffix := range []string{"; DROP TABLE users", " OR 1=1", " UNION SELECT NULL, NULL"} {
		report := v.Validate(base+suffix, testSchema())
		if report.IsValid {
			t.Errorf("appending %q must not keep the query valid", suffix)
		}
		if len(report.SecurityIssues) == 0 {
			t.Errorf("appending %q produced no security findings", suffix)
		}
	}
}

func TestValidate_LengthCap(t *testing.T) {
	v := NewValidator(Options{MaxQueryLength: 30})
	report := v.Validate("SELECT id FROM users WHERE name = 'long enough to exceed the cap'", nil)
	if report.IsValid {
		t.Fatal("oversized query must be rejected")
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "byte limit") {
		t.Errorf("Errors = %v", report.Errors)
	}
}

func TestValidate_UnbalancedParens(t *testing.T) {
	v := NewValidator(Options{})
	tests := []struct {
		input    string
		fragment string
	}{
		{"SELECT (1", "missing closing"},
		{"SELECT 1)", "extra closing"},
	}
	for _, tt := range tests {
		report := v.Validate(tt.input, nil)
		if report.IsValid {
			t.Errorf("%q: must not be valid", tt.input)
		}
		found := false
		for _, e := range report.Errors {
			if strings.Contains(e, tt.fragment) {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: no error containing %q: %v", tt.input, tt.fragment, report.Errors)
		}
	}
}

func TestValidate_LexicalErrors(t *testing.T) {
	v := NewValidator(Options{})
	tests := []struct {
		input    string
		fragment string
	}{
		{"SELECT 'oops", "unterminated string"},
		{"SELECT 1 /* oops", "unterminated block comment"},
		{"SELECT [oops", "unterminated bracketed identifier"},
	}
	for _, tt := range tests {
		report := v.Validate(tt.input, nil)
		if report.IsValid {
			t.Errorf("%q: must not be valid", tt.input)
		}
		found := false
		for _, e := range report.Errors {
			if strings.Contains(e, tt.fragment) {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: no error containing %q: %v", tt.input, tt.fragment, report.Errors)
		}
	}
}

func TestBuildReport_ChannelsNeverNil(t *testing.T) {
	r := BuildReport(StatementInfo{Type: StatementSelect, StatementCount: 1}, nil)
	if r.Errors == nil || r.Warnings == nil || r.Suggestions == nil || r.SecurityIssues == nil {
		t.Errorf("report channels must be empty slices, not nil: %+v", r)
	}
	if !r.IsValid {
		t.Error("clean single SELECT must be valid")
	}
}

func TestOptimizeSQL(t *testing.T) {
	schema := testSchema()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trailing semicolon stripped",
			input: "SELECT id FROM users;",
			want:  "SELECT id FROM users",
		},
		{
			name:  "star expanded for known table",
			input: "SELECT * FROM users",
			want:  "SELECT email, id, name FROM users",
		},
		{
			name:  "star with where clause",
			input: "SELECT * FROM orders WHERE total > 10",
			want:  "SELECT id, total, user_id FROM orders WHERE total > 10",
		},
		{
			name:  "unknown table left alone",
			input: "SELECT * FROM mystery",
			want:  "SELECT * FROM mystery",
		},
		{
			name:  "explicit columns untouched",
			input: "SELECT id FROM users",
			want:  "SELECT id FROM users",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OptimizeSQL(tt.input, Tokenize(tt.input), schema)
			if got != tt.want {
				t.Errorf("OptimizeSQL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptimizeSQL_NilSchema(t *testing.T) {
	input := "SELECT * FROM users;"
	got := OptimizeSQL(input, Tokenize(input), nil)
	if got != "SELECT * FROM users" {
		t.Errorf("OptimizeSQL = %q", got)
	}
}
