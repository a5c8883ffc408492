package sqlcheck

import (
	"sort"
	"strings"
)

// Severity partitions issues into the four report channels.
type Severity string

const (
	SeverityError      Severity = "error"      // blocks validity
	SeveritySecurity   Severity = "security"   // blocks validity, attack pattern
	SeverityWarning    Severity = "warning"    // advisory, does not block
	SeveritySuggestion Severity = "suggestion" // style or performance hint
)

// Issue is a single diagnostic produced by one of the analysis stages.
// Position is a byte offset into the original SQL, or -1 when the issue
// has no single location.
type Issue struct {
	Severity Severity
	Message  string
	Position int
}

// Report is the final verdict for one SQL text. IsValid is true iff
// Errors and SecurityIssues are empty, the statement classified as a
// SELECT, and exactly one statement was found. Callers rely on IsValid
// alone; they never re-derive validity from the slices.
type Report struct {
	IsValid        bool          `json:"is_valid"`
	StatementType  StatementType `json:"statement_type"`
	StatementCount int           `json:"statement_count"`
	Errors         []string      `json:"errors"`
	Warnings       []string      `json:"warnings"`
	Suggestions    []string      `json:"suggestions"`
	SecurityIssues []string      `json:"security_issues"`
	OptimizedSQL   string        `json:"optimized_sql,omitempty"`
}

// BuildReport partitions issues by severity, preserving detection order
// within each channel, and computes the validity verdict.
func BuildReport(info StatementInfo, issues []Issue) Report {
	r := Report{
		StatementType:  info.Type,
		StatementCount: info.StatementCount,
		Errors:         []string{},
		Warnings:       []string{},
		Suggestions:    []string{},
		SecurityIssues: []string{},
	}
	for _, is := range issues {
		switch is.Severity {
		case SeverityError:
			r.Errors = append(r.Errors, is.Message)
		case SeveritySecurity:
			r.SecurityIssues = append(r.SecurityIssues, is.Message)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, is.Message)
		case SeveritySuggestion:
			r.Suggestions = append(r.Suggestions, is.Message)
		}
	}
	r.IsValid = len(r.Errors) == 0 &&
		len(r.SecurityIssues) == 0 &&
		info.Type == StatementSelect &&
		info.StatementCount == 1
	return r
}

// OptimizeSQL produces a lightly rewritten form of a valid query. The
// rewrite is advisory: callers must never substitute it for the original
// without the user asking. Current rewrites:
//
//   - strip a trailing semicolon and surrounding whitespace
//   - expand SELECT * to the table's column list when the schema knows
//     the single table being read
func OptimizeSQL(sql string, ts TokenStream, schema SchemaContext) string {
	out := strings.TrimSpace(sql)
	out = strings.TrimSuffix(out, ";")
	out = strings.TrimRight(out, " \t\n\r")

	if schema == nil {
		return out
	}

	sig := ts.Significant()
	// Only the simple shape SELECT * FROM <table> ... is expanded.
	if len(sig) < 4 || sig[0].Upper != "SELECT" || sig[1].Text != "*" || sig[2].Upper != "FROM" {
		return out
	}
	if sig[3].Kind != TokenIdentifier {
		return out
	}
	table := sig[3].BareName()
	cols, ok := schema.TableColumns(table)
	if !ok || len(cols) == 0 {
		return out
	}
	sorted := append([]string(nil), cols...)
	sort.Strings(sorted)

	star := strings.Index(out, "*")
	if star < 0 {
		return out
	}
	return out[:star] + strings.Join(sorted, ", ") + out[star+1:]
}
