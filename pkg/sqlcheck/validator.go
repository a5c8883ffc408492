package sqlcheck

import (
	"fmt"
	"strings"
)

// DefaultMaxQueryLength caps accepted input before tokenization. Length
// is the only resource-exhaustion concern in this package: every pass is
// a bounded linear scan.
const DefaultMaxQueryLength = 10000

// Options tune the validator. The zero value is usable; NewValidator
// fills in defaults.
type Options struct {
	// MaxQueryLength rejects longer inputs with an error issue before
	// any analysis runs. Zero means DefaultMaxQueryLength.
	MaxQueryLength int

	// DialectWarnings enables the SQL Server portability warnings.
	DialectWarnings bool
}

// Validator runs the full analysis pipeline. It holds no per-call state
// and is safe for concurrent use; every Validate call owns its own
// intermediate values.
type Validator struct {
	opts Options
}

// NewValidator returns a validator with defaults applied.
func NewValidator(opts Options) *Validator {
	if opts.MaxQueryLength <= 0 {
		opts.MaxQueryLength = DefaultMaxQueryLength
	}
	return &Validator{opts: opts}
}

// Analysis bundles every intermediate the pipeline produces for one SQL
// text. The report builder consumes it, and the feedback scorer reuses
// it so both views always agree on what they saw.
type Analysis struct {
	SQL       string
	Tokens    TokenStream
	Statement StatementInfo
	Structure StructureFacts
	Issues    []Issue
}

// Analyze runs tokenization, classification, identifier validation,
// injection detection, and structural analysis. It never fails:
// malformed SQL comes back as error issues, not Go errors.
func (v *Validator) Analyze(sql string, schema SchemaContext) Analysis {
	a := Analysis{SQL: sql}

	if len(sql) > v.opts.MaxQueryLength {
		a.Statement = StatementInfo{Type: StatementUnknown}
		a.Issues = append(a.Issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("query is %d bytes, above the %d byte limit", len(sql), v.opts.MaxQueryLength),
			Position: -1,
		})
		return a
	}

	a.Tokens = Tokenize(sql)
	a.Statement = Classify(a.Tokens)
	a.Structure = AnalyzeStructure(a.Tokens)

	a.Issues = append(a.Issues, classificationIssues(a.Statement)...)
	a.Issues = append(a.Issues, lexicalIssues(a.Tokens)...)
	a.Issues = append(a.Issues, ValidateIdentifiers(a.Tokens, schema)...)
	a.Issues = append(a.Issues, DetectInjection(a.Tokens, a.Statement)...)
	a.Issues = append(a.Issues, StyleIssues(a.Structure)...)
	if v.opts.DialectWarnings {
		a.Issues = append(a.Issues, DialectWarnings(a.Tokens)...)
	}
	return a
}

// Validate produces the final report for one SQL text. The schema is
// optional; when present it also powers the advisory SELECT * rewrite.
func (v *Validator) Validate(sql string, schema SchemaContext) Report {
	a := v.Analyze(sql, schema)
	report := BuildReport(a.Statement, a.Issues)
	if report.IsValid {
		report.OptimizedSQL = OptimizeSQL(sql, a.Tokens, schema)
	}
	return report
}

// classificationIssues turns the statement verdict into error issues.
func classificationIssues(info StatementInfo) []Issue {
	switch info.Type {
	case StatementEmpty:
		return []Issue{{
			Severity: SeverityError,
			Message:  "no statement found: query is empty or only comments",
			Position: -1,
		}}
	case StatementMulti:
		return []Issue{{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%d statements found; exactly one SELECT is allowed", info.StatementCount),
			Position: -1,
		}}
	case StatementSelect:
		return nil
	default:
		return []Issue{{
			Severity: SeverityError,
			Message:  fmt.Sprintf("statement type %s is not allowed; only SELECT queries are accepted", info.Type),
			Position: -1,
		}}
	}
}

// lexicalIssues reports tokens the tokenizer could not make sense of:
// unterminated strings or comments, unmatched brackets, stray bytes.
// Unbalanced parentheses are reported here too since they are a lexical
// shape, not a statement property.
func lexicalIssues(ts TokenStream) []Issue {
	var issues []Issue
	for _, t := range ts.Tokens {
		if t.Kind != TokenInvalid {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("malformed token at byte %d: %s", t.Pos, describeInvalid(t.Text)),
			Position: t.Pos,
		})
	}

	depth := 0
	for _, t := range ts.Significant() {
		switch t.Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth < 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Message:  "unbalanced parentheses: extra closing parenthesis",
					Position: t.Pos,
				})
				depth = 0
			}
		}
	}
	if depth > 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  "unbalanced parentheses: missing closing parenthesis",
			Position: -1,
		})
	}
	return issues
}

func describeInvalid(text string) string {
	switch {
	case strings.HasPrefix(text, "'"):
		return "unterminated string literal"
	case strings.HasPrefix(text, `"`):
		return "unterminated quoted identifier"
	case strings.HasPrefix(text, "["):
		return "unterminated bracketed identifier"
	case strings.HasPrefix(text, "/*"):
		return "unterminated block comment"
	default:
		return fmt.Sprintf("unexpected input %q", TruncateForMessage(text))
	}
}

// TruncateForMessage keeps diagnostics readable for pathological tokens.
func TruncateForMessage(s string) string {
	const max = 20
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
