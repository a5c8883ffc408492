package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"
)

// deprecatedTypes maps legacy SQL Server type names to their
// replacements. Referencing one is a warning, not an error.
var deprecatedTypes = map[string]string{
	"TEXT":      "VARCHAR(MAX)",
	"NTEXT":     "NVARCHAR(MAX)",
	"IMAGE":     "VARBINARY(MAX)",
	"TIMESTAMP": "ROWVERSION",
}

// slashDatePattern matches ambiguous 'M/D/YYYY' style date literals.
var slashDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

// DialectWarnings surfaces SQL Server portability and hygiene findings:
// deprecated type names, NOLOCK hints, ambiguous date literals, and
// unqualified table names. All results are advisory warnings.
func DialectWarnings(ts TokenStream) []Issue {
	var issues []Issue
	sig := ts.Significant()

	for i, t := range sig {
		if t.Kind == TokenIdentifier || t.Kind == TokenKeyword {
			if repl, ok := deprecatedTypes[t.Upper]; ok {
				// Only flag when used as a type, i.e. after CAST/CONVERT
				// punctuation shapes; a column merely named "image" is fine.
				if i > 0 && (sig[i-1].Text == "(" || sig[i-1].Upper == "AS") {
					issues = append(issues, Issue{
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("%s is deprecated; use %s", t.Upper, repl),
						Position: t.Pos,
					})
				}
			}
			if t.Upper == "NOLOCK" {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Message:  "NOLOCK reads uncommitted data; use it deliberately or not at all",
					Position: t.Pos,
				})
			}
		}
		if t.Kind == TokenString && slashDatePattern.MatchString(t.StringValue()) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("date literal %s is locale-dependent; use ISO format (YYYY-MM-DD)", t.Text),
				Position: t.Pos,
			})
		}
	}

	issues = append(issues, unqualifiedTableWarnings(sig)...)
	return issues
}

// unqualifiedTableWarnings suggests schema-qualifying table references
// (dbo.Orders) when none in the query carry a qualifier.
func unqualifiedTableWarnings(sig []Token) []Issue {
	sawTable := false
	for i, t := range sig {
		if t.Kind != TokenIdentifier || i == 0 {
			continue
		}
		prev := sig[i-1]
		if prev.Kind == TokenKeyword && tableIntroducers[prev.Upper] {
			sawTable = true
			if strings.Contains(t.BareName(), ".") {
				return nil
			}
		}
	}
	if !sawTable {
		return nil
	}
	return []Issue{{
		Severity: SeverityWarning,
		Message:  "table references are not schema-qualified; consider dbo.TableName",
		Position: -1,
	}}
}
