package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"
)

// SchemaContext is the read-only schema view the identifier checks
// consult. A nil SchemaContext disables the schema-aware checks; the
// lexical checks always run.
type SchemaContext interface {
	// HasTable reports whether the schema contains the table,
	// case-insensitively.
	HasTable(name string) bool
	// TableColumns returns the column names of a table, or ok=false when
	// the table is unknown.
	TableColumns(name string) ([]string, bool)
}

// IdentifierKind tags where an identifier reference appeared.
type IdentifierKind string

const (
	IdentifierTable  IdentifierKind = "table"
	IdentifierColumn IdentifierKind = "column"
	IdentifierAlias  IdentifierKind = "alias"
)

// IdentifierRef is one table, column, or alias reference found in the
// token stream. References live only for the duration of a validation
// call.
type IdentifierRef struct {
	Name     string
	Position int
	Kind     IdentifierKind
	Quoted   bool
}

// bareIdentifierPattern is the lexical rule for unquoted names: a letter
// or underscore head, word-character tail, optionally dotted
// (schema.table.column).
var bareIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// tableIntroducers are keywords after which the next identifier is a
// table reference.
var tableIntroducers = map[string]bool{
	"FROM": true, "JOIN": true, "INTO": true, "UPDATE": true,
}

// CollectIdentifiers extracts identifier references with their inferred
// kinds from a token stream.
func CollectIdentifiers(ts TokenStream) []IdentifierRef {
	sig := ts.Significant()
	refs := make([]IdentifierRef, 0, len(sig)/2)
	for i, t := range sig {
		if t.Kind != TokenIdentifier {
			continue
		}
		kind := IdentifierColumn
		if i > 0 {
			prev := sig[i-1]
			switch {
			case prev.Kind == TokenKeyword && tableIntroducers[prev.Upper]:
				kind = IdentifierTable
			case prev.Kind == TokenKeyword && prev.Upper == "AS":
				kind = IdentifierAlias
			case prev.Kind == TokenIdentifier:
				// Bare alias: "FROM users u", "SELECT price p".
				kind = IdentifierAlias
			}
		}
		refs = append(refs, IdentifierRef{
			Name:     t.BareName(),
			Position: t.Pos,
			Kind:     kind,
			Quoted:   t.Quoted,
		})
	}
	return refs
}

// ValidateIdentifiers runs the identifier rules. All rules are
// independent and all are evaluated:
//
//   - malformed bare identifiers are errors (they signal either a broken
//     reference or injected syntax)
//   - table references unknown to the supplied schema are warnings only,
//     because schema context is advisory
//   - a reserved word used unquoted in an identifier position earns a
//     suggestion to quote it
func ValidateIdentifiers(ts TokenStream, schema SchemaContext) []Issue {
	var issues []Issue

	for _, ref := range CollectIdentifiers(ts) {
		if !ref.Quoted && !bareIdentifierPattern.MatchString(ref.Name) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("invalid identifier: %q", ref.Name),
				Position: ref.Position,
			})
			continue
		}
		if schema != nil && ref.Kind == IdentifierTable {
			if !schema.HasTable(baseTableName(ref.Name)) {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("table %q is not present in the supplied schema", ref.Name),
					Position: ref.Position,
				})
			}
		}
	}

	issues = append(issues, reservedCollisions(ts)...)
	return issues
}

// reservedCollisions finds reserved words sitting in identifier
// positions: directly after SELECT, FROM, JOIN, INTO, UPDATE, a comma,
// or a dot.
func reservedCollisions(ts TokenStream) []Issue {
	var issues []Issue
	sig := ts.Significant()
	for i := 1; i < len(sig); i++ {
		t := sig[i]
		if t.Kind != TokenKeyword || !quotableReserved[t.Upper] {
			continue
		}
		prev := sig[i-1]
		introduces := (prev.Kind == TokenKeyword && (tableIntroducers[prev.Upper] || prev.Upper == "SELECT")) ||
			(prev.Kind == TokenPunctuation && (prev.Text == "," || prev.Text == "."))
		if !introduces {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Message:  fmt.Sprintf("%q is a reserved word; quote or bracket it when used as a name", t.Text),
			Position: t.Pos,
		})
	}
	return issues
}

// baseTableName strips a schema qualifier, returning the last dotted
// segment (dbo.Orders -> Orders).
func baseTableName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
