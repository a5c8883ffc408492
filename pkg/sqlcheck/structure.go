package sqlcheck

import (
	"fmt"
	"strings"
)

// StructureFacts are the cheap structural observations the style checks
// and the feedback scorer share. They describe shape, not safety.
type StructureFacts struct {
	SelectStar          bool
	HasWhere            bool
	HasRowLimit         bool // LIMIT, TOP, or FETCH FIRST
	HasOrderBy          bool
	HasGroupBy          bool
	HasAggregate        bool
	HasDistinct         bool
	JoinCount           int
	JoinWithoutOn       bool
	SubqueryDepth       int
	LeadingWildcardLike bool
	Tables              []string
}

// ExtractTables returns the table names referenced by sql, deduplicated
// and without schema qualifiers. It is a shortcut over AnalyzeStructure
// for callers that only want the tables.
func ExtractTables(sql string) []string {
	return AnalyzeStructure(Tokenize(sql)).Tables
}

// AnalyzeStructure walks the significant tokens once and records the
// facts. It never fails; nonsense input just yields zero facts.
func AnalyzeStructure(ts TokenStream) StructureFacts {
	var f StructureFacts
	sig := ts.Significant()

	depth := 0
	joinsAwaitingOn := 0
	inFromList := false
	seen := map[string]bool{}

	for i, t := range sig {
		switch {
		case t.Kind == TokenPunctuation && t.Text == "(":
			// Parenthesized SELECT marks a subquery level.
			if i+1 < len(sig) && sig[i+1].Upper == "SELECT" {
				depth++
				if depth > f.SubqueryDepth {
					f.SubqueryDepth = depth
				}
			}
		case t.Kind == TokenPunctuation && t.Text == ")":
			if depth > 0 {
				depth--
			}
		case t.Kind == TokenOperator && t.Text == "*":
			if i > 0 && (sig[i-1].Upper == "SELECT" || sig[i-1].Upper == "DISTINCT") {
				f.SelectStar = true
			}
		case t.Kind == TokenKeyword:
			switch t.Upper {
			case "WHERE":
				f.HasWhere = true
			case "LIMIT", "TOP":
				f.HasRowLimit = true
			case "FETCH":
				if i+1 < len(sig) && (sig[i+1].Upper == "FIRST" || sig[i+1].Upper == "NEXT") {
					f.HasRowLimit = true
				}
			case "ORDER":
				f.HasOrderBy = true
			case "GROUP":
				f.HasGroupBy = true
			case "DISTINCT":
				f.HasDistinct = true
			case "JOIN":
				f.JoinCount++
				joinsAwaitingOn++
			case "ON":
				if joinsAwaitingOn > 0 {
					joinsAwaitingOn--
				}
			case "LIKE", "ILIKE":
				if i+1 < len(sig) && sig[i+1].Kind == TokenString {
					if val := sig[i+1].StringValue(); strings.HasPrefix(val, "%") {
						f.LeadingWildcardLike = true
					}
				}
			}
			// Track the FROM list so comma-separated tables (old-style
			// joins) are collected too.
			switch t.Upper {
			case "FROM", "JOIN":
				inFromList = true
			case "AS":
				// alias inside a FROM list keeps the list open
			default:
				inFromList = false
			}
		case t.Kind == TokenIdentifier:
			if aggregateFunctions[t.Upper] && i+1 < len(sig) && sig[i+1].Text == "(" {
				f.HasAggregate = true
			}
			introduced := i > 0 && sig[i-1].Kind == TokenKeyword && tableIntroducers[sig[i-1].Upper]
			if !introduced && inFromList && i > 0 && sig[i-1].Kind == TokenPunctuation && sig[i-1].Text == "," {
				introduced = true
			}
			if introduced {
				name := baseTableName(t.BareName())
				key := strings.ToUpper(name)
				if !seen[key] {
					seen[key] = true
					f.Tables = append(f.Tables, name)
				}
			}
		}
	}
	f.JoinWithoutOn = joinsAwaitingOn > 0
	return f
}

// StyleIssues converts structural facts into the advisory channel:
// warnings for shapes that risk correctness or heavy scans, suggestions
// for style and performance hints. None of these block validity.
func StyleIssues(f StructureFacts) []Issue {
	var issues []Issue

	if f.SelectStar {
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Message:  "SELECT * returns every column; list only the columns you need",
			Position: -1,
		})
	}
	if len(f.Tables) > 1 && !f.HasWhere && !f.JoinWithoutOn {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Message:  "query reads multiple tables without a WHERE clause",
			Position: -1,
		})
	}
	if f.JoinWithoutOn {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Message:  "JOIN without an ON condition risks a cartesian product",
			Position: -1,
		})
	}
	if f.LeadingWildcardLike {
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Message:  "LIKE with a leading wildcard cannot use an index",
			Position: -1,
		})
	}
	if f.HasOrderBy && !f.HasRowLimit {
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Message:  "ORDER BY without a row limit sorts the full result; add LIMIT or TOP",
			Position: -1,
		})
	}
	if f.SubqueryDepth > 2 {
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Message:  fmt.Sprintf("subqueries nest %d levels deep; consider CTEs or joins", f.SubqueryDepth),
			Position: -1,
		})
	}
	if f.HasDistinct {
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Message:  "DISTINCT forces a de-duplication pass; make sure it is needed",
			Position: -1,
		})
	}
	if f.HasGroupBy && !f.HasAggregate {
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Message:  "GROUP BY without aggregate functions; DISTINCT may express the intent better",
			Position: -1,
		})
	}
	return issues
}
