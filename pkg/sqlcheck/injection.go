package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// dangerousFunctions are procedures and functions no read-only analytics
// query has a legitimate use for. Any occurrence is a security error,
// not a warning.
var dangerousFunctions = map[string]string{
	"XP_CMDSHELL":    "command shell execution",
	"SP_EXECUTESQL":  "dynamic SQL execution",
	"SP_OACREATE":    "OLE automation object creation",
	"SP_OAMETHOD":    "OLE automation method call",
	"SP_CONFIGURE":   "system configuration access",
	"OPENROWSET":     "ad-hoc remote rowset access",
	"OPENDATASOURCE": "ad-hoc remote data source access",
	"OPENQUERY":      "pass-through query execution",
	"LOAD_FILE":      "server file read",
	"BENCHMARK":      "CPU-exhaustion timing probe",
	"PG_SLEEP":       "timing probe",
	"SLEEP":          "timing probe",
	"DBCC":           "database console command",
	"SHUTDOWN":       "server shutdown",
}

// commentSmuggleVerbs are the verbs that make a mid-statement comment
// look like a smuggled statement rather than an annotation.
var commentSmuggleVerbs = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|EXEC|EXECUTE|GRANT|UNION)\b`)

// tautologyPattern matches always-true numeric comparisons in the
// normalized (literal-free) statement text, e.g. OR 1 = 1.
var tautologyPattern = regexp.MustCompile(`\b(?:OR|AND|WHERE)\s+(\d+)\s*=\s*(\d+)\b`)

// DetectInjection scans for known attack constructs. It runs
// unconditionally, independent of the classification outcome: a text the
// classifier already rejected can still carry patterns worth surfacing,
// and a text it accepted can still smuggle a second statement. Every
// finding is a SECURITY issue.
func DetectInjection(ts TokenStream, info StatementInfo) []Issue {
	var issues []Issue
	sig := ts.Significant()

	issues = append(issues, detectStackedQueries(sig)...)
	issues = append(issues, detectTautologies(ts, sig)...)
	issues = append(issues, detectCommentSmuggling(ts)...)
	issues = append(issues, detectDangerousConstructs(sig)...)
	issues = append(issues, detectUnionProbing(sig)...)
	issues = append(issues, detectWriteVerbs(sig)...)
	issues = append(issues, detectLiteralPayloads(ts)...)

	return issues
}

// detectStackedQueries flags any semicolon that is followed by further
// significant tokens: the classic batched-injection shape. Trailing
// semicolons are legal, including a run of them; an empty statement
// carries nothing to stack.
func detectStackedQueries(sig []Token) []Issue {
	var issues []Issue
	for i, t := range sig {
		if t.Kind != TokenPunctuation || t.Text != ";" {
			continue
		}
		next := i + 1
		for next < len(sig) && sig[next].Kind == TokenPunctuation && sig[next].Text == ";" {
			next++
		}
		if next < len(sig) {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  "stacked query: statement separator followed by additional statements",
				Position: t.Pos,
			})
		}
	}
	return issues
}

// detectTautologies finds always-true conditions. Two shapes are
// covered: numeric OR/AND/WHERE n = n in the normalized text, and a
// literal compared against the identical literal token (including
// 'x' = 'x').
func detectTautologies(ts TokenStream, sig []Token) []Issue {
	var issues []Issue

	norm := ts.NormalizedUpper()
	for _, m := range tautologyPattern.FindAllStringSubmatch(norm, -1) {
		if m[1] == m[2] {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  fmt.Sprintf("tautology: condition %s = %s is always true", m[1], m[2]),
				Position: -1,
			})
		}
	}

	for i := 0; i+2 < len(sig); i++ {
		l, op, r := sig[i], sig[i+1], sig[i+2]
		if op.Kind != TokenOperator || op.Text != "=" {
			continue
		}
		if l.Kind != TokenString && l.Kind != TokenNumber {
			continue
		}
		if r.Kind != l.Kind {
			continue
		}
		if l.Kind == TokenNumber {
			// Numeric form already reported from the normalized text when
			// preceded by OR/AND/WHERE; skip duplicates.
			continue
		}
		if l.StringValue() == r.StringValue() {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  fmt.Sprintf("tautology: literal %s compared against itself", l.Text),
				Position: l.Pos,
			})
		}
	}

	// OR TRUE is a tautology with no literals involved.
	for i := 1; i < len(sig); i++ {
		if sig[i-1].Upper == "OR" && sig[i].Upper == "TRUE" {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  "tautology: OR TRUE makes the condition always true",
				Position: sig[i].Pos,
			})
		}
	}

	return issues
}

// detectCommentSmuggling inspects retained comment tokens. A comment is
// suspicious when its own text carries a statement separator or verb —
// the shape used to hide logic from naive filters
// (SELECT 1/*; DROP TABLE x*/). Plain trailing annotations pass.
func detectCommentSmuggling(ts TokenStream) []Issue {
	var issues []Issue
	for _, t := range ts.Tokens {
		if t.Kind != TokenComment {
			continue
		}
		body := commentBody(t.Text)
		if strings.Contains(body, ";") || commentSmuggleVerbs.MatchString(body) {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  "comment contains SQL statement text; possible comment smuggling",
				Position: t.Pos,
			})
		}
	}
	return issues
}

func commentBody(text string) string {
	switch {
	case strings.HasPrefix(text, "--"):
		return text[2:]
	case strings.HasPrefix(text, "/*"):
		return strings.TrimSuffix(text[2:], "*/")
	default:
		return text
	}
}

// detectDangerousConstructs flags system procedures, file primitives,
// EXEC forms, INTO OUTFILE/DUMPFILE, WAITFOR DELAY, and system catalog
// access.
func detectDangerousConstructs(sig []Token) []Issue {
	var issues []Issue
	for i, t := range sig {
		upper := t.Upper
		if upper == "" {
			continue
		}

		if reason, ok := dangerousFunctions[upper]; ok {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  fmt.Sprintf("dangerous construct %s: %s", upper, reason),
				Position: t.Pos,
			})
			continue
		}

		// Extended procedure prefixes beyond the named list.
		if t.Kind == TokenIdentifier && (strings.HasPrefix(upper, "XP_") || strings.HasPrefix(upper, "SP_")) {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  fmt.Sprintf("system procedure reference %s is not allowed", t.Text),
				Position: t.Pos,
			})
			continue
		}

		switch upper {
		case "EXEC", "EXECUTE":
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  "EXEC/EXECUTE is not allowed in read-only queries",
				Position: t.Pos,
			})
		case "INTO":
			if i+1 < len(sig) && (sig[i+1].Upper == "OUTFILE" || sig[i+1].Upper == "DUMPFILE") {
				issues = append(issues, Issue{
					Severity: SeveritySecurity,
					Message:  fmt.Sprintf("INTO %s writes server files and is not allowed", sig[i+1].Upper),
					Position: t.Pos,
				})
			}
		case "WAITFOR":
			if i+1 < len(sig) && sig[i+1].Upper == "DELAY" {
				issues = append(issues, Issue{
					Severity: SeveritySecurity,
					Message:  "WAITFOR DELAY is a timing probe and is not allowed",
					Position: t.Pos,
				})
			}
		}

		// System catalog reads leak structure to an attacker; the
		// original gate treats them as security findings, not style.
		if t.Kind == TokenIdentifier {
			if upper == "INFORMATION_SCHEMA" || strings.HasPrefix(upper, "INFORMATION_SCHEMA.") ||
				strings.HasPrefix(upper, "SYS.") || strings.HasPrefix(upper, "MASTER.") {
				issues = append(issues, Issue{
					Severity: SeveritySecurity,
					Message:  fmt.Sprintf("system catalog access via %q", t.Text),
					Position: t.Pos,
				})
			}
		}
	}
	return issues
}

// detectUnionProbing flags the column-count probing shape
// UNION [ALL] SELECT NULL, NULL, ... (or a bare list of numbers), which
// only appears when someone is fitting an injected UNION to the victim
// column list.
func detectUnionProbing(sig []Token) []Issue {
	var issues []Issue
	for i := 0; i < len(sig); i++ {
		if sig[i].Upper != "UNION" {
			continue
		}
		j := i + 1
		if j < len(sig) && sig[j].Upper == "ALL" {
			j++
		}
		if j >= len(sig) || sig[j].Upper != "SELECT" {
			continue
		}
		j++
		probes := 0
		for j < len(sig) {
			if sig[j].Upper == "NULL" || sig[j].Kind == TokenNumber {
				probes++
				j++
				if j < len(sig) && sig[j].Text == "," {
					j++
					continue
				}
			}
			break
		}
		if probes > 0 {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  "UNION SELECT with NULL/number placeholders looks like column-count probing",
				Position: sig[i].Pos,
			})
		}
	}
	return issues
}

// detectWriteVerbs flags data- or schema-modifying verbs anywhere in the
// stream, even when the classifier saw a single SELECT. A DELETE hiding
// in a subexpression is still a DELETE.
func detectWriteVerbs(sig []Token) []Issue {
	var issues []Issue
	for _, t := range sig {
		if t.Kind == TokenKeyword && writeVerbs[t.Upper] {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  fmt.Sprintf("non-SELECT verb %s present in query text", t.Upper),
				Position: t.Pos,
			})
		}
	}
	return issues
}

// detectLiteralPayloads runs libinjection over string literal contents
// that carry quote, separator, or comment characters after unescaping.
// Benign prose inside a literal must never trigger (keyword immunity),
// so literals without those characters are skipped entirely.
func detectLiteralPayloads(ts TokenStream) []Issue {
	var issues []Issue
	for _, t := range ts.Tokens {
		if t.Kind != TokenString {
			continue
		}
		val := t.StringValue()
		if !strings.ContainsAny(val, `'";`) && !strings.Contains(val, "--") {
			continue
		}
		if ok, fingerprint := libinjection.IsSQLi(val); ok {
			issues = append(issues, Issue{
				Severity: SeveritySecurity,
				Message:  fmt.Sprintf("string literal carries an injection payload (fingerprint %s)", fingerprint),
				Position: t.Pos,
			})
		}
	}
	return issues
}
