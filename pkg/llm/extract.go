package llm

import "strings"

// ExtractSQL pulls the SQL statement out of a model response. Models
// wrap answers in markdown fences or lead with prose; the statement is
// what we want, not the chatter.
func ExtractSQL(response string) string {
	text := strings.TrimSpace(response)
	if text == "" {
		return ""
	}

	// Prefer the first fenced block when one exists.
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		// Drop a language tag like "sql" on the fence line.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			firstLine := strings.TrimSpace(rest[:nl])
			if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, " \t") {
				rest = rest[nl+1:]
			}
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		text = strings.TrimSpace(rest)
	}

	// Skip leading prose lines until something looks like a statement.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		upper := strings.ToUpper(strings.TrimSpace(line))
		if strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH") {
			return strings.TrimSpace(strings.Join(lines[i:], "\n"))
		}
	}
	return text
}
