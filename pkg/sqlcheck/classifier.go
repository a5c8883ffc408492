package sqlcheck

// StatementType is the coarse classification of a SQL text.
type StatementType string

const (
	StatementSelect  StatementType = "SELECT"
	StatementInsert  StatementType = "INSERT"
	StatementUpdate  StatementType = "UPDATE"
	StatementDelete  StatementType = "DELETE"
	StatementDDL     StatementType = "DDL"     // CREATE, ALTER, DROP, TRUNCATE, EXEC, GRANT, REVOKE
	StatementMulti   StatementType = "MULTI"   // more than one statement in the text
	StatementUnknown StatementType = "UNKNOWN" // unrecognized leading token
	StatementEmpty   StatementType = "EMPTY"   // only whitespace and comments
)

// StatementInfo is the classifier output. It is derived once per
// validation call and never mutated afterwards.
type StatementInfo struct {
	StatementCount int
	Type           StatementType
	IsSelectOnly   bool
}

// ddlVerbs are leading keywords classified as DDL. EXEC and EXECUTE sit
// here because a procedure call is as unsafe as schema change in a
// read-only context.
var ddlVerbs = map[string]bool{
	"CREATE": true, "ALTER": true, "DROP": true, "TRUNCATE": true,
	"EXEC": true, "EXECUTE": true, "GRANT": true, "REVOKE": true,
}

// Classify determines the statement type and count for a token stream.
//
// The count is the number of semicolon-separated segments that contain at
// least one significant token; semicolons inside strings, comments, and
// quoted identifiers never split because the tokenizer has already
// absorbed them. When the count exceeds one the type is forced to MULTI
// regardless of the first keyword, since a batch is unsafe even when it
// opens with a SELECT.
func Classify(ts TokenStream) StatementInfo {
	sig := ts.Significant()

	count := 0
	segmentHasContent := false
	for _, t := range sig {
		if t.Kind == TokenPunctuation && t.Text == ";" {
			if segmentHasContent {
				count++
				segmentHasContent = false
			}
			continue
		}
		segmentHasContent = true
	}
	if segmentHasContent {
		count++
	}

	info := StatementInfo{StatementCount: count}
	if count == 0 {
		info.Type = StatementEmpty
		return info
	}
	if count > 1 {
		info.Type = StatementMulti
		return info
	}

	info.Type = leadingType(sig, ts)
	info.IsSelectOnly = info.Type == StatementSelect
	return info
}

func leadingType(sig []Token, ts TokenStream) StatementType {
	var first Token
	found := false
	for _, t := range sig {
		if t.Kind == TokenPunctuation && t.Text == ";" {
			continue
		}
		first = t
		found = true
		break
	}
	if !found {
		return StatementEmpty
	}
	if first.Kind != TokenKeyword {
		return StatementUnknown
	}

	switch first.Upper {
	case "SELECT":
		return StatementSelect
	case "WITH":
		// A CTE chain is a SELECT unless one of its bodies modifies
		// data (WITH d AS (DELETE ...) SELECT * FROM d).
		if containsModifyingCTE(sig) {
			return StatementUnknown
		}
		return StatementSelect
	case "INSERT":
		return StatementInsert
	case "UPDATE":
		return StatementUpdate
	case "DELETE":
		return StatementDelete
	}
	if ddlVerbs[first.Upper] {
		return StatementDDL
	}
	return StatementUnknown
}

// containsModifyingCTE reports whether a WITH chain opens a CTE body with
// a data-modifying verb: the token shape AS ( INSERT|UPDATE|DELETE.
func containsModifyingCTE(sig []Token) bool {
	for i := 0; i+2 < len(sig); i++ {
		if sig[i].Upper != "AS" || sig[i+1].Text != "(" {
			continue
		}
		switch sig[i+2].Upper {
		case "INSERT", "UPDATE", "DELETE":
			return true
		}
	}
	return false
}
