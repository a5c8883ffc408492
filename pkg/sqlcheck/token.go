// Package sqlcheck implements static safety analysis for SQL text.
//
// The entry point is Validator.Validate, which runs a fixed pipeline over
// the input: tokenize, classify, validate identifiers, detect injection
// patterns, and assemble a report. Every stage is a pure function of its
// inputs; malformed SQL is reported as data, never as a Go error.
package sqlcheck

import "strings"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenKeyword TokenKind = iota
	TokenIdentifier
	TokenString
	TokenNumber
	TokenComment
	TokenOperator
	TokenPunctuation
	TokenWhitespace
	TokenInvalid
)

// String returns a short name for the token kind, used in diagnostics.
func (k TokenKind) String() string {
	switch k {
	case TokenKeyword:
		return "keyword"
	case TokenIdentifier:
		return "identifier"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenComment:
		return "comment"
	case TokenOperator:
		return "operator"
	case TokenPunctuation:
		return "punctuation"
	case TokenWhitespace:
		return "whitespace"
	default:
		return "invalid"
	}
}

// Token is a single lexical unit. Text is the exact source span starting
// at byte offset Pos; concatenating the Text of all tokens in order
// reproduces the input byte-for-byte.
type Token struct {
	Kind   TokenKind
	Text   string
	Upper  string // uppercased view for matching; empty for strings and comments
	Pos    int    // byte offset into the source
	Quoted bool   // identifier was double-quoted or bracketed
}

// TokenStream is the ordered token view of a SQL string.
type TokenStream struct {
	Source string
	Tokens []Token
}

// Tokenize splits sql into a lossless token stream. It is a total
// function: unterminated strings, comments, and stray bytes become
// TokenInvalid tokens rather than errors.
func Tokenize(sql string) TokenStream {
	ts := TokenStream{Source: sql}
	b := []byte(sql)
	i := 0
	for i < len(b) {
		start := i
		c := b[i]
		switch {
		case isSpace(c):
			for i < len(b) && isSpace(b[i]) {
				i++
			}
			ts.append(TokenWhitespace, sql, start, i, false)

		case c == '-' && i+1 < len(b) && b[i+1] == '-':
			// Line comment runs to end of line; the newline stays outside
			// the comment token so offsets line up with editor columns.
			i += 2
			for i < len(b) && b[i] != '\n' {
				i++
			}
			ts.append(TokenComment, sql, start, i, false)

		case c == '/' && i+1 < len(b) && b[i+1] == '*':
			i += 2
			closed := false
			for i < len(b) {
				if b[i] == '*' && i+1 < len(b) && b[i+1] == '/' {
					i += 2
					closed = true
					break
				}
				i++
			}
			if closed {
				ts.append(TokenComment, sql, start, i, false)
			} else {
				ts.append(TokenInvalid, sql, start, i, false)
			}

		case c == '\'':
			i = scanQuoted(b, i, '\'')
			if i < 0 {
				ts.append(TokenInvalid, sql, start, len(b), false)
				i = len(b)
			} else {
				ts.append(TokenString, sql, start, i, false)
			}

		case c == '"':
			i = scanQuoted(b, i, '"')
			if i < 0 {
				ts.append(TokenInvalid, sql, start, len(b), false)
				i = len(b)
			} else {
				ts.append(TokenIdentifier, sql, start, i, true)
			}

		case c == '[':
			i++
			closed := false
			for i < len(b) {
				if b[i] == ']' {
					i++
					closed = true
					break
				}
				i++
			}
			if closed {
				ts.append(TokenIdentifier, sql, start, i, true)
			} else {
				ts.append(TokenInvalid, sql, start, i, false)
			}

		case isDigit(c):
			for i < len(b) && (isDigit(b[i]) || b[i] == '.') {
				i++
			}
			// Exponent suffix (1e10, 2.5E-3).
			if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
				j := i + 1
				if j < len(b) && (b[j] == '+' || b[j] == '-') {
					j++
				}
				if j < len(b) && isDigit(b[j]) {
					for j < len(b) && isDigit(b[j]) {
						j++
					}
					i = j
				}
			}
			ts.append(TokenNumber, sql, start, i, false)

		case isWordStart(c):
			for i < len(b) && isWordPart(b[i]) {
				i++
			}
			// Fold dotted references (schema.table.column) into one token
			// so identifier checks see the full qualified name.
			for i+1 < len(b) && b[i] == '.' && isWordStart(b[i+1]) {
				i += 2
				for i < len(b) && isWordPart(b[i]) {
					i++
				}
			}
			word := sql[start:i]
			upper := strings.ToUpper(word)
			kind := TokenIdentifier
			if !strings.Contains(word, ".") && reservedWords[upper] {
				kind = TokenKeyword
			}
			ts.Tokens = append(ts.Tokens, Token{Kind: kind, Text: word, Upper: upper, Pos: start})

		case isOperator(c):
			for i < len(b) && isOperator(b[i]) {
				i++
			}
			ts.append(TokenOperator, sql, start, i, false)

		case c == '(' || c == ')' || c == ',' || c == ';' || c == '.':
			i++
			ts.append(TokenPunctuation, sql, start, i, false)

		default:
			i++
			ts.append(TokenInvalid, sql, start, i, false)
		}
	}
	return ts
}

func (ts *TokenStream) append(kind TokenKind, src string, start, end int, quoted bool) {
	text := src[start:end]
	tok := Token{Kind: kind, Text: text, Pos: start, Quoted: quoted}
	if kind != TokenString && kind != TokenComment {
		tok.Upper = strings.ToUpper(text)
	}
	ts.Tokens = append(ts.Tokens, tok)
}

// scanQuoted consumes a quoted region starting at b[start] (which must be
// the opening quote). A doubled quote is an escaped literal character.
// Returns the index past the closing quote, or -1 if unterminated.
func scanQuoted(b []byte, start int, quote byte) int {
	i := start + 1
	for i < len(b) {
		if b[i] == quote {
			if i+1 < len(b) && b[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return -1
}

// Significant returns the tokens that carry statement meaning, dropping
// whitespace and comments.
func (ts TokenStream) Significant() []Token {
	out := make([]Token, 0, len(ts.Tokens))
	for _, t := range ts.Tokens {
		if t.Kind == TokenWhitespace || t.Kind == TokenComment {
			continue
		}
		out = append(out, t)
	}
	return out
}

// NormalizedUpper renders the statement as uppercase text with string
// literals replaced by a placeholder and comments removed. Pattern checks
// run against this view so literal contents can never trigger them.
func (ts TokenStream) NormalizedUpper() string {
	var sb strings.Builder
	for _, t := range ts.Tokens {
		switch t.Kind {
		case TokenComment:
			// dropped
		case TokenWhitespace:
			sb.WriteByte(' ')
		case TokenString:
			sb.WriteString("'?'")
		default:
			sb.WriteString(t.Upper)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// StringValue returns the unescaped contents of a string token
// (quotes removed, doubled quotes collapsed). For other kinds it
// returns the raw text.
func (t Token) StringValue() string {
	if t.Kind != TokenString || len(t.Text) < 2 {
		return t.Text
	}
	inner := t.Text[1 : len(t.Text)-1]
	return strings.ReplaceAll(inner, "''", "'")
}

// BareName returns the identifier name with quoting stripped.
func (t Token) BareName() string {
	if !t.Quoted || len(t.Text) < 2 {
		return t.Text
	}
	inner := t.Text[1 : len(t.Text)-1]
	if t.Text[0] == '"' {
		inner = strings.ReplaceAll(inner, `""`, `"`)
	}
	return inner
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordStart(c byte) bool {
	return c == '_' || c == '$' || c == '#' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool { return isWordStart(c) || isDigit(c) }

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%', '=', '<', '>', '!', '|', '&', '^', '~':
		return true
	}
	return false
}
