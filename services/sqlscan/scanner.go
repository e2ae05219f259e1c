// Package sqlscan is a restricted-grammar SQL scanner shared by the
// validator and the permission engine. It tokenizes statement text and walks
// clauses structurally; it is not a SQL parser. Recognized constructs:
// SELECT/WITH statements, FROM/JOIN table factors, WHERE/GROUP BY/HAVING/
// ORDER BY/LIMIT clauses, parenthesized subqueries, UNION arms. Anything
// outside that set is surfaced to callers so they can reject instead of
// guessing.
package sqlscan

import (
	"errors"
	"fmt"
	"strings"
)

// TokenKind classifies a scanned token.
type TokenKind int

// Token kinds produced by Scan.
const (
	TokenIdent TokenKind = iota
	TokenQuotedIdent
	TokenString
	TokenNumber
	TokenParam
	TokenStar
	TokenComma
	TokenDot
	TokenLParen
	TokenRParen
	TokenSemicolon
	TokenOperator
	TokenComment
)

// Token is one lexical unit of the statement text.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Upper returns the token text uppercased, for keyword comparison.
func (t Token) Upper() string {
	return strings.ToUpper(t.Text)
}

// IsKeyword reports whether the token is a bare identifier matching word
// (case-insensitive). Quoted identifiers never match keywords.
func (t Token) IsKeyword(word string) bool {
	return t.Kind == TokenIdent && strings.EqualFold(t.Text, word)
}

// Scan errors. Unterminated literals are the scanner-level face of quote
// imbalance; callers reject the statement on either.
var (
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrUnterminatedIdent   = errors.New("unterminated quoted identifier")
)

// Scan tokenizes SQL text. String literals honor MySQL escaping ('' and \'),
// identifiers may be backtick-quoted, and the three comment forms (--, #,
// /* */) each produce a TokenComment.
func Scan(sql string) ([]Token, error) {
	var tokens []Token
	i := 0
	n := len(sql)

	for i < n {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '\'' || c == '"':
			start := i
			text, next, ok := scanString(sql, i, c)
			if !ok {
				return nil, fmt.Errorf("%w at offset %d", ErrUnterminatedString, start)
			}
			tokens = append(tokens, Token{Kind: TokenString, Text: text, Pos: start})
			i = next

		case c == '`':
			start := i
			end := strings.IndexByte(sql[i+1:], '`')
			if end < 0 {
				return nil, fmt.Errorf("%w at offset %d", ErrUnterminatedIdent, start)
			}
			tokens = append(tokens, Token{Kind: TokenQuotedIdent, Text: sql[i+1 : i+1+end], Pos: start})
			i = i + end + 2

		case c == '#':
			start := i
			for i < n && sql[i] != '\n' {
				i++
			}
			tokens = append(tokens, Token{Kind: TokenComment, Text: sql[start:i], Pos: start})

		case c == '-' && i+1 < n && sql[i+1] == '-' && isLineCommentStart(sql, i):
			start := i
			for i < n && sql[i] != '\n' {
				i++
			}
			tokens = append(tokens, Token{Kind: TokenComment, Text: sql[start:i], Pos: start})

		case c == '/' && i+1 < n && sql[i+1] == '*':
			start := i
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("%w at offset %d", ErrUnterminatedComment, start)
			}
			tokens = append(tokens, Token{Kind: TokenComment, Text: sql[start : i+2+end+2], Pos: start})
			i = i + 2 + end + 2

		case isDigit(c):
			start := i
			for i < n && (isDigit(sql[i]) || sql[i] == '.' || sql[i] == 'e' || sql[i] == 'E' ||
				((sql[i] == '+' || sql[i] == '-') && (sql[i-1] == 'e' || sql[i-1] == 'E'))) {
				i++
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Text: sql[start:i], Pos: start})

		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(sql[i]) {
				i++
			}
			tokens = append(tokens, Token{Kind: TokenIdent, Text: sql[start:i], Pos: start})

		default:
			start := i
			switch c {
			case '?':
				tokens = append(tokens, Token{Kind: TokenParam, Text: "?", Pos: start})
			case '*':
				tokens = append(tokens, Token{Kind: TokenStar, Text: "*", Pos: start})
			case ',':
				tokens = append(tokens, Token{Kind: TokenComma, Text: ",", Pos: start})
			case '.':
				tokens = append(tokens, Token{Kind: TokenDot, Text: ".", Pos: start})
			case '(':
				tokens = append(tokens, Token{Kind: TokenLParen, Text: "(", Pos: start})
			case ')':
				tokens = append(tokens, Token{Kind: TokenRParen, Text: ")", Pos: start})
			case ';':
				tokens = append(tokens, Token{Kind: TokenSemicolon, Text: ";", Pos: start})
			default:
				j := i
				for j < n && isOperatorChar(sql[j]) {
					j++
				}
				if j == i {
					j = i + 1
				}
				tokens = append(tokens, Token{Kind: TokenOperator, Text: sql[i:j], Pos: start})
				i = j
				continue
			}
			i++
		}
	}

	return tokens, nil
}

// scanString consumes a quoted literal starting at sql[start] (the opening
// quote). Doubled quotes and backslash escapes stay inside the literal.
func scanString(sql string, start int, quote byte) (text string, next int, ok bool) {
	i := start + 1
	n := len(sql)
	for i < n {
		switch sql[i] {
		case '\\':
			i += 2
		case quote:
			if i+1 < n && sql[i+1] == quote {
				i += 2
				continue
			}
			return sql[start : i+1], i + 1, true
		default:
			i++
		}
	}
	return "", 0, false
}

// isLineCommentStart applies the MySQL rule: "--" opens a comment only when
// followed by whitespace or end of input, so expressions like 1--1 stay
// arithmetic.
func isLineCommentStart(sql string, i int) bool {
	if i+2 >= len(sql) {
		return true
	}
	c := sql[i+2]
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '@' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isOperatorChar(c byte) bool {
	switch c {
	case '=', '<', '>', '!', '+', '-', '/', '%', '&', '|', '^', '~', ':':
		return true
	}
	return false
}

// Normalize produces the canonical statement text: surrounding whitespace
// trimmed, internal whitespace runs collapsed to single spaces outside
// string literals and quoted identifiers, and at most one trailing
// semicolon removed. Deterministic so cache keys and rewrites are stable.
func Normalize(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	i := 0
	n := len(sql)
	pendingSpace := false
	for i < n {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pendingSpace = b.Len() > 0
			i++
		case c == '\'' || c == '"':
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			text, next, ok := scanString(sql, i, c)
			if !ok {
				// Leave the tail untouched; Scan reports the imbalance.
				b.WriteString(sql[i:])
				i = n
				break
			}
			b.WriteString(text)
			i = next
		case c == '`':
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			end := strings.IndexByte(sql[i+1:], '`')
			if end < 0 {
				b.WriteString(sql[i:])
				i = n
				break
			}
			b.WriteString(sql[i : i+end+2])
			i = i + end + 2
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteByte(c)
			i++
		}
	}

	out := b.String()
	if strings.HasSuffix(out, ";") {
		out = strings.TrimRight(out[:len(out)-1], " ")
	}
	return out
}
