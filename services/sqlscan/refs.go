package sqlscan

import "strings"

// TableRef is one (schema, table) pair referenced by a statement. Schema is
// empty when the statement leaves it implicit.
type TableRef struct {
	Schema string
	Table  string
}

// String renders the reference the way it appeared, for messages and keys.
func (r TableRef) String() string {
	if r.Schema == "" {
		return r.Table
	}
	return r.Schema + "." + r.Table
}

// ColumnRefs is the set of column names a statement touches, as far as the
// restricted grammar can see. Wildcard is set when the projection contains a
// bare or qualified *.
type ColumnRefs struct {
	Columns  []string
	Wildcard bool
}

// words that can follow a table factor without being its alias
var clauseAfterFactor = map[string]bool{
	"WHERE": true, "GROUP": true, "HAVING": true, "ORDER": true, "LIMIT": true,
	"OFFSET": true, "UNION": true, "EXCEPT": true, "INTERSECT": true, "ON": true,
	"JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true, "FULL": true,
	"OUTER": true, "CROSS": true, "NATURAL": true, "STRAIGHT_JOIN": true,
	"USING": true, "USE": true, "FORCE": true, "IGNORE": true, "FOR": true,
	"LOCK": true, "AS": true, "SET": true, "WINDOW": true,
}

// ExtractTableRefs walks FROM and JOIN clauses at every nesting depth and
// returns the referenced tables in order of first appearance, deduplicated.
// Names introduced by WITH are recognized and excluded.
func ExtractTableRefs(tokens []Token) []TableRef {
	ctes := collectCTENames(tokens)
	var refs []TableRef
	extractTables(tokens, ctes, &refs)
	return dedupeRefs(refs)
}

func extractTables(tokens []Token, ctes map[string]bool, refs *[]TableRef) {
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		switch {
		case t.Kind == TokenIdent && (strings.EqualFold(t.Text, "FROM") ||
			strings.EqualFold(t.Text, "JOIN") || strings.EqualFold(t.Text, "STRAIGHT_JOIN")):
			allowList := strings.EqualFold(t.Text, "FROM")
			i = parseTableFactors(tokens, i+1, allowList, ctes, refs)
		case t.Kind == TokenLParen:
			j := matchParen(tokens, i)
			extractTables(tokens[i+1:j], ctes, refs)
			i = j + 1
		default:
			i++
		}
	}
}

// parseTableFactors consumes one table factor (or a comma list of them after
// FROM) and records plain table references. Derived tables are handed back
// to extractTables so their inner FROM clauses are still seen.
func parseTableFactors(tokens []Token, i int, allowList bool, ctes map[string]bool, refs *[]TableRef) int {
	for {
		if i >= len(tokens) {
			return i
		}
		switch tokens[i].Kind {
		case TokenLParen:
			j := matchParen(tokens, i)
			extractTables(tokens[i+1:j], ctes, refs)
			i = j + 1
		case TokenIdent, TokenQuotedIdent:
			if clauseAfterFactor[tokens[i].Upper()] {
				return i
			}
			ref := TableRef{Table: tokens[i].Text}
			i++
			if i+1 < len(tokens) && tokens[i].Kind == TokenDot &&
				(tokens[i+1].Kind == TokenIdent || tokens[i+1].Kind == TokenQuotedIdent) {
				ref.Schema = ref.Table
				ref.Table = tokens[i+1].Text
				i += 2
			}
			if ref.Schema == "" && ctes[strings.ToUpper(ref.Table)] {
				// CTE names are statement-local, not real tables.
			} else if !strings.EqualFold(ref.Table, "DUAL") {
				*refs = append(*refs, ref)
			}
		default:
			return i
		}

		i = skipAlias(tokens, i)

		if allowList && i < len(tokens) && tokens[i].Kind == TokenComma {
			i++
			continue
		}
		return i
	}
}

func skipAlias(tokens []Token, i int) int {
	if i >= len(tokens) {
		return i
	}
	if tokens[i].IsKeyword("AS") {
		if i+1 < len(tokens) && (tokens[i+1].Kind == TokenIdent || tokens[i+1].Kind == TokenQuotedIdent) {
			return i + 2
		}
		return i + 1
	}
	if (tokens[i].Kind == TokenIdent || tokens[i].Kind == TokenQuotedIdent) &&
		!clauseAfterFactor[tokens[i].Upper()] {
		return i + 1
	}
	return i
}

// collectCTENames gathers the names a top-level WITH clause introduces.
func collectCTENames(tokens []Token) map[string]bool {
	names := map[string]bool{}
	if len(tokens) == 0 || !tokens[0].IsKeyword("WITH") {
		return names
	}
	i := 1
	if i < len(tokens) && tokens[i].IsKeyword("RECURSIVE") {
		i++
	}
	for i < len(tokens) {
		if tokens[i].Kind != TokenIdent && tokens[i].Kind != TokenQuotedIdent {
			break
		}
		names[strings.ToUpper(tokens[i].Text)] = true
		i++
		if i < len(tokens) && tokens[i].Kind == TokenLParen { // optional column list
			i = matchParen(tokens, i) + 1
		}
		if i >= len(tokens) || !tokens[i].IsKeyword("AS") {
			break
		}
		i++
		if i >= len(tokens) || tokens[i].Kind != TokenLParen {
			break
		}
		i = matchParen(tokens, i) + 1
		if i < len(tokens) && tokens[i].Kind == TokenComma {
			i++
			continue
		}
		break
	}
	return names
}

// matchParen returns the index of the RParen matching the LParen at i, or
// the last index when the text is unbalanced (Scan-level validation rejects
// that case before extraction runs).
func matchParen(tokens []Token, i int) int {
	depth := 0
	for j := i; j < len(tokens); j++ {
		switch tokens[j].Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(tokens) - 1
}

func dedupeRefs(refs []TableRef) []TableRef {
	seen := map[string]bool{}
	out := refs[:0]
	for _, r := range refs {
		key := strings.ToUpper(r.String())
		if !seen[key] {
			seen[key] = true
			out = append(out, r)
		}
	}
	return out
}

// ExtractColumnRefs collects the column identifiers a statement references.
// It over-collects rather than under-collects: any identifier that is not a
// keyword, function name, table name, alias, or qualifier counts as a column
// so that allow-list checks stay strict.
func ExtractColumnRefs(tokens []Token) ColumnRefs {
	factorRanges := tableFactorRanges(tokens)
	ctes := collectCTENames(tokens)
	seen := map[string]bool{}
	var out ColumnRefs

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if inRanges(factorRanges, i) {
			continue
		}
		switch t.Kind {
		case TokenStar:
			if isProjectionStar(tokens, i) {
				out.Wildcard = true
			}
		case TokenIdent, TokenQuotedIdent:
			if t.Kind == TokenIdent && reservedWords[t.Upper()] {
				continue
			}
			if ctes[t.Upper()] {
				continue
			}
			if i+1 < len(tokens) && tokens[i+1].Kind == TokenLParen { // function call
				continue
			}
			if i+1 < len(tokens) && tokens[i+1].Kind == TokenDot { // qualifier
				continue
			}
			if i > 0 && tokens[i-1].IsKeyword("AS") { // output alias
				continue
			}
			key := strings.ToUpper(t.Text)
			if !seen[key] {
				seen[key] = true
				out.Columns = append(out.Columns, t.Text)
			}
		}
	}
	return out
}

// tableFactorRanges marks the token index ranges occupied by table factors
// and their aliases so column collection can skip them.
func tableFactorRanges(tokens []Token) [][2]int {
	var ranges [][2]int
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.Kind == TokenIdent && (strings.EqualFold(t.Text, "FROM") ||
			strings.EqualFold(t.Text, "JOIN") || strings.EqualFold(t.Text, "STRAIGHT_JOIN")) {
			start := i + 1
			end := factorEnd(tokens, start, strings.EqualFold(t.Text, "FROM"))
			if end > start {
				ranges = append(ranges, [2]int{start, end})
			}
			i = end - 1
		}
	}
	return ranges
}

// factorEnd mirrors parseTableFactors but only measures how far the factor
// list extends. Parenthesized factors are not skipped wholesale: the scan
// resumes inside them so nested projections are still analyzed.
func factorEnd(tokens []Token, i int, allowList bool) int {
	for {
		if i >= len(tokens) {
			return i
		}
		switch tokens[i].Kind {
		case TokenLParen:
			return i // nested statement analyzed on its own
		case TokenIdent, TokenQuotedIdent:
			if clauseAfterFactor[tokens[i].Upper()] {
				return i
			}
			i++
			if i+1 < len(tokens) && tokens[i].Kind == TokenDot {
				i += 2
			}
		default:
			return i
		}
		i = skipAlias(tokens, i)
		if allowList && i < len(tokens) && tokens[i].Kind == TokenComma {
			i++
			continue
		}
		return i
	}
}

func inRanges(ranges [][2]int, i int) bool {
	for _, r := range ranges {
		if i >= r[0] && i < r[1] {
			return true
		}
	}
	return false
}

// isProjectionStar separates SELECT * and t.* from multiplication and
// COUNT(*). The star counts as a projection wildcard when it follows
// SELECT, DISTINCT, a comma, or a dot.
func isProjectionStar(tokens []Token, i int) bool {
	if i == 0 {
		return false
	}
	prev := tokens[i-1]
	switch prev.Kind {
	case TokenComma, TokenDot:
		return true
	case TokenIdent:
		return strings.EqualFold(prev.Text, "SELECT") || strings.EqualFold(prev.Text, "DISTINCT")
	}
	return false
}

// ClausePositions carries the byte offsets of the first top-level clause
// keywords, -1 when absent. The permission engine splices row filters using
// these offsets.
type ClausePositions struct {
	Where   int
	GroupBy int
	Having  int
	OrderBy int
	Limit   int
	SetOp   int // UNION / EXCEPT / INTERSECT
}

// TopLevelClauses locates depth-zero clause keywords in the token stream.
func TopLevelClauses(tokens []Token) ClausePositions {
	pos := ClausePositions{Where: -1, GroupBy: -1, Having: -1, OrderBy: -1, Limit: -1, SetOp: -1}
	depth := 0
	for _, t := range tokens {
		switch t.Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
		case TokenIdent:
			if depth != 0 {
				continue
			}
			switch t.Upper() {
			case "WHERE":
				if pos.Where < 0 {
					pos.Where = t.Pos
				}
			case "GROUP":
				if pos.GroupBy < 0 {
					pos.GroupBy = t.Pos
				}
			case "HAVING":
				if pos.Having < 0 {
					pos.Having = t.Pos
				}
			case "ORDER":
				if pos.OrderBy < 0 {
					pos.OrderBy = t.Pos
				}
			case "LIMIT":
				if pos.Limit < 0 {
					pos.Limit = t.Pos
				}
			case "UNION", "EXCEPT", "INTERSECT":
				if pos.SetOp < 0 {
					pos.SetOp = t.Pos
				}
			}
		}
	}
	return pos
}

// FirstKeyword returns the uppercased first non-comment token text, or "".
func FirstKeyword(tokens []Token) string {
	for _, t := range tokens {
		if t.Kind == TokenComment {
			continue
		}
		if t.Kind == TokenIdent {
			return t.Upper()
		}
		return ""
	}
	return ""
}

// CountKeyword counts bare-identifier occurrences of word, case-insensitive.
func CountKeyword(tokens []Token, word string) int {
	n := 0
	for _, t := range tokens {
		if t.IsKeyword(word) {
			n++
		}
	}
	return n
}

// HasKeyword reports whether word occurs as a bare identifier.
func HasKeyword(tokens []Token, word string) bool {
	return CountKeyword(tokens, word) > 0
}

// reservedWords excludes SQL vocabulary from column collection. The list
// covers the restricted grammar plus common functions that appear without
// parentheses.
var reservedWords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true,
	"NOT": true, "IN": true, "IS": true, "NULL": true, "LIKE": true,
	"BETWEEN": true, "EXISTS": true, "AS": true, "ON": true, "USING": true,
	"JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true, "FULL": true,
	"OUTER": true, "CROSS": true, "NATURAL": true, "STRAIGHT_JOIN": true,
	"GROUP": true, "BY": true, "HAVING": true, "ORDER": true, "ASC": true,
	"DESC": true, "LIMIT": true, "OFFSET": true, "UNION": true, "ALL": true,
	"DISTINCT": true, "EXCEPT": true, "INTERSECT": true, "WITH": true,
	"RECURSIVE": true, "CASE": true, "WHEN": true, "THEN": true, "ELSE": true,
	"END": true, "CAST": true, "CONVERT": true, "INTERVAL": true, "TRUE": true,
	"FALSE": true, "UNKNOWN": true, "DIV": true, "MOD": true, "XOR": true,
	"REGEXP": true, "RLIKE": true, "BINARY": true, "COLLATE": true,
	"DUAL": true, "WINDOW": true, "OVER": true, "PARTITION": true,
	"ROWS": true, "RANGE": true, "PRECEDING": true, "FOLLOWING": true,
	"CURRENT": true, "ROW": true, "UNBOUNDED": true, "SEPARATOR": true,
	"YEAR": true, "MONTH": true, "DAY": true, "HOUR": true, "MINUTE": true,
	"SECOND": true, "CURRENT_DATE": true, "CURRENT_TIME": true,
	"CURRENT_TIMESTAMP": true, "CURRENT_USER": true, "LOCALTIME": true,
	"LOCALTIMESTAMP": true, "UTC_DATE": true, "UTC_TIME": true,
	"UTC_TIMESTAMP": true,
}
