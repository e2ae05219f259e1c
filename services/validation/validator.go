// Package validation is the first pipeline gate: static analysis of incoming
// SQL text. It is allow/deny only; nothing is sanitized or repaired. The
// validator is a pure function over the statement text, so every rule is
// unit-testable with literal SQL strings.
package validation

import (
	"strings"

	"querygateapi/pkg/qerror"
	"querygateapi/services/sqlscan"
)

// Complexity ratings reported alongside accepted statements. Complexity
// never rejects a query on its own; it travels as a warning annotation.
const (
	ComplexityLow    = "low"
	ComplexityMedium = "medium"
	ComplexityHigh   = "high"
)

// Report carries the observability output of validation for accepted
// statements.
type Report struct {
	Statement  string // leading verb, SELECT or WITH
	Complexity int
	Rating     string
	Warnings   []string
}

// forbiddenKeywords are hard rejections wherever they appear, regardless of
// caller identity. Token-level matching keeps string literals out of scope,
// so SELECT * FROM audit WHERE action = 'DROP' passes.
var forbiddenKeywords = []string{
	"DROP", "DELETE", "TRUNCATE", "ALTER", "GRANT", "REVOKE",
	"INSERT", "UPDATE", "CREATE", "REPLACE", "MERGE", "RENAME",
	"EXEC", "EXECUTE", "CALL", "COMMIT", "ROLLBACK", "SAVEPOINT",
	"SET", "LOCK", "UNLOCK", "HANDLER", "LOAD", "OUTFILE", "DUMPFILE",
	"SHUTDOWN", "KILL",
}

// forbiddenFunctions are file- and OS-touching functions screened as
// injection vectors.
var forbiddenFunctions = []string{
	"LOAD_FILE", "XP_CMDSHELL", "SYS_EXEC", "SYS_EVAL",
}

var aggregateFunctions = []string{
	"COUNT", "SUM", "AVG", "MIN", "MAX", "GROUP_CONCAT", "STDDEV", "VARIANCE",
}

// Validator rejects unsafe SQL and normalizes what it accepts. Stateless;
// the zero value is usable.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// Validate analyzes raw SQL text. On success it returns the normalized
// statement and a complexity report; on rejection the error is a
// validation_error carrying the reason.
func (v *Validator) Validate(rawSQL string) (string, Report, error) {
	normalized := sqlscan.Normalize(rawSQL)
	if normalized == "" {
		return "", Report{}, qerror.New(qerror.ValidationError, "empty statement")
	}

	tokens, err := sqlscan.Scan(normalized)
	if err != nil {
		return "", Report{}, qerror.Wrap(qerror.ValidationError, "malformed statement", err)
	}

	if err := v.screen(tokens); err != nil {
		return "", Report{}, err
	}

	report := v.score(tokens)
	return normalized, report, nil
}

// screen applies every rejection rule in a fixed order so error messages are
// deterministic for identical input.
func (v *Validator) screen(tokens []sqlscan.Token) error {
	verb := sqlscan.FirstKeyword(tokens)
	if verb != "SELECT" && verb != "WITH" {
		return qerror.New(qerror.ValidationError, "only SELECT statements are allowed")
	}

	depth := 0
	for _, t := range tokens {
		switch t.Kind {
		case sqlscan.TokenComment:
			return qerror.New(qerror.ValidationError, "SQL comments are not allowed")
		case sqlscan.TokenSemicolon:
			return qerror.New(qerror.ValidationError, "multiple statements are not allowed")
		case sqlscan.TokenOperator:
			if strings.Contains(t.Text, "--") {
				return qerror.New(qerror.ValidationError, "SQL comments are not allowed")
			}
		case sqlscan.TokenLParen:
			depth++
		case sqlscan.TokenRParen:
			depth--
			if depth < 0 {
				return qerror.New(qerror.ValidationError, "unbalanced parentheses")
			}
		case sqlscan.TokenIdent:
			upper := t.Upper()
			if strings.HasPrefix(upper, "@") {
				return qerror.New(qerror.ValidationError, "session variables are not allowed")
			}
			for _, kw := range forbiddenKeywords {
				if upper == kw {
					return qerror.Newf(qerror.ValidationError, "forbidden operation: %s", kw)
				}
			}
			for _, fn := range forbiddenFunctions {
				if upper == fn {
					return qerror.Newf(qerror.ValidationError, "forbidden function: %s", fn)
				}
			}
		}
	}
	if depth != 0 {
		return qerror.New(qerror.ValidationError, "unbalanced parentheses")
	}

	// Union-based injection is screened wholesale: appended UNION arms are
	// the classic exfiltration shape and the generator never emits them.
	if sqlscan.HasKeyword(tokens, "UNION") {
		return qerror.New(qerror.ValidationError, "UNION statements are not allowed")
	}

	return nil
}

// score computes the structural complexity annotation.
func (v *Validator) score(tokens []sqlscan.Token) Report {
	verb := sqlscan.FirstKeyword(tokens)

	joins := sqlscan.CountKeyword(tokens, "JOIN") + sqlscan.CountKeyword(tokens, "STRAIGHT_JOIN")
	subqueries := sqlscan.CountKeyword(tokens, "SELECT") - 1
	if subqueries < 0 {
		subqueries = 0
	}
	aggregates := 0
	for i, t := range tokens {
		if t.Kind != sqlscan.TokenIdent || i+1 >= len(tokens) || tokens[i+1].Kind != sqlscan.TokenLParen {
			continue
		}
		for _, fn := range aggregateFunctions {
			if t.Upper() == fn {
				aggregates++
				break
			}
		}
	}

	score := joins*2 + subqueries*3 + aggregates
	if sqlscan.HasKeyword(tokens, "ORDER") {
		score++
	}
	if sqlscan.HasKeyword(tokens, "DISTINCT") {
		score++
	}

	report := Report{Statement: verb, Complexity: score, Rating: ComplexityLow}
	switch {
	case score >= 5:
		report.Rating = ComplexityHigh
	case score >= 3:
		report.Rating = ComplexityMedium
	}
	if report.Rating != ComplexityLow {
		report.Warnings = append(report.Warnings,
			"query complexity is "+report.Rating+"; consider simplifying if it times out")
	}
	return report
}
