package access

import (
	"strings"

	"querygateapi/services/sqlscan"
)

// tableFilter pairs a referenced table with its row filter predicate.
// Predicates are written against bare column names of that table.
type tableFilter struct {
	Table  sqlscan.TableRef
	Filter string
}

// applyRowFilters rewrites sql so every filter predicate constrains the
// result. Callers pass filters sorted by table so the output is byte-stable
// for a given statement and permission set.
//
// Plain SELECTs get the predicates spliced into the WHERE clause, with the
// original expression parenthesized so OR branches cannot escape the filter.
// WITH statements and set operations cannot be spliced safely, so the whole
// statement is wrapped as a derived table and filtered outside; ORDER BY and
// LIMIT stay inside the wrap.
func applyRowFilters(sql string, tokens []sqlscan.Token, filters []tableFilter) string {
	if len(filters) == 0 {
		return sql
	}

	conj := conjunction(filters)
	clauses := sqlscan.TopLevelClauses(tokens)

	if sqlscan.FirstKeyword(tokens) == "WITH" || clauses.SetOp >= 0 {
		return "SELECT * FROM (" + sql + ") AS rls WHERE " + conj
	}

	insertPos := len(sql)
	for _, p := range [...]int{clauses.GroupBy, clauses.Having, clauses.OrderBy, clauses.Limit} {
		if p >= 0 && p < insertPos {
			insertPos = p
		}
	}

	if clauses.Where >= 0 {
		expr := strings.TrimSpace(sql[clauses.Where+len("WHERE") : insertPos])
		rebuilt := sql[:clauses.Where] + "WHERE (" + expr + ") AND " + conj
		if tail := sql[insertPos:]; tail != "" {
			rebuilt += " " + tail
		}
		return rebuilt
	}

	if tail := sql[insertPos:]; tail != "" {
		return sql[:insertPos] + "WHERE " + conj + " " + tail
	}
	return sql + " WHERE " + conj
}

func conjunction(filters []tableFilter) string {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = "(" + f.Filter + ")"
	}
	return strings.Join(parts, " AND ")
}
