package access

import (
	"testing"

	"querygateapi/services/sqlscan"
)

func mustRewrite(t *testing.T, sql string, filters ...tableFilter) string {
	t.Helper()
	tokens, err := sqlscan.Scan(sql)
	if err != nil {
		t.Fatalf("Expected statement to scan, got %v", err)
	}
	return applyRowFilters(sql, tokens, filters)
}

func orderFilter(filter string) tableFilter {
	return tableFilter{
		Table:  sqlscan.TableRef{Schema: "analytics", Table: "orders"},
		Filter: filter,
	}
}

// TestApplyRowFiltersSplice tests the WHERE splice across clause layouts.
func TestApplyRowFiltersSplice(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected string
	}{
		{
			"No where clause",
			"SELECT * FROM orders",
			"SELECT * FROM orders WHERE (region = 'EMEA')",
		},
		{
			"Or branch cannot escape",
			"SELECT * FROM orders WHERE status = 'open' OR status = 'closed'",
			"SELECT * FROM orders WHERE (status = 'open' OR status = 'closed') AND (region = 'EMEA')",
		},
		{
			"Before group by",
			"SELECT region, COUNT(*) FROM orders WHERE amount > 10 GROUP BY region",
			"SELECT region, COUNT(*) FROM orders WHERE (amount > 10) AND (region = 'EMEA') GROUP BY region",
		},
		{
			"Before order and limit",
			"SELECT * FROM orders ORDER BY id LIMIT 10",
			"SELECT * FROM orders WHERE (region = 'EMEA') ORDER BY id LIMIT 10",
		},
		{
			"Subquery where untouched",
			"SELECT * FROM orders WHERE id IN (SELECT order_id FROM order_items WHERE qty > 2) ORDER BY id",
			"SELECT * FROM orders WHERE (id IN (SELECT order_id FROM order_items WHERE qty > 2)) AND (region = 'EMEA') ORDER BY id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustRewrite(t, tt.sql, orderFilter("region = 'EMEA'"))
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestApplyRowFiltersWrap tests that WITH statements are wrapped as a derived
// table instead of spliced, keeping ORDER BY and LIMIT inside.
func TestApplyRowFiltersWrap(t *testing.T) {
	sql := "WITH recent AS (SELECT * FROM orders) SELECT * FROM recent ORDER BY id LIMIT 5"
	expected := "SELECT * FROM (WITH recent AS (SELECT * FROM orders) SELECT * FROM recent ORDER BY id LIMIT 5) AS rls WHERE (region = 'EMEA')"

	got := mustRewrite(t, sql, orderFilter("region = 'EMEA'"))
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

// TestApplyRowFiltersMultiple tests that several filters join with AND in the
// order given.
func TestApplyRowFiltersMultiple(t *testing.T) {
	sql := "SELECT * FROM customers c JOIN orders o ON o.customer_id = c.id"
	expected := "SELECT * FROM customers c JOIN orders o ON o.customer_id = c.id WHERE (tenant_id = 42) AND (region = 'EMEA')"

	got := mustRewrite(t, sql,
		tableFilter{Table: sqlscan.TableRef{Schema: "analytics", Table: "customers"}, Filter: "tenant_id = 42"},
		orderFilter("region = 'EMEA'"),
	)
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

// TestApplyRowFiltersNoFilters tests the statement passes through unchanged.
func TestApplyRowFiltersNoFilters(t *testing.T) {
	sql := "SELECT * FROM orders WHERE id = 1"
	if got := mustRewrite(t, sql); got != sql {
		t.Errorf("Expected unchanged statement, got %q", got)
	}
}

// TestApplyRowFiltersDeterministic tests byte-identical output on repeat.
func TestApplyRowFiltersDeterministic(t *testing.T) {
	sql := "SELECT * FROM orders WHERE amount > 10 ORDER BY id"
	first := mustRewrite(t, sql, orderFilter("region = 'EMEA'"))
	second := mustRewrite(t, sql, orderFilter("region = 'EMEA'"))
	if first != second {
		t.Errorf("Expected identical rewrites, got %q and %q", first, second)
	}
}
