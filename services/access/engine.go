// Package access is the authorization stage of the pipeline. Every table a
// statement references must carry a SELECT grant for the requesting user;
// column allow lists narrow what may be projected or filtered on, and row
// filters are spliced into the statement itself so restricted rows never
// leave the database. Denial messages name what the user asked for, never
// what grants exist.
package access

import (
	"context"
	"sort"
	"strings"

	"querygateapi/pkg/qerror"
	"querygateapi/services/schema"
	"querygateapi/services/sqlscan"
)

// Grant describes one authorized table within a decision.
type Grant struct {
	Table     sqlscan.TableRef `json:"table"`
	RowFilter string           `json:"row_filter,omitempty"`
	Columns   []string         `json:"columns,omitempty"` // nil means unrestricted
}

// Decision is the outcome of authorization: the statement to execute and the
// grants that shaped it.
type Decision struct {
	SQL       string
	Rewritten bool
	Grants    []Grant
}

// Engine authorizes statements table-by-table. Deny-by-default: a single
// referenced table without a grant fails the whole request.
type Engine struct {
	source        PermissionSource
	schema        schema.Source
	defaultSchema string
}

// NewEngine creates an Engine. Unqualified table references resolve against
// defaultSchema.
func NewEngine(source PermissionSource, schemaSrc schema.Source, defaultSchema string) *Engine {
	return &Engine{source: source, schema: schemaSrc, defaultSchema: defaultSchema}
}

// Authorize checks every table the validated statement references and
// returns the statement to execute, rewritten with row filters where grants
// carry them. The rewrite is deterministic: identical statement and grants
// produce byte-identical output.
func (e *Engine) Authorize(ctx context.Context, userID uint, sql string) (*Decision, error) {
	tokens, err := sqlscan.Scan(sql)
	if err != nil {
		// The validator scanned this text already; failing here is a bug
		// upstream, not bad input.
		return nil, qerror.Wrap(qerror.ServerError, "analyze statement", err)
	}

	refs := e.qualify(sqlscan.ExtractTableRefs(tokens))
	if len(refs) == 0 {
		return &Decision{SQL: sql}, nil
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })

	cols := sqlscan.ExtractColumnRefs(tokens)

	var grants []Grant
	var filters []tableFilter
	unrestricted := false
	allowedUnion := make(map[string]bool)

	for _, ref := range refs {
		perm, err := e.source.Lookup(ctx, userID, ref.Schema, ref.Table)
		if err != nil {
			return nil, qerror.Wrap(qerror.ServerError, "load permissions", err)
		}
		if perm == nil || !perm.CanSelect {
			return nil, qerror.Newf(qerror.PermissionDenied, "access denied for table %s", ref)
		}

		allowList, err := perm.ColumnAllowList()
		if err != nil {
			return nil, qerror.Wrap(qerror.ServerError, "decode column grant", err)
		}

		g := Grant{Table: ref, RowFilter: strings.TrimSpace(perm.RowFilter), Columns: allowList}
		grants = append(grants, g)
		if g.RowFilter != "" {
			filters = append(filters, tableFilter{Table: ref, Filter: g.RowFilter})
		}

		if allowList == nil {
			unrestricted = true
			continue
		}
		for _, c := range allowList {
			allowedUnion[strings.ToLower(c)] = true
		}

		// SELECT * under an allow list is expanded through schema metadata;
		// one unauthorized column in the table denies the request.
		if cols.Wildcard {
			t, err := e.schema.Describe(ctx, ref.Schema, ref.Table)
			if err != nil {
				return nil, qerror.Wrap(qerror.ServerError, "expand wildcard", err)
			}
			if len(t.Columns) == 0 {
				return nil, qerror.Newf(qerror.PermissionDenied, "access denied for table %s", ref)
			}
			for _, col := range t.Columns {
				if !containsFold(allowList, col.Name) {
					return nil, qerror.Newf(qerror.PermissionDenied, "access denied for column %s of table %s", col.Name, ref)
				}
			}
		}
	}

	// Named columns are checked against the union of the allow lists. A
	// table without a list makes any name plausible, so the check only
	// applies when every referenced table is column-restricted.
	if !unrestricted && len(allowedUnion) > 0 {
		for _, name := range cols.Columns {
			if !allowedUnion[strings.ToLower(name)] {
				return nil, qerror.Newf(qerror.PermissionDenied, "access denied for column %s", name)
			}
		}
	}

	rewritten := applyRowFilters(sql, tokens, filters)
	return &Decision{
		SQL:       rewritten,
		Rewritten: rewritten != sql,
		Grants:    grants,
	}, nil
}

// qualify fills in the default schema and drops duplicates that differ only
// by qualification.
func (e *Engine) qualify(refs []sqlscan.TableRef) []sqlscan.TableRef {
	qualified := make([]sqlscan.TableRef, 0, len(refs))
	seen := make(map[string]bool)
	for _, r := range refs {
		if r.Schema == "" {
			r.Schema = e.defaultSchema
		}
		key := strings.ToLower(r.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		qualified = append(qualified, r)
	}
	return qualified
}

func containsFold(list []string, name string) bool {
	for _, c := range list {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
