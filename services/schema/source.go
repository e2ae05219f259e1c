// Package schema loads table metadata from information_schema. The access
// engine uses it to expand SELECT * under column allow lists; the schema
// endpoints use it for browsing. Lookups go through the schema cache tier,
// which is why descriptions may lag DDL by up to the configured TTL.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// Column is one column of a described table.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
	Key      string `json:"key,omitempty"`
}

// Table is the described shape of one table.
type Table struct {
	Schema  string   `json:"schema"`
	Name    string   `json:"table"`
	Columns []Column `json:"columns"`
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Source loads table metadata.
type Source interface {
	// Describe returns the columns of one table. Unknown tables return a
	// Table with no columns, not an error.
	Describe(ctx context.Context, schemaName, table string) (*Table, error)

	// Tables lists the table names in a schema.
	Tables(ctx context.Context, schemaName string) ([]string, error)
}

type dbSource struct {
	db *sql.DB
}

// NewDBSource creates a Source reading information_schema over the given
// connection pool.
func NewDBSource(db *sql.DB) Source {
	return &dbSource{db: db}
}

func (s *dbSource) Describe(ctx context.Context, schemaName, table string) (*Table, error) {
	const q = `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`

	rows, err := s.db.QueryContext(ctx, q, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s.%s: %w", schemaName, table, err)
	}
	defer rows.Close()

	t := &Table{Schema: schemaName, Name: table}
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.Key); err != nil {
			return nil, fmt.Errorf("describe %s.%s: %w", schemaName, table, err)
		}
		col.Nullable = nullable == "YES"
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe %s.%s: %w", schemaName, table, err)
	}
	return t, nil
}

func (s *dbSource) Tables(ctx context.Context, schemaName string) ([]string, error) {
	const q = `SELECT TABLE_NAME
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = ?
ORDER BY TABLE_NAME`

	rows, err := s.db.QueryContext(ctx, q, schemaName)
	if err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", schemaName, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables in %s: %w", schemaName, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", schemaName, err)
	}
	return names, nil
}
