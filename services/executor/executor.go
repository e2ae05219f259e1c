// Package executor runs authorized statements against the bounded query
// pool. It owns the two execution deadlines (connection acquisition and
// statement runtime), the row ceiling, and the mapping of driver failures
// onto the pipeline error kinds. It never alters statement text; the access
// engine is the only place SQL is rewritten.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"querygateapi/pkg/logger"
	"querygateapi/pkg/qerror"
)

// Result is the raw outcome of one execution.
type Result struct {
	Columns       []string        `json:"columns"`
	Rows          [][]interface{} `json:"rows"`
	RowCount      int             `json:"row_count"`
	Truncated     bool            `json:"truncated"`
	ExecutionTime time.Duration   `json:"-"`
}

// Executor executes statements with per-query timeouts on a shared pool.
type Executor struct {
	db           *sql.DB
	queryTimeout time.Duration
	poolTimeout  time.Duration
	maxRows      int
}

// New creates an Executor. maxRows is the hard ceiling; requests may lower
// it per query but never raise it.
func New(db *sql.DB, queryTimeout, poolTimeout time.Duration, maxRows int) *Executor {
	return &Executor{
		db:           db,
		queryTimeout: queryTimeout,
		poolTimeout:  poolTimeout,
		maxRows:      maxRows,
	}
}

// Execute runs sqlText with the given parameters and returns up to the
// effective row limit. Reading stops at the ceiling and the result is marked
// truncated, so a runaway statement cannot exhaust memory.
func (e *Executor) Execute(ctx context.Context, sqlText string, params []interface{}, rowLimit int) (*Result, error) {
	limit := e.maxRows
	if rowLimit > 0 && rowLimit < e.maxRows {
		limit = rowLimit
	}

	// Connection acquisition gets its own deadline so a saturated pool
	// surfaces as a server-side condition, not a query timeout.
	connCtx, cancelConn := context.WithTimeout(ctx, e.poolTimeout)
	defer cancelConn()
	conn, err := e.db.Conn(connCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, qerror.New(qerror.ServerError, "connection pool exhausted")
		}
		return nil, qerror.Wrap(qerror.ServerError, "acquire connection", err)
	}
	defer conn.Close()

	qctx, cancelQuery := context.WithTimeout(ctx, e.queryTimeout)
	defer cancelQuery()

	started := time.Now()
	rows, err := conn.QueryContext(qctx, sqlText, params...)
	if err != nil {
		return nil, e.mapQueryError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, e.mapQueryError(err)
	}

	result := &Result{Columns: columns, Rows: make([][]interface{}, 0, 16)}
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if len(result.Rows) == limit {
			result.Truncated = true
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, e.mapQueryError(err)
		}
		row := make([]interface{}, len(columns))
		for i, v := range values {
			row[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if !result.Truncated {
		if err := rows.Err(); err != nil {
			return nil, e.mapQueryError(err)
		}
	}

	result.RowCount = len(result.Rows)
	result.ExecutionTime = time.Since(started)
	if result.Truncated {
		logger.Debugf("result truncated at %d rows", limit)
	}
	return result, nil
}

// mapQueryError folds driver failures into the pipeline error kinds. MySQL
// server errors keep their message; everything else is wrapped as a
// server-side failure.
func (e *Executor) mapQueryError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return qerror.Newf(qerror.Timeout, "query exceeded %s", e.queryTimeout)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return qerror.Wrap(qerror.SQLError, "query failed", err)
	}
	return qerror.Wrap(qerror.ServerError, "query failed", err)
}

// normalizeValue converts driver values into JSON-friendly types. MySQL
// text protocol hands most scalars back as []byte.
func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
