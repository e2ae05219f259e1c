package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querygateapi/models"
	"querygateapi/services/access"
	"querygateapi/services/cache"
	"querygateapi/services/dto"
	"querygateapi/services/executor"
	"querygateapi/services/schema"
	"querygateapi/services/validation"
)

type permMap map[string]*models.RolePermission

func (m permMap) Lookup(ctx context.Context, userID uint, schemaName, table string) (*models.RolePermission, error) {
	return m[fmt.Sprintf("%d:%s.%s", userID, schemaName, table)], nil
}

type staticSchema map[string][]schema.Column

func (s staticSchema) Describe(ctx context.Context, schemaName, table string) (*schema.Table, error) {
	return &schema.Table{Schema: schemaName, Name: table, Columns: s[schemaName+"."+table]}, nil
}

func (s staticSchema) Tables(ctx context.Context, schemaName string) ([]string, error) {
	return nil, nil
}

type chanRecorder struct {
	ch chan *models.QueryHistory
}

func (c *chanRecorder) Record(e *models.QueryHistory) error {
	c.ch <- e
	return nil
}

func awaitAudit(t *testing.T, rec *chanRecorder) *models.QueryHistory {
	t.Helper()
	select {
	case e := <-rec.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("Expected an audit entry")
		return nil
	}
}

type pipelineHarness struct {
	p    *Pipeline
	mock sqlmock.Sqlmock
	rec  *chanRecorder
}

func newHarness(t *testing.T, perms permMap, rateLimit int64) *pipelineHarness {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rec := &chanRecorder{ch: make(chan *models.QueryHistory, 8)}
	p := New(Options{
		Validator:  validation.New(),
		Engine:     access.NewEngine(perms, staticSchema{}, "analytics"),
		Executor:   executor.New(db, 100*time.Millisecond, 100*time.Millisecond, 100),
		Cache:      cache.NewManager(cache.NewMemoryStore(), time.Minute, time.Hour, time.Minute),
		Recorder:   rec,
		RateLimit:  rateLimit,
		RateWindow: time.Hour,
	})
	return &pipelineHarness{p: p, mock: mock, rec: rec}
}

func selectGrant(userID uint, table string) (string, *models.RolePermission) {
	return fmt.Sprintf("%d:analytics.%s", userID, table), &models.RolePermission{
		UserID: userID, SchemaName: "analytics", Table: table, CanSelect: true,
	}
}

// TestRunSuccessThenCacheHit tests a full execution followed by a cache hit:
// the second request must not reach the database at all.
func TestRunSuccessThenCacheHit(t *testing.T) {
	key, p := selectGrant(1, "orders")
	h := newHarness(t, permMap{key: p}, 0)

	h.mock.ExpectQuery("SELECT id, amount FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount"}).
			AddRow(int64(1), []byte("12.50")))

	req := &dto.QueryRequest{UserID: 1, SQL: "SELECT id, amount FROM orders", Question: "order amounts"}

	first := h.p.Run(context.Background(), req)
	require.Equal(t, dto.StatusSuccess, first.Status)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, first.RowCount)
	assert.Equal(t, []string{"id", "amount"}, first.Columns)
	assert.Equal(t, "12.50", first.Rows[0][1])

	entry := awaitAudit(t, h.rec)
	assert.Equal(t, dto.StatusSuccess, entry.Status)
	assert.False(t, entry.Cached)
	assert.Equal(t, "order amounts", entry.Question)

	// No second query expectation: a database round trip here fails the test.
	second := h.p.Run(context.Background(), req)
	require.Equal(t, dto.StatusSuccess, second.Status)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, 1, second.RowCount)
	assert.Equal(t, "12.50", second.Rows[0][1])

	entry = awaitAudit(t, h.rec)
	assert.True(t, entry.Cached)
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

// TestRunValidationRejected tests the envelope and audit of a rejected
// statement.
func TestRunValidationRejected(t *testing.T) {
	h := newHarness(t, permMap{}, 0)

	resp := h.p.Run(context.Background(), &dto.QueryRequest{UserID: 1, SQL: "DROP TABLE users"})
	require.Equal(t, dto.StatusValidationError, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Kind)
	assert.False(t, resp.Error.Retriable)
	assert.Zero(t, resp.RowCount)

	entry := awaitAudit(t, h.rec)
	assert.Equal(t, dto.StatusValidationError, entry.Status)
	assert.Equal(t, "DROP TABLE users", entry.SQL)
	assert.NotEmpty(t, entry.ErrorMessage)
}

// TestRunPermissionDenied tests denial for an ungranted table.
func TestRunPermissionDenied(t *testing.T) {
	h := newHarness(t, permMap{}, 0)

	resp := h.p.Run(context.Background(), &dto.QueryRequest{UserID: 9, SQL: "SELECT * FROM orders"})
	require.Equal(t, dto.StatusPermissionDenied, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "access denied for table analytics.orders")
	assert.NotContains(t, resp.Error.Message, "filter")

	entry := awaitAudit(t, h.rec)
	assert.Equal(t, dto.StatusPermissionDenied, entry.Status)
}

// TestRunRateLimited tests the gate fires before any other stage once the
// window is spent, and carries a retry hint.
func TestRunRateLimited(t *testing.T) {
	key, p := selectGrant(1, "orders")
	h := newHarness(t, permMap{key: p}, 2)

	h.mock.ExpectQuery("SELECT id FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	req := &dto.QueryRequest{UserID: 1, SQL: "SELECT id FROM orders"}

	require.Equal(t, dto.StatusSuccess, h.p.Run(context.Background(), req).Status)
	require.Equal(t, dto.StatusSuccess, h.p.Run(context.Background(), req).Status, "second hit serves from cache")

	third := h.p.Run(context.Background(), req)
	require.Equal(t, dto.StatusRateLimit, third.Status)
	require.NotNil(t, third.Error)
	assert.True(t, third.Error.Retriable)
	assert.Greater(t, third.Error.RetryAfter, 0)

	// The gate even rejects statements that would fail validation.
	fourth := h.p.Run(context.Background(), &dto.QueryRequest{UserID: 1, SQL: "DROP TABLE users"})
	assert.Equal(t, dto.StatusRateLimit, fourth.Status)
}

// TestRunSQLErrorEnvelope tests that database rejections surface as status
// failed with the precise kind in the error block.
func TestRunSQLErrorEnvelope(t *testing.T) {
	key, p := selectGrant(1, "orders")
	h := newHarness(t, permMap{key: p}, 0)

	h.mock.ExpectQuery("SELECT bogus FROM orders").
		WillReturnError(&mysql.MySQLError{Number: 1054, Message: "Unknown column 'bogus' in 'field list'"})

	resp := h.p.Run(context.Background(), &dto.QueryRequest{UserID: 1, SQL: "SELECT bogus FROM orders"})
	require.Equal(t, dto.StatusFailed, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "sql_error", resp.Error.Kind)
	assert.Contains(t, resp.Error.Message, "Unknown column 'bogus'")

	entry := awaitAudit(t, h.rec)
	assert.Equal(t, dto.StatusFailed, entry.Status)
}

// TestRunTimeoutEnvelope tests a slow execution maps to the timeout status
// and is marked retriable.
func TestRunTimeoutEnvelope(t *testing.T) {
	key, p := selectGrant(1, "orders")
	h := newHarness(t, permMap{key: p}, 0)

	h.mock.ExpectQuery("SELECT id FROM orders").
		WillDelayFor(400 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp := h.p.Run(context.Background(), &dto.QueryRequest{UserID: 1, SQL: "SELECT id FROM orders"})
	require.Equal(t, dto.StatusTimeout, resp.Status)
	require.NotNil(t, resp.Error)
	assert.True(t, resp.Error.Retriable)
}

// TestRunAppliesRowFilter tests the statement that reaches the executor is
// the rewritten one.
func TestRunAppliesRowFilter(t *testing.T) {
	key, p := selectGrant(1, "orders")
	p.RowFilter = "region = 'EMEA'"
	h := newHarness(t, permMap{key: p}, 0)

	rewritten := "SELECT id FROM orders WHERE (region = 'EMEA')"
	h.mock.ExpectQuery(regexp.QuoteMeta(rewritten)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	resp := h.p.Run(context.Background(), &dto.QueryRequest{UserID: 1, SQL: "SELECT id FROM orders"})
	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Equal(t, rewritten, resp.SQL, "envelope reports the statement as executed")
	assert.NoError(t, h.mock.ExpectationsWereMet())

	// History keeps the user's statement, not the rewritten one.
	entry := awaitAudit(t, h.rec)
	assert.Equal(t, "SELECT id FROM orders", entry.SQL)
}

// TestRunDistinctUsersDistinctCache tests two users never share a cache
// entry even for identical SQL.
func TestRunDistinctUsersDistinctCache(t *testing.T) {
	k1, p1 := selectGrant(1, "orders")
	k2, p2 := selectGrant(2, "orders")
	h := newHarness(t, permMap{k1: p1, k2: p2}, 0)

	h.mock.ExpectQuery("SELECT id FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	h.mock.ExpectQuery("SELECT id FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

	first := h.p.Run(context.Background(), &dto.QueryRequest{UserID: 1, SQL: "SELECT id FROM orders"})
	second := h.p.Run(context.Background(), &dto.QueryRequest{UserID: 2, SQL: "SELECT id FROM orders"})

	require.Equal(t, dto.StatusSuccess, first.Status)
	require.Equal(t, dto.StatusSuccess, second.Status)
	assert.False(t, second.Cached, "different user must not hit the first user's entry")
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

type deadStore struct{}

func (deadStore) Get(ctx context.Context, key string) (string, error) {
	return "", fmt.Errorf("store unreachable")
}
func (deadStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return fmt.Errorf("store unreachable")
}
func (deadStore) Delete(ctx context.Context, keys ...string) error {
	return fmt.Errorf("store unreachable")
}
func (deadStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	return 0, fmt.Errorf("store unreachable")
}
func (deadStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 0, fmt.Errorf("store unreachable")
}
func (deadStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, fmt.Errorf("store unreachable")
}
func (deadStore) Ping(ctx context.Context) error { return fmt.Errorf("store unreachable") }

// TestRunDeadStoreStillAnswers tests the degrade path: an unreachable store
// must neither block queries nor enforce the rate limit.
func TestRunDeadStoreStillAnswers(t *testing.T) {
	key, p := selectGrant(1, "orders")
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pipe := New(Options{
		Validator:  validation.New(),
		Engine:     access.NewEngine(permMap{key: p}, staticSchema{}, "analytics"),
		Executor:   executor.New(db, time.Second, time.Second, 100),
		Cache:      cache.NewManager(deadStore{}, time.Minute, time.Hour, time.Minute),
		RateLimit:  1,
		RateWindow: time.Hour,
	})

	mock.ExpectQuery("SELECT id FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT id FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	req := &dto.QueryRequest{UserID: 1, SQL: "SELECT id FROM orders"}

	first := pipe.Run(context.Background(), req)
	require.Equal(t, dto.StatusSuccess, first.Status)
	assert.False(t, first.Cached)

	// With a limit of 1 a working counter would reject this request. A dead
	// one fails open, and the lookup degrades to a miss so the database is
	// queried again.
	second := pipe.Run(context.Background(), req)
	require.Equal(t, dto.StatusSuccess, second.Status)
	assert.False(t, second.Cached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestExplain tests the plan path returns decoded JSON and the rewrite flag.
func TestExplain(t *testing.T) {
	key, p := selectGrant(1, "orders")
	p.RowFilter = "region = 'EMEA'"
	h := newHarness(t, permMap{key: p}, 0)

	h.mock.ExpectQuery("EXPLAIN FORMAT=JSON SELECT id FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"EXPLAIN"}).
			AddRow([]byte(`{"query_block":{"select_id":1}}`)))

	resp := h.p.Explain(context.Background(), &dto.QueryRequest{UserID: 1, SQL: "SELECT id FROM orders"})
	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.True(t, resp.Rewritten)
	assert.NotNil(t, resp.Plan)
}
