package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"querygateapi/models"
	"querygateapi/services/access"
	"querygateapi/services/cache"
	"querygateapi/services/dto"
	"querygateapi/services/executor"
	"querygateapi/services/pipeline"
	"querygateapi/services/schema"
	"querygateapi/services/validation"
)

type grantMap map[string]*models.RolePermission

func (m grantMap) Lookup(ctx context.Context, userID uint, schemaName, table string) (*models.RolePermission, error) {
	return m[fmt.Sprintf("%d:%s.%s", userID, schemaName, table)], nil
}

type fixedSchema struct{}

func (fixedSchema) Describe(ctx context.Context, schemaName, table string) (*schema.Table, error) {
	return &schema.Table{Schema: schemaName, Name: table, Columns: []schema.Column{
		{Name: "id", DataType: "int"},
		{Name: "region", DataType: "varchar"},
		{Name: "amount", DataType: "decimal"},
	}}, nil
}

func (fixedSchema) Tables(ctx context.Context, schemaName string) ([]string, error) {
	return []string{"orders"}, nil
}

func newQueryRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Expected sqlmock to open, got error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	grants := grantMap{
		"7:analytics.orders": {UserID: 7, SchemaName: "analytics", TableName: "orders", CanSelect: true},
	}
	SetQueryPipeline(pipeline.New(pipeline.Options{
		Validator: validation.New(),
		Engine:    access.NewEngine(grants, fixedSchema{}, "analytics"),
		Executor:  executor.New(db, time.Second, time.Second, 100),
		Cache:     cache.NewManager(cache.NewMemoryStore(), time.Minute, time.Hour, time.Minute),
	}))

	router := gin.New()
	RegisterQueryRoutes(router.Group("/api"))
	return router, mock
}

// TestPostQuerySuccess tests the 200 path: envelope status success with rows.
func TestPostQuerySuccess(t *testing.T) {
	router, mock := newQueryRouter(t)
	mock.ExpectQuery("SELECT id, region FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "region"}).AddRow(1, "EMEA"))

	w := perform(router, http.MethodPost, "/api/query", `{"user_id": 7, "sql": "SELECT id, region FROM orders"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected envelope JSON, got error: %v", err)
	}
	if resp.Status != dto.StatusSuccess || resp.RowCount != 1 || resp.Cached {
		t.Errorf("Expected fresh success envelope, got %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet executor expectations: %v", err)
	}
}

// TestPostQueryValidationRejected tests that forbidden statements come back
// 400 with the envelope, not the flat error shape.
func TestPostQueryValidationRejected(t *testing.T) {
	router, _ := newQueryRouter(t)

	w := perform(router, http.MethodPost, "/api/query", `{"user_id": 7, "sql": "DROP TABLE orders"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected envelope JSON, got error: %v", err)
	}
	if resp.Status != dto.StatusValidationError {
		t.Errorf("Expected validation_error status, got %q", resp.Status)
	}
	if resp.Error == nil || resp.Error.Kind != "validation_error" {
		t.Errorf("Expected validation_error in envelope, got %+v", resp.Error)
	}
}

// TestPostQueryPermissionDenied tests the 403 mapping for users without a
// grant on the referenced table.
func TestPostQueryPermissionDenied(t *testing.T) {
	router, _ := newQueryRouter(t)

	w := perform(router, http.MethodPost, "/api/query", `{"user_id": 9, "sql": "SELECT id FROM orders"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected envelope JSON, got error: %v", err)
	}
	if resp.Error == nil || resp.Error.Kind != "permission_denied" {
		t.Errorf("Expected permission_denied in envelope, got %+v", resp.Error)
	}
}

// TestPostQueryBindErrors tests that malformed bodies use the flat error
// shape before the pipeline is involved.
func TestPostQueryBindErrors(t *testing.T) {
	router, _ := newQueryRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"Missing sql", `{"user_id": 7}`},
		{"Missing user", `{"sql": "SELECT 1"}`},
		{"Not JSON", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodPost, "/api/query", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("Expected JSON error body, got error: %v", err)
			}
			if _, ok := body["error"]; !ok {
				t.Errorf("Expected flat error body, got %s", w.Body.String())
			}
			if _, ok := body["status"]; ok {
				t.Errorf("Expected no envelope for bind errors, got %s", w.Body.String())
			}
		})
	}
}

// TestPostExplain tests the explain endpoint happy path.
func TestPostExplain(t *testing.T) {
	router, mock := newQueryRouter(t)
	mock.ExpectQuery("EXPLAIN FORMAT=JSON SELECT id FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"EXPLAIN"}).AddRow(`{"query_block": {"select_id": 1}}`))

	w := perform(router, http.MethodPost, "/api/query/explain", `{"user_id": 7, "sql": "SELECT id FROM orders"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.ExplainResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected envelope JSON, got error: %v", err)
	}
	if resp.Status != dto.StatusSuccess || resp.Plan == nil {
		t.Errorf("Expected a plan in the envelope, got %+v", resp)
	}
}
