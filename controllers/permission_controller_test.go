package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"querygateapi/models"
	"querygateapi/services/dto"
)

type stubPermissionService struct {
	perm      *models.RolePermission
	grantErr  error
	revokeErr error
	list      []models.RolePermission
	gotGrant  *dto.GrantRequest
	gotRevoke *dto.RevokeRequest
}

func (s *stubPermissionService) Grant(ctx context.Context, req *dto.GrantRequest) (*models.RolePermission, error) {
	s.gotGrant = req
	if s.grantErr != nil {
		return nil, s.grantErr
	}
	return s.perm, nil
}

func (s *stubPermissionService) Revoke(ctx context.Context, req *dto.RevokeRequest) error {
	s.gotRevoke = req
	return s.revokeErr
}

func (s *stubPermissionService) ListForUser(userID uint) ([]models.RolePermission, error) {
	return s.list, nil
}

func newPermissionRouter(stub *stubPermissionService) *gin.Engine {
	SetPermissionService(stub)
	router := gin.New()
	RegisterPermissionRoutes(router.Group("/api"))
	return router
}

// TestGrantPermission tests the grant endpoint round trip.
func TestGrantPermission(t *testing.T) {
	stub := &stubPermissionService{perm: &models.RolePermission{
		UserID: 2, SchemaName: "analytics", Table: "orders", CanSelect: true,
	}}
	router := newPermissionRouter(stub)

	w := perform(router, http.MethodPost, "/api/permissions/grant",
		`{"user_id": 2, "table_name": "orders", "can_select": true, "row_filter": "region = 'EMEA'"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if stub.gotGrant == nil || stub.gotGrant.UserID != 2 || stub.gotGrant.RowFilter != "region = 'EMEA'" {
		t.Errorf("Expected grant request forwarded, got %+v", stub.gotGrant)
	}
}

// TestGrantPermissionUnknownUser tests the error mapping when the target user
// does not exist.
func TestGrantPermissionUnknownUser(t *testing.T) {
	router := newPermissionRouter(&stubPermissionService{
		grantErr: fmt.Errorf("user with id=99 not found: record not found"),
	})

	w := perform(router, http.MethodPost, "/api/permissions/grant",
		`{"user_id": 99, "table_name": "orders", "can_select": true}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got error: %v", err)
	}
	if _, ok := body["error"]; !ok {
		t.Errorf("Expected an error field, got %s", w.Body.String())
	}
}

// TestGrantPermissionRequiresFields tests struct validation on the body.
func TestGrantPermissionRequiresFields(t *testing.T) {
	router := newPermissionRouter(&stubPermissionService{})

	for _, body := range []string{
		`{"table_name": "orders"}`,
		`{"user_id": 2}`,
	} {
		w := perform(router, http.MethodPost, "/api/permissions/grant", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %s, got %d", body, w.Code)
		}
	}
}

// TestRevokePermission tests revoke outcomes.
func TestRevokePermission(t *testing.T) {
	stub := &stubPermissionService{}
	router := newPermissionRouter(stub)

	w := perform(router, http.MethodPost, "/api/permissions/revoke",
		`{"user_id": 2, "table_name": "orders"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if stub.gotRevoke == nil || stub.gotRevoke.TableName != "orders" {
		t.Errorf("Expected revoke request forwarded, got %+v", stub.gotRevoke)
	}

	router = newPermissionRouter(&stubPermissionService{revokeErr: gorm.ErrRecordNotFound})
	w = perform(router, http.MethodPost, "/api/permissions/revoke",
		`{"user_id": 2, "table_name": "orders"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for missing record, got %d: %s", w.Code, w.Body.String())
	}
}

// TestListPermissions tests the listing shape and the user_id guard.
func TestListPermissions(t *testing.T) {
	stub := &stubPermissionService{list: []models.RolePermission{
		{UserID: 2, SchemaName: "analytics", Table: "orders", CanSelect: true},
	}}
	router := newPermissionRouter(stub)

	w := perform(router, http.MethodGet, "/api/permissions/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Count int                     `json:"count"`
		Data  []models.RolePermission `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got error: %v", err)
	}
	if body.Count != 1 || len(body.Data) != 1 || body.Data[0].TableName != "orders" {
		t.Errorf("Expected one permission back, got %s", w.Body.String())
	}

	w = perform(router, http.MethodGet, "/api/permissions/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid user_id, got %d", w.Code)
	}
}
