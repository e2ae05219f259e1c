package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"querygateapi/config"
	"querygateapi/models"
	"querygateapi/pkg/logger"
	"querygateapi/repository"
	"querygateapi/services/cache"
	"querygateapi/services/dto"
	"querygateapi/utils"
)

// PermissionService administers permission records. Every change invalidates
// the user's permission cache tier, then the query result tier: a revoked
// user must neither pass the next authorization nor read an answer computed
// under the old grant.
type PermissionService interface {
	Grant(ctx context.Context, req *dto.GrantRequest) (*models.RolePermission, error)
	Revoke(ctx context.Context, req *dto.RevokeRequest) error
	ListForUser(userID uint) ([]models.RolePermission, error)
}

type permissionService struct {
	permRepo      repository.RolePermissionRepository
	userRepo      repository.UserRepository
	cache         *cache.Manager
	defaultSchema string
}

// NewPermissionService creates a new permission service instance.
func NewPermissionService(cacheMgr *cache.Manager) PermissionService {
	return &permissionService{
		permRepo:      repository.NewRolePermissionRepository(),
		userRepo:      repository.NewUserRepository(),
		cache:         cacheMgr,
		defaultSchema: config.Cfg.DBName,
	}
}

// Grant upserts one permission record for (user, schema, table).
func (s *permissionService) Grant(ctx context.Context, req *dto.GrantRequest) (*models.RolePermission, error) {
	user, err := s.userRepo.GetByID(nil, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("user with id=%d not found: %v", req.UserID, err)
	}

	schemaName := req.SchemaName
	if schemaName == "" {
		schemaName = s.defaultSchema
	}
	if !utils.IsValidTableName(req.TableName) {
		return nil, fmt.Errorf("invalid table name %q", req.TableName)
	}
	if !utils.IsValidTableName(schemaName) {
		return nil, fmt.Errorf("invalid schema name %q", schemaName)
	}

	perm := &models.RolePermission{
		UserID:     req.UserID,
		SchemaName: schemaName,
		Table:      req.TableName,
		CanSelect:  req.CanSelect,
		CanInsert:  req.CanInsert,
		CanUpdate:  req.CanUpdate,
		CanDelete:  req.CanDelete,
		RowFilter:  req.RowFilter,
	}
	if err := perm.SetColumnAllowList(req.AllowedColumns); err != nil {
		return nil, fmt.Errorf("invalid column list: %v", err)
	}

	if err := s.permRepo.Upsert(nil, perm); err != nil {
		return nil, fmt.Errorf("failed to store permission: %v", err)
	}

	s.invalidate(ctx, req.UserID)
	logger.Infof("Granted %s access on %s.%s to user %s (id=%d)",
		grantVerbs(perm), schemaName, req.TableName, user.Username, req.UserID)
	return perm, nil
}

// Revoke deletes the permission record for (user, schema, table).
func (s *permissionService) Revoke(ctx context.Context, req *dto.RevokeRequest) error {
	schemaName := req.SchemaName
	if schemaName == "" {
		schemaName = s.defaultSchema
	}

	n, err := s.permRepo.DeleteByUserSchemaTable(nil, req.UserID, schemaName, req.TableName)
	if err != nil {
		return fmt.Errorf("failed to revoke permission: %v", err)
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}

	s.invalidate(ctx, req.UserID)
	logger.Infof("Revoked access on %s.%s from user id=%d", schemaName, req.TableName, req.UserID)
	return nil
}

// ListForUser returns all permission records of one user.
func (s *permissionService) ListForUser(userID uint) ([]models.RolePermission, error) {
	if userID == 0 {
		return nil, fmt.Errorf("invalid user ID: must be greater than 0")
	}
	return s.permRepo.GetByUserID(nil, userID)
}

// invalidate drops the user's cached grants and all cached query results.
// Result entries are keyed by an opaque hash, so the whole tier goes; grants
// change rarely enough that the refill cost does not matter.
func (s *permissionService) invalidate(ctx context.Context, userID uint) {
	if _, err := s.cache.InvalidateUserPermissions(ctx, userID); err != nil {
		logger.Warnf("Permission cache invalidation failed for user %d: %v", userID, err)
	}
	if _, err := s.cache.InvalidateQueryResults(ctx); err != nil {
		logger.Warnf("Query cache invalidation failed after permission change for user %d: %v", userID, err)
	}
}

func grantVerbs(p *models.RolePermission) string {
	verbs := ""
	add := func(ok bool, v string) {
		if !ok {
			return
		}
		if verbs != "" {
			verbs += "+"
		}
		verbs += v
	}
	add(p.CanSelect, "select")
	add(p.CanInsert, "insert")
	add(p.CanUpdate, "update")
	add(p.CanDelete, "delete")
	if verbs == "" {
		verbs = "no"
	}
	return verbs
}
