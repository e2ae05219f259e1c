package access

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"querygateapi/models"
	"querygateapi/repository"
	"querygateapi/services/cache"
)

// PermissionSource resolves one user's grant for one table. A nil record
// with a nil error means no grant exists, which the engine treats as denial.
type PermissionSource interface {
	Lookup(ctx context.Context, userID uint, schemaName, table string) (*models.RolePermission, error)
}

type dbPermissionSource struct {
	users repository.UserRepository
	perms repository.RolePermissionRepository
}

// NewDBPermissionSource creates a PermissionSource over the control tables.
func NewDBPermissionSource(users repository.UserRepository, perms repository.RolePermissionRepository) PermissionSource {
	return &dbPermissionSource{users: users, perms: perms}
}

func (s *dbPermissionSource) Lookup(ctx context.Context, userID uint, schemaName, table string) (*models.RolePermission, error) {
	user, err := s.users.GetByID(nil, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}

	// Admins get a synthetic unrestricted grant so they still flow through
	// the same pipeline instead of a side door.
	if user.Role == models.RoleAdmin {
		return &models.RolePermission{
			UserID:     userID,
			SchemaName: schemaName,
			Table:      table,
			CanSelect:  true,
			CanInsert:  true,
			CanUpdate:  true,
			CanDelete:  true,
		}, nil
	}

	perm, err := s.perms.GetByUserSchemaTable(nil, userID, schemaName, table)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return perm, nil
}

// cachedGrant is the permission-tier cache entry. Denials are cached too, so
// a hot unauthorized path does not hammer the control tables; grants and
// revocations invalidate the user's prefix to cut the staleness short.
type cachedGrant struct {
	Found bool                   `json:"found"`
	Perm  *models.RolePermission `json:"perm,omitempty"`
}

type cachedPermissionSource struct {
	src   PermissionSource
	cache *cache.Manager
}

// NewCachedPermissionSource wraps src with the permission cache tier.
func NewCachedPermissionSource(src PermissionSource, mgr *cache.Manager) PermissionSource {
	return &cachedPermissionSource{src: src, cache: mgr}
}

func (s *cachedPermissionSource) Lookup(ctx context.Context, userID uint, schemaName, table string) (*models.RolePermission, error) {
	key := s.cache.PermissionKey(userID, schemaName, table)

	var entry cachedGrant
	if s.cache.GetJSON(ctx, key, &entry) {
		if !entry.Found {
			return nil, nil
		}
		return entry.Perm, nil
	}

	perm, err := s.src.Lookup(ctx, userID, schemaName, table)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, cachedGrant{Found: perm != nil, Perm: perm})
	return perm, nil
}
