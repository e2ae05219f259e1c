package repository

import (
	"querygateapi/config"
	"querygateapi/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RolePermissionRepository provides data access operations for permission records.
type RolePermissionRepository interface {
	GetByUserSchemaTable(tx *gorm.DB, userID uint, schema, table string) (*models.RolePermission, error)
	GetByUserID(tx *gorm.DB, userID uint) ([]models.RolePermission, error)
	Upsert(tx *gorm.DB, perm *models.RolePermission) error
	DeleteByUserSchemaTable(tx *gorm.DB, userID uint, schema, table string) (int64, error)
}

type rolePermissionRepository struct {
	db *gorm.DB
}

// NewRolePermissionRepository creates a new permission repository instance.
func NewRolePermissionRepository() RolePermissionRepository {
	return &rolePermissionRepository{
		db: config.DB,
	}
}

// NewRolePermissionRepositoryWithDB creates a permission repository bound to
// an explicit GORM handle. Used by tests against the sandbox database.
func NewRolePermissionRepositoryWithDB(db *gorm.DB) RolePermissionRepository {
	return &rolePermissionRepository{db: db}
}

func (r *rolePermissionRepository) GetByUserSchemaTable(tx *gorm.DB, userID uint, schema, table string) (*models.RolePermission, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var perm models.RolePermission
	if err := db.Table(models.RolePermission{}.TableName()).
		Where("user_id = ? AND schema_name = ? AND table_name = ?", userID, schema, table).
		First(&perm).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *rolePermissionRepository) GetByUserID(tx *gorm.DB, userID uint) ([]models.RolePermission, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var perms []models.RolePermission
	if err := db.Table(models.RolePermission{}.TableName()).
		Where("user_id = ?", userID).
		Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *rolePermissionRepository) Upsert(tx *gorm.DB, perm *models.RolePermission) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "schema_name"}, {Name: "table_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"can_select", "can_insert", "can_update", "can_delete",
			"row_filter", "allowed_columns", "updated_at",
		}),
	}).Create(perm).Error
}

func (r *rolePermissionRepository) DeleteByUserSchemaTable(tx *gorm.DB, userID uint, schema, table string) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	res := db.Where("user_id = ? AND schema_name = ? AND table_name = ?", userID, schema, table).
		Delete(&models.RolePermission{})
	return res.RowsAffected, res.Error
}
