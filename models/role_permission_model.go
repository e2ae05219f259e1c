package models

import (
	"encoding/json"
	"time"
)

// RolePermission is one permission record per (user, schema, table). The
// pipeline only reads these rows; they are written by the permission
// administration endpoints and invalidated out of the permission cache tier
// on every change.
type RolePermission struct {
	ID         uint   `gorm:"primaryKey;column:id" json:"id"`
	UserID     uint   `gorm:"column:user_id;index:idx_perm_user_schema_table,unique" json:"user_id" validate:"required"`
	SchemaName string `gorm:"column:schema_name;index:idx_perm_user_schema_table,unique" json:"schema_name" validate:"required"`
	Table      string `gorm:"column:table_name;index:idx_perm_user_schema_table,unique" json:"table_name" validate:"required"`
	CanSelect  bool   `gorm:"column:can_select" json:"can_select"`
	CanInsert  bool   `gorm:"column:can_insert" json:"can_insert"`
	CanUpdate  bool   `gorm:"column:can_update" json:"can_update"`
	CanDelete  bool   `gorm:"column:can_delete" json:"can_delete"`
	// RowFilter is a SQL predicate conjoined into the user's queries,
	// e.g. "region = 'US'". Empty means no row restriction.
	RowFilter string `gorm:"column:row_filter;type:text" json:"row_filter"`
	// AllowedColumns is a JSON array of column names the user may reference.
	// Empty means all columns.
	AllowedColumns string    `gorm:"column:allowed_columns;type:text" json:"allowed_columns"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (RolePermission) TableName() string {
	return "role_permissions"
}

// ColumnAllowList decodes AllowedColumns. A nil result means the record
// places no column restriction.
func (p *RolePermission) ColumnAllowList() ([]string, error) {
	if p.AllowedColumns == "" {
		return nil, nil
	}
	var cols []string
	if err := json.Unmarshal([]byte(p.AllowedColumns), &cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// SetColumnAllowList encodes the allow-list into AllowedColumns.
func (p *RolePermission) SetColumnAllowList(cols []string) error {
	if len(cols) == 0 {
		p.AllowedColumns = ""
		return nil
	}
	raw, err := json.Marshal(cols)
	if err != nil {
		return err
	}
	p.AllowedColumns = string(raw)
	return nil
}
