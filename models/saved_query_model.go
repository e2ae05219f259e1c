package models

import "time"

// SavedQuery is a named SQL snippet a user keeps for reuse. The SQL is
// validated on save but authorized per execution, so a permission change
// between save and run is always honored.
type SavedQuery struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	UserID      uint      `gorm:"column:user_id;index" json:"user_id" validate:"required"`
	Name        string    `gorm:"column:name" json:"name" validate:"required"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	SQL         string    `gorm:"column:sql_query;type:text" json:"sql" validate:"required"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (SavedQuery) TableName() string {
	return "saved_queries"
}
