package models

import "time"

// User roles understood by the authorization store. Admins resolve to full
// access on every table; analysts and viewers are governed by their
// role_permissions rows.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RoleViewer  = "viewer"
)

// User represents an account that submits queries through the pipeline.
type User struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	Username  string    `gorm:"column:username;unique" json:"username" validate:"required"`
	Email     string    `gorm:"column:email;unique" json:"email"`
	Role      string    `gorm:"column:role" json:"role" validate:"required"` // admin/analyst/viewer
	IsActive  bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the static table name for GORM.
func (User) TableName() string {
	return "users"
}
