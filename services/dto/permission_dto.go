package dto

// GrantRequest is the body of POST /api/permissions. Schema defaults to the
// configured query schema when empty.
type GrantRequest struct {
	UserID         uint     `json:"user_id" validate:"required"`
	SchemaName     string   `json:"schema_name,omitempty"`
	TableName      string   `json:"table_name" validate:"required"`
	CanSelect      bool     `json:"can_select"`
	CanInsert      bool     `json:"can_insert"`
	CanUpdate      bool     `json:"can_update"`
	CanDelete      bool     `json:"can_delete"`
	RowFilter      string   `json:"row_filter,omitempty"`
	AllowedColumns []string `json:"allowed_columns,omitempty"`
}

// RevokeRequest is the body of DELETE /api/permissions.
type RevokeRequest struct {
	UserID     uint   `json:"user_id" validate:"required"`
	SchemaName string `json:"schema_name,omitempty"`
	TableName  string `json:"table_name" validate:"required"`
}
