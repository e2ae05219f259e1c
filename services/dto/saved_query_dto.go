package dto

// SaveQueryRequest is the body of POST /api/queries/saved.
type SaveQueryRequest struct {
	UserID      uint   `json:"user_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty"`
	SQL         string `json:"sql" validate:"required"`
}
