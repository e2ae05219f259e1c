package models

import "time"

// QueryHistory is one audit record per completed or rejected request,
// written fire-and-forget by the pipeline and read by the history endpoints.
type QueryHistory struct {
	ID              uint      `gorm:"primaryKey;column:id" json:"id"`
	UserID          uint      `gorm:"column:user_id;index" json:"user_id"`
	Question        string    `gorm:"column:question;type:text" json:"question"`
	SQL             string    `gorm:"column:generated_sql;type:text" json:"sql"`
	Status          string    `gorm:"column:status" json:"status"` // success or an error kind
	RowCount        int       `gorm:"column:result_rows" json:"result_rows"`
	ExecutionTimeMs int64     `gorm:"column:execution_time_ms" json:"execution_time_ms"`
	Cached          bool      `gorm:"column:cached" json:"cached"`
	ErrorMessage    string    `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;index" json:"created_at"`
}

// TableName specifies the static table name for GORM.
func (QueryHistory) TableName() string {
	return "query_history"
}
