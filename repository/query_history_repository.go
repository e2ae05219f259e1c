package repository

import (
	"time"

	"querygateapi/config"
	"querygateapi/models"

	"gorm.io/gorm"
)

// QueryHistoryRepository provides data access operations for audit records.
type QueryHistoryRepository interface {
	Create(tx *gorm.DB, entry *models.QueryHistory) error
	GetRecent(tx *gorm.DB, userID uint, since time.Time, limit int, status string) ([]models.QueryHistory, error)
	DeleteOlderThan(tx *gorm.DB, cutoff time.Time) (int64, error)
}

type queryHistoryRepository struct {
	db *gorm.DB
}

// NewQueryHistoryRepository creates a new query history repository instance.
func NewQueryHistoryRepository() QueryHistoryRepository {
	return &queryHistoryRepository{
		db: config.DB,
	}
}

// NewQueryHistoryRepositoryWithDB creates a history repository bound to an
// explicit GORM handle. Used by tests against the sandbox database.
func NewQueryHistoryRepositoryWithDB(db *gorm.DB) QueryHistoryRepository {
	return &queryHistoryRepository{db: db}
}

func (r *queryHistoryRepository) Create(tx *gorm.DB, entry *models.QueryHistory) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(entry).Error
}

func (r *queryHistoryRepository) GetRecent(tx *gorm.DB, userID uint, since time.Time, limit int, status string) ([]models.QueryHistory, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	q := db.Table(models.QueryHistory{}.TableName()).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var entries []models.QueryHistory
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *queryHistoryRepository) DeleteOlderThan(tx *gorm.DB, cutoff time.Time) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	res := db.Where("created_at < ?", cutoff).Delete(&models.QueryHistory{})
	return res.RowsAffected, res.Error
}
