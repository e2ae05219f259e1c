package repository

import (
	"querygateapi/config"
	"querygateapi/models"

	"gorm.io/gorm"
)

// SavedQueryRepository provides data access operations for saved queries.
type SavedQueryRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.SavedQuery, error)
	GetByUserID(tx *gorm.DB, userID uint) ([]models.SavedQuery, error)
	Create(tx *gorm.DB, sq *models.SavedQuery) error
	Delete(tx *gorm.DB, id, userID uint) (int64, error)
}

type savedQueryRepository struct {
	db *gorm.DB
}

// NewSavedQueryRepository creates a new saved query repository instance.
func NewSavedQueryRepository() SavedQueryRepository {
	return &savedQueryRepository{
		db: config.DB,
	}
}

// NewSavedQueryRepositoryWithDB creates a saved query repository bound to an
// explicit GORM handle. Used by tests against the sandbox database.
func NewSavedQueryRepositoryWithDB(db *gorm.DB) SavedQueryRepository {
	return &savedQueryRepository{db: db}
}

func (r *savedQueryRepository) GetByID(tx *gorm.DB, id uint) (*models.SavedQuery, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var sq models.SavedQuery
	if err := db.Table(models.SavedQuery{}.TableName()).Where("id = ?", id).First(&sq).Error; err != nil {
		return nil, err
	}
	return &sq, nil
}

func (r *savedQueryRepository) GetByUserID(tx *gorm.DB, userID uint) ([]models.SavedQuery, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var sqs []models.SavedQuery
	if err := db.Table(models.SavedQuery{}.TableName()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sqs).Error; err != nil {
		return nil, err
	}
	return sqs, nil
}

func (r *savedQueryRepository) Create(tx *gorm.DB, sq *models.SavedQuery) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(sq).Error
}

func (r *savedQueryRepository) Delete(tx *gorm.DB, id, userID uint) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.SavedQuery{})
	return res.RowsAffected, res.Error
}
