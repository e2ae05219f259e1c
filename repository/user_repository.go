package repository

import (
	"querygateapi/config"
	"querygateapi/models"

	"gorm.io/gorm"
)

// UserRepository provides data access operations for user accounts.
type UserRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(tx *gorm.DB, username string) (*models.User, error)
	Create(tx *gorm.DB, user *models.User) error
	Count(tx *gorm.DB) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance.
func NewUserRepository() UserRepository {
	return &userRepository{
		db: config.DB,
	}
}

// NewUserRepositoryWithDB creates a user repository bound to an explicit
// GORM handle. Used by tests against the sandbox database.
func NewUserRepositoryWithDB(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(tx *gorm.DB, id uint) (*models.User, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.Table(models.User{}.TableName()).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(tx *gorm.DB, username string) (*models.User, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.Table(models.User{}.TableName()).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(tx *gorm.DB, user *models.User) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(user).Error
}

func (r *userRepository) Count(tx *gorm.DB) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.User{}).Count(&n).Error
	return n, err
}
