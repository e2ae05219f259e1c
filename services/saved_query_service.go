package services

import (
	"fmt"

	"gorm.io/gorm"

	"querygateapi/models"
	"querygateapi/pkg/qerror"
	"querygateapi/repository"
	"querygateapi/services/dto"
	"querygateapi/services/validation"
)

// SavedQueryService manages named SQL snippets. Statements are validated on
// save so a user learns about a forbidden query immediately, but they are
// authorized per execution: saving grants nothing.
type SavedQueryService interface {
	Save(req *dto.SaveQueryRequest) (*models.SavedQuery, error)
	List(userID uint) ([]models.SavedQuery, error)
	Get(id uint) (*models.SavedQuery, error)
	Delete(id, userID uint) error
}

type savedQueryService struct {
	savedRepo repository.SavedQueryRepository
	validator *validation.Validator
}

// NewSavedQueryService creates a new saved query service instance.
func NewSavedQueryService() SavedQueryService {
	return &savedQueryService{
		savedRepo: repository.NewSavedQueryRepository(),
		validator: validation.New(),
	}
}

// Save validates the statement and stores its normalized form.
func (s *savedQueryService) Save(req *dto.SaveQueryRequest) (*models.SavedQuery, error) {
	normalized, _, err := s.validator.Validate(req.SQL)
	if err != nil {
		return nil, qerror.AsError(err)
	}

	sq := &models.SavedQuery{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		SQL:         normalized,
	}
	if err := s.savedRepo.Create(nil, sq); err != nil {
		return nil, fmt.Errorf("failed to save query: %v", err)
	}

	return sq, nil
}

// List returns a user's saved queries, newest first.
func (s *savedQueryService) List(userID uint) ([]models.SavedQuery, error) {
	if userID == 0 {
		return nil, fmt.Errorf("invalid user ID: must be greater than 0")
	}
	return s.savedRepo.GetByUserID(nil, userID)
}

// Get returns one saved query by ID.
func (s *savedQueryService) Get(id uint) (*models.SavedQuery, error) {
	return s.savedRepo.GetByID(nil, id)
}

// Delete removes a saved query. The user ID must match the owner, so one
// user cannot delete another's queries by guessing IDs.
func (s *savedQueryService) Delete(id, userID uint) error {
	n, err := s.savedRepo.Delete(nil, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete saved query: %v", err)
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
