package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/models"
)

// TrainingTypeService exposes the seeded training-type catalog. The catalog
// is read-only at runtime; new entries arrive through seeding only.
type TrainingTypeService struct {
	db *gorm.DB
}

// NewTrainingTypeService constructs a TrainingTypeService.
func NewTrainingTypeService(db *gorm.DB) (*TrainingTypeService, error) {
	if db == nil {
		return nil, errors.New("training type service: db is required")
	}
	return &TrainingTypeService{db: db}, nil
}

// List returns every training type, ordered by name.
func (s *TrainingTypeService) List(ctx context.Context) ([]models.TrainingType, error) {
	ctx = ensureContext(ctx)

	var types []models.TrainingType
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}
