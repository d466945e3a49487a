package services

import (
	"context"
	stderrors "errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/accounts"
	"github.com/nursultanq/gymapp/internal/models"
	"github.com/nursultanq/gymapp/pkg/crypto"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/logger"
)

// RegisterTrainerInput carries the profile fields collected at signup.
type RegisterTrainerInput struct {
	FirstName      string
	LastName       string
	Specialization string
}

// UpdateTrainerInput carries the mutable trainer profile fields.
type UpdateTrainerInput struct {
	FirstName      string
	LastName       string
	Specialization string
	IsActive       *bool
}

// TrainerService manages trainer profiles.
type TrainerService struct {
	db    *gorm.DB
	store *accounts.Store
	log   *zap.Logger
}

// NewTrainerService constructs a TrainerService.
func NewTrainerService(db *gorm.DB, store *accounts.Store) (*TrainerService, error) {
	if db == nil {
		return nil, stderrors.New("trainer service: db is required")
	}
	if store == nil {
		return nil, stderrors.New("trainer service: account store is required")
	}
	return &TrainerService{db: db, store: store, log: logger.WithModule("services.trainer")}, nil
}

// Register creates a trainer account and returns its generated credentials.
// The specialization must name an existing training type.
func (s *TrainerService) Register(ctx context.Context, input RegisterTrainerInput) (*Credentials, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, errors.NewBadRequest("first name and last name are required")
	}

	specialization, err := s.resolveSpecialization(ctx, input.Specialization)
	if err != nil {
		return nil, err
	}

	username, err := generateUsername(ctx, s.store, input.FirstName, input.LastName)
	if err != nil {
		return nil, errors.Wrap(err, "generate username")
	}

	password, err := crypto.GeneratePassword()
	if err != nil {
		return nil, errors.Wrap(err, "generate password")
	}
	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	trainer := &models.Trainer{
		User: models.User{
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
			Username:  username,
			Password:  hashed,
			IsActive:  true,
		},
		SpecializationID: specialization.ID,
	}

	if err := s.db.WithContext(ctx).Create(trainer).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, errors.NewBadRequest("username already exists")
		}
		return nil, errors.Wrap(err, "create trainer")
	}

	s.log.Info("trainer registered",
		zap.String("username", username),
		zap.String("specialization", specialization.Name))
	return &Credentials{Username: username, Password: password}, nil
}

// GetByUsername returns the trainer with specialization and trainees preloaded.
func (s *TrainerService) GetByUsername(ctx context.Context, username string) (*models.Trainer, error) {
	ctx = ensureContext(ctx)

	var trainer models.Trainer
	err := s.db.WithContext(ctx).
		Preload("Specialization").
		Preload("Trainees").
		Where("username = ?", username).
		Take(&trainer).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, "query trainer")
	}
	return &trainer, nil
}

// Update rewrites the trainer's mutable profile columns.
func (s *TrainerService) Update(ctx context.Context, username string, input UpdateTrainerInput) (*models.Trainer, error) {
	ctx = ensureContext(ctx)

	trainer, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, errors.NewBadRequest("first name and last name are required")
	}

	updates := map[string]any{
		"first_name": strings.TrimSpace(input.FirstName),
		"last_name":  strings.TrimSpace(input.LastName),
	}
	if strings.TrimSpace(input.Specialization) != "" {
		specialization, err := s.resolveSpecialization(ctx, input.Specialization)
		if err != nil {
			return nil, err
		}
		updates["specialization_id"] = specialization.ID
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	err = s.db.WithContext(ctx).Model(&models.Trainer{}).
		Where("id = ?", trainer.ID).
		Updates(updates).Error
	if err != nil {
		return nil, errors.Wrap(err, "update trainer")
	}

	return s.GetByUsername(ctx, username)
}

// SetActive toggles the trainer's active flag.
func (s *TrainerService) SetActive(ctx context.Context, username string, active bool) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Trainer{}).
		Where("username = ?", username).
		Update("is_active", active)
	if result.Error != nil {
		return errors.Wrap(result.Error, "update activation state")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// ListUnassigned returns active trainers not currently assigned to the
// trainee.
func (s *TrainerService) ListUnassigned(ctx context.Context, traineeUsername string) ([]models.Trainer, error) {
	ctx = ensureContext(ctx)

	var trainee models.Trainee
	err := s.db.WithContext(ctx).Where("username = ?", traineeUsername).Take(&trainee).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, "query trainee")
	}

	var trainers []models.Trainer
	err = s.db.WithContext(ctx).
		Preload("Specialization").
		Where("is_active = ?", true).
		Where("id NOT IN (?)", s.db.Table("trainee_trainers").
			Select("trainer_id").
			Where("trainee_id = ?", trainee.ID)).
		Find(&trainers).Error
	if err != nil {
		return nil, errors.Wrap(err, "query unassigned trainers")
	}
	return trainers, nil
}

func (s *TrainerService) resolveSpecialization(ctx context.Context, name string) (*models.TrainingType, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return nil, errors.NewBadRequest("specialization is required")
	}

	var specialization models.TrainingType
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&specialization).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewBadRequest("unknown specialization")
		}
		return nil, errors.Wrap(err, "query training type")
	}
	return &specialization, nil
}
