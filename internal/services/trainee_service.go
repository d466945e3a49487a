package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/accounts"
	"github.com/nursultanq/gymapp/internal/models"
	"github.com/nursultanq/gymapp/pkg/crypto"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/logger"
)

// RegisterTraineeInput carries the profile fields collected at signup. The
// username and password are generated, never supplied by the caller.
type RegisterTraineeInput struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Address     string
}

// UpdateTraineeInput carries the mutable profile fields.
type UpdateTraineeInput struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Address     string
	IsActive    *bool
}

// Credentials is returned exactly once, at registration. The password is
// never retrievable afterwards; only its hash is stored.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TraineeService manages trainee profiles and their trainer assignments.
type TraineeService struct {
	db    *gorm.DB
	store *accounts.Store
	log   *zap.Logger
}

// NewTraineeService constructs a TraineeService.
func NewTraineeService(db *gorm.DB, store *accounts.Store) (*TraineeService, error) {
	if db == nil {
		return nil, stderrors.New("trainee service: db is required")
	}
	if store == nil {
		return nil, stderrors.New("trainee service: account store is required")
	}
	return &TraineeService{db: db, store: store, log: logger.WithModule("services.trainee")}, nil
}

// Register creates a trainee account and returns its generated credentials.
func (s *TraineeService) Register(ctx context.Context, input RegisterTraineeInput) (*Credentials, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, errors.NewBadRequest("first name and last name are required")
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

	trainee := &models.Trainee{
		User: models.User{
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
			Username:  username,
			Password:  hashed,
			IsActive:  true,
		},
		DateOfBirth: input.DateOfBirth,
		Address:     strings.TrimSpace(input.Address),
	}

	if err := s.db.WithContext(ctx).Create(trainee).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, errors.NewBadRequest("username already exists")
		}
		return nil, errors.Wrap(err, "create trainee")
	}

	s.log.Info("trainee registered", zap.String("username", username))
	return &Credentials{Username: username, Password: password}, nil
}

// GetByUsername returns the trainee with assigned trainers preloaded.
func (s *TraineeService) GetByUsername(ctx context.Context, username string) (*models.Trainee, error) {
	ctx = ensureContext(ctx)

	var trainee models.Trainee
	err := s.db.WithContext(ctx).
		Preload("Trainers").
		Preload("Trainers.Specialization").
		Where("username = ?", username).
		Take(&trainee).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, "query trainee")
	}
	return &trainee, nil
}

// Update rewrites the trainee's mutable profile columns. The username never
// changes once assigned.
func (s *TraineeService) Update(ctx context.Context, username string, input UpdateTraineeInput) (*models.Trainee, error) {
	ctx = ensureContext(ctx)

	trainee, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, errors.NewBadRequest("first name and last name are required")
	}

	updates := map[string]any{
		"first_name": strings.TrimSpace(input.FirstName),
		"last_name":  strings.TrimSpace(input.LastName),
		"address":    strings.TrimSpace(input.Address),
	}
	if input.DateOfBirth != nil {
		updates["date_of_birth"] = input.DateOfBirth
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	err = s.db.WithContext(ctx).Model(&models.Trainee{}).
		Where("id = ?", trainee.ID).
		Updates(updates).Error
	if err != nil {
		return nil, errors.Wrap(err, "update trainee")
	}

	return s.GetByUsername(ctx, username)
}

// SetActive toggles the trainee's active flag.
func (s *TraineeService) SetActive(ctx context.Context, username string, active bool) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Trainee{}).
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

// Delete removes the trainee, its trainer assignments, and its trainings.
func (s *TraineeService) Delete(ctx context.Context, username string) error {
	ctx = ensureContext(ctx)

	trainee, err := s.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trainee_id = ?", trainee.ID).Delete(&models.Training{}).Error; err != nil {
			return fmt.Errorf("delete trainings: %w", err)
		}
		if err := tx.Model(trainee).Association("Trainers").Clear(); err != nil {
			return fmt.Errorf("clear trainer assignments: %w", err)
		}
		if err := tx.Delete(trainee).Error; err != nil {
			return fmt.Errorf("delete trainee: %w", err)
		}
		return nil
	})
}

// UpdateTrainers replaces the trainee's trainer assignments with the given
// trainer usernames and returns the new assignment list.
func (s *TraineeService) UpdateTrainers(ctx context.Context, username string, trainerUsernames []string) ([]models.Trainer, error) {
	ctx = ensureContext(ctx)

	trainee, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var trainers []models.Trainer
	if len(trainerUsernames) > 0 {
		err = s.db.WithContext(ctx).
			Preload("Specialization").
			Where("username IN ?", trainerUsernames).
			Find(&trainers).Error
		if err != nil {
			return nil, errors.Wrap(err, "query trainers")
		}
		if len(trainers) != len(trainerUsernames) {
			return nil, errors.NewBadRequest("unknown trainer in assignment list")
		}
	}

	if err := s.db.WithContext(ctx).Model(trainee).Association("Trainers").Replace(trainers); err != nil {
		return nil, errors.Wrap(err, "replace trainer assignments")
	}
	return trainers, nil
}
