package accounts

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/models"
)

// ErrNotFound indicates that no account matches the supplied username.
var ErrNotFound = errors.New("accounts: not found")

// Store resolves and persists accounts across both account spaces. It is the
// single save path for lockout-state mutations: writes are column-scoped and
// never touch the username, keeping it immutable once assigned.
type Store struct {
	db *gorm.DB
}

// NewStore constructs an account store backed by the provided database.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("account store: db is required")
	}
	return &Store{db: db}, nil
}

// FindByUsername looks the username up in the trainee space first, then the
// trainer space, returning the matching account variant.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	var trainee models.Trainee
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&trainee).Error
	if err == nil {
		return models.TraineeAccount(&trainee), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, fmt.Errorf("account store: query trainee: %w", err)
	}

	var trainer models.Trainer
	err = s.db.WithContext(ctx).Preload("Specialization").
		Where("username = ?", username).Take(&trainer).Error
	if err == nil {
		return models.TrainerAccount(&trainer), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, fmt.Errorf("account store: query trainer: %w", err)
	}

	return models.Account{}, ErrNotFound
}

// Save persists the mutable columns of the account, dispatching on the
// variant tag instead of runtime type inspection.
func (s *Store) Save(ctx context.Context, account models.Account) error {
	user := account.User()
	if user == nil {
		return errors.New("account store: empty account")
	}

	updates := map[string]any{
		"password":              user.Password,
		"is_active":             user.IsActive,
		"failed_login_attempts": user.FailedLoginAttempts,
		"is_blocked":            user.IsBlocked,
		"block_start_time":      user.BlockStartTime,
	}

	var result *gorm.DB
	switch account.Role {
	case models.RoleTrainee:
		result = s.db.WithContext(ctx).Model(&models.Trainee{}).
			Where("id = ?", user.ID).Updates(updates)
	case models.RoleTrainer:
		result = s.db.WithContext(ctx).Model(&models.Trainer{}).
			Where("id = ?", user.ID).Updates(updates)
	default:
		return fmt.Errorf("account store: unknown role %q", account.Role)
	}

	if result.Error != nil {
		return fmt.Errorf("account store: save %s: %w", account.Role, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UsernameTaken reports whether any account in either space already uses the
// username, optionally excluding an account id (for updates).
func (s *Store) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&models.Trainee{}).Where("username = ?", username)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("account store: count trainees: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	query = s.db.WithContext(ctx).Model(&models.Trainer{}).Where("username = ?", username)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("account store: count trainers: %w", err)
	}
	return count > 0, nil
}
