package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/models"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/logger"
)

// CreateTrainingInput carries the fields of a new training session.
type CreateTrainingInput struct {
	TraineeUsername string
	TrainerUsername string
	Name            string
	Date            time.Time
	DurationMinutes int
}

// TrainingFilters narrows training queries. Zero values mean "no filter".
type TrainingFilters struct {
	PeriodFrom   *time.Time
	PeriodTo     *time.Time
	TrainerName  string
	TraineeName  string
	TrainingType string
}

// TrainingService records and queries training sessions. A training's type
// always mirrors the trainer's specialization.
type TrainingService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewTrainingService constructs a TrainingService.
func NewTrainingService(db *gorm.DB) (*TrainingService, error) {
	if db == nil {
		return nil, stderrors.New("training service: db is required")
	}
	return &TrainingService{db: db, log: logger.WithModule("services.training")}, nil
}

// Create records a training session between an existing trainee and trainer.
func (s *TrainingService) Create(ctx context.Context, input CreateTrainingInput) (*models.Training, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewBadRequest("training name is required")
	}
	if input.DurationMinutes <= 0 {
		return nil, errors.NewBadRequest("training duration must be positive")
	}
	if input.Date.IsZero() {
		return nil, errors.NewBadRequest("training date is required")
	}

	var trainee models.Trainee
	err := s.db.WithContext(ctx).Where("username = ?", input.TraineeUsername).Take(&trainee).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewBadRequest("unknown trainee")
		}
		return nil, errors.Wrap(err, "query trainee")
	}

	var trainer models.Trainer
	err = s.db.WithContext(ctx).Preload("Specialization").
		Where("username = ?", input.TrainerUsername).Take(&trainer).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewBadRequest("unknown trainer")
		}
		return nil, errors.Wrap(err, "query trainer")
	}

	training := &models.Training{
		Name:            strings.TrimSpace(input.Name),
		TraineeID:       trainee.ID,
		TrainerID:       trainer.ID,
		TrainingTypeID:  trainer.SpecializationID,
		Date:            input.Date,
		DurationMinutes: input.DurationMinutes,
	}

	if err := s.db.WithContext(ctx).Create(training).Error; err != nil {
		return nil, errors.Wrap(err, "create training")
	}

	s.log.Info("training recorded",
		zap.String("trainee", input.TraineeUsername),
		zap.String("trainer", input.TrainerUsername),
		zap.Time("date", input.Date))

	training.Trainee = &trainee
	training.Trainer = &trainer
	training.TrainingType = trainer.Specialization
	return training, nil
}

// Get loads a single training with its parties.
func (s *TrainingService) Get(ctx context.Context, id string) (*models.Training, error) {
	ctx = ensureContext(ctx)

	var training models.Training
	err := s.db.WithContext(ctx).
		Preload("Trainee").
		Preload("Trainer").
		Preload("TrainingType").
		Where("id = ?", id).Take(&training).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, "query training")
	}
	return &training, nil
}

// Delete removes a recorded training. The deleted row is returned with its
// parties loaded so callers can forward a removal event downstream.
func (s *TrainingService) Delete(ctx context.Context, id string) (*models.Training, error) {
	training, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ensureContext(ctx)).Delete(&models.Training{}, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "delete training")
	}

	s.log.Info("training removed", zap.String("id", id))
	return training, nil
}

// ListForTrainee returns the trainee's trainings, optionally filtered by
// period, trainer first name, and training type.
func (s *TrainingService) ListForTrainee(ctx context.Context, username string, filters TrainingFilters) ([]models.Training, error) {
	ctx = ensureContext(ctx)

	var trainee models.Trainee
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&trainee).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, "query trainee")
	}

	query := s.db.WithContext(ctx).Model(&models.Training{}).
		Preload("Trainer").
		Preload("TrainingType").
		Where("trainings.trainee_id = ?", trainee.ID)
	query = applyPeriod(query, filters)

	if filters.TrainerName != "" {
		query = query.Joins("JOIN trainers ON trainers.id = trainings.trainer_id").
			Where("trainers.first_name = ?", filters.TrainerName)
	}
	if filters.TrainingType != "" {
		query = query.Joins("JOIN training_types ON training_types.id = trainings.training_type_id").
			Where("training_types.name = ?", strings.ToUpper(filters.TrainingType))
	}

	var trainings []models.Training
	if err := query.Order("trainings.date ASC").Find(&trainings).Error; err != nil {
		return nil, errors.Wrap(err, "query trainings")
	}
	return trainings, nil
}

// ListForTrainer returns the trainer's trainings, optionally filtered by
// period and trainee first name.
func (s *TrainingService) ListForTrainer(ctx context.Context, username string, filters TrainingFilters) ([]models.Training, error) {
	ctx = ensureContext(ctx)

	var trainer models.Trainer
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&trainer).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, "query trainer")
	}

	query := s.db.WithContext(ctx).Model(&models.Training{}).
		Preload("Trainee").
		Preload("TrainingType").
		Where("trainings.trainer_id = ?", trainer.ID)
	query = applyPeriod(query, filters)

	if filters.TraineeName != "" {
		query = query.Joins("JOIN trainees ON trainees.id = trainings.trainee_id").
			Where("trainees.first_name = ?", filters.TraineeName)
	}

	var trainings []models.Training
	if err := query.Order("trainings.date ASC").Find(&trainings).Error; err != nil {
		return nil, errors.Wrap(err, "query trainings")
	}
	return trainings, nil
}

func applyPeriod(query *gorm.DB, filters TrainingFilters) *gorm.DB {
	if filters.PeriodFrom != nil {
		query = query.Where("trainings.date >= ?", *filters.PeriodFrom)
	}
	if filters.PeriodTo != nil {
		query = query.Where("trainings.date <= ?", *filters.PeriodTo)
	}
	return query
}
