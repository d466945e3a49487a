package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nursultanq/gymapp/internal/models"
)

func newTrainingFixture(t *testing.T) (*TrainingService, *TraineeService, *TrainerService) {
	t.Helper()
	db, store := newServiceDB(t)

	trainingSvc, err := NewTrainingService(db)
	require.NoError(t, err)
	traineeSvc, err := NewTraineeService(db, store)
	require.NoError(t, err)
	trainerSvc, err := NewTrainerService(db, store)
	require.NoError(t, err)
	return trainingSvc, traineeSvc, trainerSvc
}

func TestCreateTrainingUsesTrainerSpecialization(t *testing.T) {
	trainingSvc, traineeSvc, trainerSvc := newTrainingFixture(t)
	ctx := context.Background()

	registerTrainee(t, traineeSvc, "John", "Smith")
	registerTrainer(t, trainerSvc, "Anna", "Jones", "YOGA")

	training, err := trainingSvc.Create(ctx, CreateTrainingInput{
		TraineeUsername: "john.smith",
		TrainerUsername: "anna.jones",
		Name:            "Evening yoga",
		Date:            testDate(2026, 4, 1),
		DurationMinutes: 45,
	})
	require.NoError(t, err)
	require.Equal(t, models.TrainingTypeYoga, training.TrainingType.Name)
	require.Equal(t, 45, training.DurationMinutes)
}

func TestCreateTrainingValidation(t *testing.T) {
	trainingSvc, traineeSvc, trainerSvc := newTrainingFixture(t)
	ctx := context.Background()

	registerTrainee(t, traineeSvc, "John", "Smith")
	registerTrainer(t, trainerSvc, "Anna", "Jones", "YOGA")

	cases := []CreateTrainingInput{
		{TraineeUsername: "john.smith", TrainerUsername: "anna.jones", Date: testDate(2026, 4, 1), DurationMinutes: 45},
		{TraineeUsername: "john.smith", TrainerUsername: "anna.jones", Name: "x", Date: testDate(2026, 4, 1)},
		{TraineeUsername: "john.smith", TrainerUsername: "anna.jones", Name: "x", DurationMinutes: 45},
		{TraineeUsername: "ghost", TrainerUsername: "anna.jones", Name: "x", Date: testDate(2026, 4, 1), DurationMinutes: 45},
		{TraineeUsername: "john.smith", TrainerUsername: "ghost", Name: "x", Date: testDate(2026, 4, 1), DurationMinutes: 45},
	}
	for _, input := range cases {
		_, err := trainingSvc.Create(ctx, input)
		require.Error(t, err)
	}
}

func TestDeleteTraining(t *testing.T) {
	trainingSvc, traineeSvc, trainerSvc := newTrainingFixture(t)
	ctx := context.Background()

	registerTrainee(t, traineeSvc, "John", "Smith")
	registerTrainer(t, trainerSvc, "Anna", "Jones", "YOGA")

	training, err := trainingSvc.Create(ctx, CreateTrainingInput{
		TraineeUsername: "john.smith",
		TrainerUsername: "anna.jones",
		Name:            "Evening yoga",
		Date:            testDate(2026, 4, 1),
		DurationMinutes: 45,
	})
	require.NoError(t, err)

	deleted, err := trainingSvc.Delete(ctx, training.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.Trainer)
	require.Equal(t, "anna.jones", deleted.Trainer.Username)

	remaining, err := trainingSvc.ListForTrainee(ctx, "john.smith", TrainingFilters{})
	require.NoError(t, err)
	require.Empty(t, remaining)

	_, err = trainingSvc.Delete(ctx, training.ID)
	require.Error(t, err)
}

func TestListTrainingsWithFilters(t *testing.T) {
	trainingSvc, traineeSvc, trainerSvc := newTrainingFixture(t)
	ctx := context.Background()

	registerTrainee(t, traineeSvc, "John", "Smith")
	registerTrainer(t, trainerSvc, "Anna", "Jones", "YOGA")
	registerTrainer(t, trainerSvc, "Max", "Power", "ZUMBA")

	for _, input := range []CreateTrainingInput{
		{TraineeUsername: "john.smith", TrainerUsername: "anna.jones", Name: "yoga 1", Date: testDate(2026, 4, 1), DurationMinutes: 45},
		{TraineeUsername: "john.smith", TrainerUsername: "anna.jones", Name: "yoga 2", Date: testDate(2026, 4, 10), DurationMinutes: 45},
		{TraineeUsername: "john.smith", TrainerUsername: "max.power", Name: "zumba 1", Date: testDate(2026, 4, 20), DurationMinutes: 30},
	} {
		_, err := trainingSvc.Create(ctx, input)
		require.NoError(t, err)
	}

	all, err := trainingSvc.ListForTrainee(ctx, "john.smith", TrainingFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	from := testDate(2026, 4, 5)
	to := testDate(2026, 4, 15)
	inPeriod, err := trainingSvc.ListForTrainee(ctx, "john.smith", TrainingFilters{
		PeriodFrom: &from,
		PeriodTo:   &to,
	})
	require.NoError(t, err)
	require.Len(t, inPeriod, 1)
	require.Equal(t, "yoga 2", inPeriod[0].Name)

	byTrainer, err := trainingSvc.ListForTrainee(ctx, "john.smith", TrainingFilters{TrainerName: "Max"})
	require.NoError(t, err)
	require.Len(t, byTrainer, 1)
	require.Equal(t, "zumba 1", byTrainer[0].Name)

	byType, err := trainingSvc.ListForTrainee(ctx, "john.smith", TrainingFilters{TrainingType: "yoga"})
	require.NoError(t, err)
	require.Len(t, byType, 2)

	forTrainer, err := trainingSvc.ListForTrainer(ctx, "anna.jones", TrainingFilters{TraineeName: "John"})
	require.NoError(t, err)
	require.Len(t, forTrainer, 2)

	none, err := trainingSvc.ListForTrainer(ctx, "anna.jones", TrainingFilters{TraineeName: "Nobody"})
	require.NoError(t, err)
	require.Empty(t, none)
}
