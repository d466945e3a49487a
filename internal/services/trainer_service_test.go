package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nursultanq/gymapp/internal/models"
)

func TestTrainerRegisterResolvesSpecialization(t *testing.T) {
	db, store := newServiceDB(t)
	svc, err := NewTrainerService(db, store)
	require.NoError(t, err)

	creds := registerTrainer(t, svc, "Anna", "Jones", "fitness")
	require.Equal(t, "anna.jones", creds.Username)

	trainer, err := svc.GetByUsername(context.Background(), "anna.jones")
	require.NoError(t, err)
	require.NotNil(t, trainer.Specialization)
	require.Equal(t, models.TrainingTypeFitness, trainer.Specialization.Name)
}

func TestTrainerRegisterRejectsUnknownSpecialization(t *testing.T) {
	db, store := newServiceDB(t)
	svc, err := NewTrainerService(db, store)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterTrainerInput{
		FirstName:      "Anna",
		LastName:       "Jones",
		Specialization: "SWIMMING",
	})
	require.Error(t, err)

	_, err = svc.Register(context.Background(), RegisterTrainerInput{
		FirstName: "Anna",
		LastName:  "Jones",
	})
	require.Error(t, err)
}

func TestTrainerUpdateSpecialization(t *testing.T) {
	db, store := newServiceDB(t)
	svc, err := NewTrainerService(db, store)
	require.NoError(t, err)
	ctx := context.Background()

	registerTrainer(t, svc, "Anna", "Jones", "FITNESS")

	updated, err := svc.Update(ctx, "anna.jones", UpdateTrainerInput{
		FirstName:      "Anna",
		LastName:       "Jones",
		Specialization: "YOGA",
	})
	require.NoError(t, err)
	require.Equal(t, models.TrainingTypeYoga, updated.Specialization.Name)
	require.Equal(t, "anna.jones", updated.Username)
}

func TestListUnassignedTrainers(t *testing.T) {
	db, store := newServiceDB(t)
	trainerSvc, err := NewTrainerService(db, store)
	require.NoError(t, err)
	traineeSvc, err := NewTraineeService(db, store)
	require.NoError(t, err)
	ctx := context.Background()

	registerTrainee(t, traineeSvc, "John", "Smith")
	registerTrainer(t, trainerSvc, "Anna", "Jones", "FITNESS")
	registerTrainer(t, trainerSvc, "Max", "Power", "ZUMBA")
	registerTrainer(t, trainerSvc, "Ina", "Still", "YOGA")

	// One assigned, one deactivated, one free.
	_, err = traineeSvc.UpdateTrainers(ctx, "john.smith", []string{"anna.jones"})
	require.NoError(t, err)
	require.NoError(t, trainerSvc.SetActive(ctx, "ina.still", false))

	unassigned, err := trainerSvc.ListUnassigned(ctx, "john.smith")
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	require.Equal(t, "max.power", unassigned[0].Username)

	_, err = trainerSvc.ListUnassigned(ctx, "nobody")
	require.Error(t, err)
}
