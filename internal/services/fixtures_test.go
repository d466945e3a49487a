package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/accounts"
	"github.com/nursultanq/gymapp/internal/database"
)

func newServiceDB(t *testing.T) (*gorm.DB, *accounts.Store) {
	t.Helper()
	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateAndSeed(db))

	store, err := accounts.NewStore(db)
	require.NoError(t, err)
	return db, store
}

func testDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
}

func registerTrainee(t *testing.T, svc *TraineeService, firstName, lastName string) *Credentials {
	t.Helper()
	creds, err := svc.Register(context.Background(), RegisterTraineeInput{
		FirstName: firstName,
		LastName:  lastName,
	})
	require.NoError(t, err)
	return creds
}

func registerTrainer(t *testing.T, svc *TrainerService, firstName, lastName, specialization string) *Credentials {
	t.Helper()
	creds, err := svc.Register(context.Background(), RegisterTrainerInput{
		FirstName:      firstName,
		LastName:       lastName,
		Specialization: specialization,
	})
	require.NoError(t, err)
	return creds
}
