package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nursultanq/gymapp/internal/models"
)

func TestOpenDefaultsToInMemorySQLite(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenAcceptsMariaDBAlias(t *testing.T) {
	// No server to connect to here; the alias must at least route to the
	// mysql driver instead of failing as unsupported.
	_, err := Open(Config{Driver: "mariadb"})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "unsupported database driver")
}

func TestAutoMigrateAndSeed(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, AutoMigrateAndSeed(db))

	var count int64
	require.NoError(t, db.Model(&models.TrainingType{}).Count(&count).Error)
	require.EqualValues(t, 5, count)

	// Seeding must be idempotent.
	require.NoError(t, AutoMigrateAndSeed(db))
	require.NoError(t, db.Model(&models.TrainingType{}).Count(&count).Error)
	require.EqualValues(t, 5, count)
}

func TestAutoMigrateAndSeedNilDB(t *testing.T) {
	require.Error(t, AutoMigrateAndSeed(nil))
}
