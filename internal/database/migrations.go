package database

import (
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.TrainingType{},
		&models.Trainee{},
		&models.Trainer{},
		&models.Training{},
		&models.Token{},
		&models.AuditLog{},
	)
}

// SeedData populates the training-type catalog.
func SeedData(db *gorm.DB) error {
	names := []string{
		models.TrainingTypeFitness,
		models.TrainingTypeYoga,
		models.TrainingTypeZumba,
		models.TrainingTypeStretching,
		models.TrainingTypeResistance,
	}

	for _, name := range names {
		trainingType := models.TrainingType{Name: name}
		if err := db.Where(models.TrainingType{Name: name}).
			Attrs(trainingType).
			FirstOrCreate(&models.TrainingType{}).Error; err != nil {
			return err
		}
	}

	return nil
}
