package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrainingType is a catalog entry trainers specialise in and trainings
// reference. The catalog is seeded at start-up.
type TrainingType struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Seeded training type names.
const (
	TrainingTypeFitness    = "FITNESS"
	TrainingTypeYoga       = "YOGA"
	TrainingTypeZumba      = "ZUMBA"
	TrainingTypeStretching = "STRETCHING"
	TrainingTypeResistance = "RESISTANCE"
)

// BeforeCreate ensures a UUID is present before persisting.
func (t *TrainingType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
