package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Training records a single session between a trainee and a trainer.
type Training struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Name string `gorm:"not null" json:"name"`

	TraineeID string   `gorm:"type:uuid;not null;index" json:"-"`
	Trainee   *Trainee `gorm:"foreignKey:TraineeID" json:"trainee,omitempty"`

	TrainerID string   `gorm:"type:uuid;not null;index" json:"-"`
	Trainer   *Trainer `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`

	TrainingTypeID string        `gorm:"type:uuid;not null" json:"-"`
	TrainingType   *TrainingType `gorm:"foreignKey:TrainingTypeID" json:"training_type,omitempty"`

	Date            time.Time `gorm:"index;not null" json:"date"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (t *Training) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
