package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trainer is a coaching account with a training-type specialization.
type Trainer struct {
	User

	SpecializationID string        `gorm:"type:uuid;not null" json:"-"`
	Specialization   *TrainingType `gorm:"foreignKey:SpecializationID" json:"specialization,omitempty"`

	Trainees []Trainee `gorm:"many2many:trainee_trainers;" json:"trainees,omitempty"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (t *Trainer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
