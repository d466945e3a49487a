package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trainee is a gym member account.
type Trainee struct {
	User

	DateOfBirth *time.Time `json:"date_of_birth"`
	Address     string     `json:"address"`

	Trainers []Trainer `gorm:"many2many:trainee_trainers;" json:"trainers,omitempty"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (t *Trainee) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
