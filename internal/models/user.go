package models

import (
	"time"
)

// Role identifies the kind of authenticated account.
type Role string

const (
	RoleTrainee Role = "TRAINEE"
	RoleTrainer Role = "TRAINER"
)

// User holds the columns shared by both account kinds, including the
// lockout state evaluated by the credential guard.
//
// Username is immutable once assigned: the account store only ever writes
// back the mutable columns, never the username.
type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Username  string `gorm:"uniqueIndex;not null" json:"username"`
	Password  string `gorm:"not null" json:"-"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	IsBlocked           bool       `gorm:"default:false" json:"-"`
	BlockStartTime      *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRequiredFields reports whether the account carries everything needed
// to participate in authentication.
func (u *User) HasRequiredFields() bool {
	if u == nil {
		return false
	}
	return u.FirstName != "" && u.LastName != "" && u.Username != "" && u.Password != ""
}
