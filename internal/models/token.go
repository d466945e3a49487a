package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenKindBearer is the only token kind currently issued.
const TokenKindBearer = "bearer"

// Token is a persisted bearer session token. The Expired column is advisory
// only: validity checks always recompute expiry from the signed claims, and
// only the maintenance cleaner writes the column.
type Token struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Token    string `gorm:"uniqueIndex;not null" json:"-"`
	Kind     string `gorm:"not null;default:bearer" json:"kind"`
	Revoked  bool   `gorm:"default:false" json:"revoked"`
	Expired  bool   `gorm:"default:false" json:"expired"`
	Username string `gorm:"index;not null" json:"username"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (t *Token) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Kind == "" {
		t.Kind = TokenKindBearer
	}
	return nil
}
