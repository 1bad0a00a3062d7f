package model

import (
	"time"

	"gorm.io/gorm"
)

// User is an account. Email is unique; only the bcrypt hash of the
// password is stored. Deleted users are soft-deleted and drop out of every
// lookup, which is what makes an id "exist" for the rest of the system.
type User struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	Name                  string         `gorm:"type:varchar(64);not null;index" json:"name"`
	Email                 string         `gorm:"type:varchar(128);not null;uniqueIndex" json:"email"`
	AvatarURL             string         `gorm:"type:varchar(255)" json:"avatarUrl"`
	PasswordHash          string         `gorm:"type:varchar(255);not null" json:"-"`
	EmailVerified         bool           `gorm:"not null;default:false" json:"-"`
	EmailVerificationCode string         `gorm:"type:varchar(32);index" json:"-"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }
