package model

import (
	"time"

	"gorm.io/gorm"
)

// Review is a comment on a blog. It can be reacted to like a blog.
type Review struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BlogID    uint            `gorm:"not null;index" json:"blogId"`
	UserID    uint            `gorm:"not null;index" json:"userId"`
	Content   string          `gorm:"type:text;not null" json:"content"`
	Reactions ReactionSummary `gorm:"embedded;embeddedPrefix:reaction_" json:"reactions"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Review) TableName() string { return "review" }
