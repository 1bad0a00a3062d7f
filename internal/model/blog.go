package model

import (
	"time"

	"gorm.io/gorm"
)

// Blog is a post. Reactions is the denormalized summary kept in sync by the
// reaction service.
type Blog struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AuthorID  uint            `gorm:"not null;index" json:"authorId"`
	Title     string          `gorm:"type:varchar(255);not null" json:"title"`
	Content   string          `gorm:"type:text;not null" json:"content"`
	Images    []string        `gorm:"type:text;serializer:json" json:"images"`
	Reactions ReactionSummary `gorm:"embedded;embeddedPrefix:reaction_" json:"reactions"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	Author  *User    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Reviews []Review `gorm:"foreignKey:BlogID" json:"reviews,omitempty"`
}

func (Blog) TableName() string { return "blog" }
