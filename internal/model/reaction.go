package model

import "time"

// TargetType names the kind of entity a reaction points at.
type TargetType string

const (
	TargetBlog   TargetType = "Blog"
	TargetReview TargetType = "Review"
)

func (t TargetType) Valid() bool {
	return t == TargetBlog || t == TargetReview
}

// Emoji is one of the fixed reaction kinds.
type Emoji string

const (
	EmojiLike  Emoji = "like"
	EmojiLove  Emoji = "love"
	EmojiLaugh Emoji = "laugh"
	EmojiSad   Emoji = "sad"
	EmojiAngry Emoji = "angry"
)

// Emojis lists every reaction kind in display order.
var Emojis = []Emoji{EmojiLike, EmojiLove, EmojiLaugh, EmojiSad, EmojiAngry}

func (e Emoji) Valid() bool {
	for _, known := range Emojis {
		if e == known {
			return true
		}
	}
	return false
}

// Reaction is one user's reaction on one target. (UserID, TargetType,
// TargetID) is unique.
type Reaction struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:uk_reaction_triple,priority:1" json:"user"`
	TargetType TargetType `gorm:"type:varchar(16);not null;uniqueIndex:uk_reaction_triple,priority:2;index:idx_reaction_target,priority:1" json:"targetType"`
	TargetID   uint       `gorm:"not null;uniqueIndex:uk_reaction_triple,priority:3;index:idx_reaction_target,priority:2" json:"targetId"`
	Emoji      Emoji      `gorm:"type:varchar(16);not null" json:"emoji"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (Reaction) TableName() string { return "reaction" }

// ReactionSummary is the per-emoji count cached on a reactable entity. It is
// always rebuilt from Reaction rows, never edited in place.
type ReactionSummary struct {
	Like  int64 `gorm:"not null;default:0" json:"like"`
	Love  int64 `gorm:"not null;default:0" json:"love"`
	Laugh int64 `gorm:"not null;default:0" json:"laugh"`
	Sad   int64 `gorm:"not null;default:0" json:"sad"`
	Angry int64 `gorm:"not null;default:0" json:"angry"`
}

// NewReactionSummary fills a summary from grouped counts; kinds missing
// from counts are zero.
func NewReactionSummary(counts map[Emoji]int64) ReactionSummary {
	return ReactionSummary{
		Like:  counts[EmojiLike],
		Love:  counts[EmojiLove],
		Laugh: counts[EmojiLaugh],
		Sad:   counts[EmojiSad],
		Angry: counts[EmojiAngry],
	}
}

// Count returns the count for one emoji.
func (s ReactionSummary) Count(e Emoji) int64 {
	switch e {
	case EmojiLike:
		return s.Like
	case EmojiLove:
		return s.Love
	case EmojiLaugh:
		return s.Laugh
	case EmojiSad:
		return s.Sad
	case EmojiAngry:
		return s.Angry
	}
	return 0
}

// Columns maps the summary onto the reaction_* columns of an embedding table.
func (s ReactionSummary) Columns() map[string]interface{} {
	return map[string]interface{}{
		"reaction_like":  s.Like,
		"reaction_love":  s.Love,
		"reaction_laugh": s.Laugh,
		"reaction_sad":   s.Sad,
		"reaction_angry": s.Angry,
	}
}
