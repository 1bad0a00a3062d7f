package repository

import (
	"context"
	"time"

	"social-blog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReactionRepository struct {
	orm *gorm.DB
}

func NewReactionRepository(orm *gorm.DB) *ReactionRepository {
	return &ReactionRepository{orm: orm}
}

// FindByTriple returns userID's reaction on the target.
func (r *ReactionRepository) FindByTriple(ctx context.Context, userID uint, targetType model.TargetType, targetID uint) (*model.Reaction, error) {
	var reaction model.Reaction
	err := r.orm.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Take(&reaction).Error
	if err != nil {
		return nil, translate("find reaction", err)
	}
	return &reaction, nil
}

// CreateIfAbsent inserts reaction unless the user already reacted to the
// target. It reports whether the insert happened.
func (r *ReactionRepository) CreateIfAbsent(ctx context.Context, reaction *model.Reaction) (bool, error) {
	res := r.orm.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"}},
			DoNothing: true,
		}).
		Create(reaction)
	if res.Error != nil {
		return false, translate("create reaction", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateEmoji changes prev's emoji if it still holds prev.Emoji.
func (r *ReactionRepository) UpdateEmoji(ctx context.Context, prev *model.Reaction, emoji model.Emoji) (bool, error) {
	res := r.orm.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("id = ? AND emoji = ?", prev.ID, prev.Emoji).
		Updates(map[string]interface{}{"emoji": emoji, "updated_at": time.Now()})
	if res.Error != nil {
		return false, translate("update reaction", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Delete removes prev if it still holds prev.Emoji.
func (r *ReactionRepository) Delete(ctx context.Context, prev *model.Reaction) (bool, error) {
	res := r.orm.WithContext(ctx).
		Where("id = ? AND emoji = ?", prev.ID, prev.Emoji).
		Delete(&model.Reaction{})
	if res.Error != nil {
		return false, translate("delete reaction", res.Error)
	}
	return res.RowsAffected == 1, nil
}

type emojiCount struct {
	Emoji model.Emoji
	Total int64
}

// CountByEmoji groups the live reactions on a target by emoji.
func (r *ReactionRepository) CountByEmoji(ctx context.Context, targetType model.TargetType, targetID uint) (map[model.Emoji]int64, error) {
	var rows []emojiCount
	err := r.orm.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("emoji, COUNT(*) AS total").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Group("emoji").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("count reactions", err)
	}

	counts := make(map[model.Emoji]int64, len(rows))
	for _, row := range rows {
		counts[row.Emoji] = row.Total
	}
	return counts, nil
}
