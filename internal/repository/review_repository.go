package repository

import (
	"context"

	"social-blog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	orm *gorm.DB
}

func NewReviewRepository(orm *gorm.DB) *ReviewRepository {
	return &ReviewRepository{orm: orm}
}

func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	return translate("create review", r.orm.WithContext(ctx).Create(review).Error)
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	if err := r.orm.WithContext(ctx).Preload("User").First(&review, id).Error; err != nil {
		return nil, translate("get review", err)
	}
	return &review, nil
}

func (r *ReviewRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	err := r.orm.WithContext(ctx).
		Model(&model.Review{}).
		Where("id = ?", id).
		Update("content", content).Error
	return translate("update review", err)
}

// Delete soft-deletes review id.
func (r *ReviewRepository) Delete(ctx context.Context, id uint) error {
	res := r.orm.WithContext(ctx).Delete(&model.Review{}, id)
	if res.Error != nil {
		return translate("delete review", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) FindOwner(ctx context.Context, id uint) (uint, error) {
	var review model.Review
	if err := r.orm.WithContext(ctx).Select("id", "user_id").Take(&review, id).Error; err != nil {
		return 0, translate("find review owner", err)
	}
	return review.UserID, nil
}

// LockOwner is FindOwner holding the row lock until the transaction ends.
func (r *ReviewRepository) LockOwner(ctx context.Context, id uint) (uint, error) {
	var review model.Review
	err := r.orm.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Select("id", "user_id").
		Take(&review, id).Error
	if err != nil {
		return 0, translate("lock review", err)
	}
	return review.UserID, nil
}

func (r *ReviewRepository) SaveReactionSummary(ctx context.Context, id uint, summary model.ReactionSummary) error {
	err := r.orm.WithContext(ctx).
		Model(&model.Review{}).
		Where("id = ?", id).
		UpdateColumns(summary.Columns()).Error
	return translate("save review reactions", err)
}
