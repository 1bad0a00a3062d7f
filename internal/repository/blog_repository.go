package repository

import (
	"context"

	"social-blog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlogRepository struct {
	orm *gorm.DB
}

func NewBlogRepository(orm *gorm.DB) *BlogRepository {
	return &BlogRepository{orm: orm}
}

func (r *BlogRepository) Create(ctx context.Context, blog *model.Blog) error {
	return translate("create blog", r.orm.WithContext(ctx).Create(blog).Error)
}

// GetByID loads a blog with its author and reviews.
func (r *BlogRepository) GetByID(ctx context.Context, id uint) (*model.Blog, error) {
	var b model.Blog
	err := r.orm.WithContext(ctx).
		Preload("Author").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Reviews.User").
		First(&b, id).Error
	if err != nil {
		return nil, translate("get blog", err)
	}
	return &b, nil
}

// List pages through blogs, newest first. authorID 0 means every author.
func (r *BlogRepository) List(ctx context.Context, authorID uint, page Page) ([]model.Blog, int64, error) {
	q := r.orm.WithContext(ctx).Model(&model.Blog{})
	if authorID != 0 {
		q = q.Where("author_id = ?", authorID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count blogs", err)
	}

	var blogs []model.Blog
	if err := q.Scopes(page.scope).Preload("Author").Order("created_at DESC, id DESC").Find(&blogs).Error; err != nil {
		return nil, 0, translate("list blogs", err)
	}
	return blogs, total, nil
}

// UpdateContent rewrites the title and content of blog, and its images
// only when withImages is set.
func (r *BlogRepository) UpdateContent(ctx context.Context, blog *model.Blog, withImages bool) error {
	columns := []interface{}{"content"}
	if withImages {
		columns = append(columns, "images")
	}
	err := r.orm.WithContext(ctx).
		Model(blog).
		Select("title", columns...).
		Updates(blog).Error
	return translate("update blog", err)
}

// Delete soft-deletes blog id.
func (r *BlogRepository) Delete(ctx context.Context, id uint) error {
	res := r.orm.WithContext(ctx).Delete(&model.Blog{}, id)
	if res.Error != nil {
		return translate("delete blog", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BlogRepository) FindOwner(ctx context.Context, id uint) (uint, error) {
	var b model.Blog
	if err := r.orm.WithContext(ctx).Select("id", "author_id").Take(&b, id).Error; err != nil {
		return 0, translate("find blog owner", err)
	}
	return b.AuthorID, nil
}

// LockOwner is FindOwner holding the row lock until the transaction ends.
func (r *BlogRepository) LockOwner(ctx context.Context, id uint) (uint, error) {
	var b model.Blog
	err := r.orm.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Select("id", "author_id").
		Take(&b, id).Error
	if err != nil {
		return 0, translate("lock blog", err)
	}
	return b.AuthorID, nil
}

func (r *BlogRepository) SaveReactionSummary(ctx context.Context, id uint, summary model.ReactionSummary) error {
	err := r.orm.WithContext(ctx).
		Model(&model.Blog{}).
		Where("id = ?", id).
		UpdateColumns(summary.Columns()).Error
	return translate("save blog reactions", err)
}
