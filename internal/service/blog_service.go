package service

import (
	"context"
	"errors"
	"strings"

	"social-blog/internal/model"
	"social-blog/internal/repository"
	"social-blog/pkg/logger"

	"go.uber.org/zap"
)

// BlogInput carries the editable fields. A nil Images leaves the stored
// images untouched on update.
type BlogInput struct {
	Title   string
	Content string
	Images  *[]string
}

func (in BlogInput) images() []string {
	if in.Images == nil || *in.Images == nil {
		return []string{}
	}
	return *in.Images
}

func (in BlogInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return InvalidInput("title and content are required")
	}
	return nil
}

type BlogService struct {
	store *repository.Store
}

func NewBlogService(store *repository.Store) *BlogService {
	return &BlogService{store: store}
}

// List pages through blogs, newest first. authorID 0 lists every author.
func (s *BlogService) List(ctx context.Context, authorID uint, page repository.Page) ([]model.Blog, int64, error) {
	return s.store.Blogs.List(ctx, authorID, page.Normalize())
}

// Get returns a blog with its author and reviews.
func (s *BlogService) Get(ctx context.Context, id uint) (*model.Blog, error) {
	blog, err := s.store.Blogs.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBlogNotFound
	}
	return blog, err
}

func (s *BlogService) Create(ctx context.Context, authorID uint, in BlogInput) (*model.Blog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	blog := &model.Blog{
		AuthorID: authorID,
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Images:   in.images(),
	}
	if err := s.store.Blogs.Create(ctx, blog); err != nil {
		return nil, err
	}
	logger.Info("blog created", zap.Uint("blog_id", blog.ID), zap.Uint("author_id", authorID))
	return blog, nil
}

// Update rewrites a blog owned by authorID.
func (s *BlogService) Update(ctx context.Context, authorID, id uint, in BlogInput) (*model.Blog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkAuthor(ctx, authorID, id); err != nil {
		return nil, err
	}

	blog := &model.Blog{
		ID:      id,
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
		Images:  in.images(),
	}
	if err := s.store.Blogs.UpdateContent(ctx, blog, in.Images != nil); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes a blog owned by authorID.
func (s *BlogService) Delete(ctx context.Context, authorID, id uint) error {
	if err := s.checkAuthor(ctx, authorID, id); err != nil {
		return err
	}
	if err := s.store.Blogs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBlogNotFound
		}
		return err
	}
	logger.Info("blog deleted", zap.Uint("blog_id", id), zap.Uint("author_id", authorID))
	return nil
}

func (s *BlogService) checkAuthor(ctx context.Context, userID, id uint) error {
	owner, err := s.store.Blogs.FindOwner(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBlogNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrNotAuthor
	}
	return nil
}
