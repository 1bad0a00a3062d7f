package service

import (
	"context"
	"errors"
	"strings"

	"social-blog/internal/model"
	"social-blog/internal/repository"
)

type ReviewService struct {
	store *repository.Store
}

func NewReviewService(store *repository.Store) *ReviewService {
	return &ReviewService{store: store}
}

// Create adds a review by userID on an existing blog.
func (s *ReviewService) Create(ctx context.Context, userID, blogID uint, content string) (*model.Review, error) {
	if strings.TrimSpace(content) == "" {
		return nil, InvalidInput("content is required")
	}
	if _, err := s.store.Blogs.FindOwner(ctx, blogID); errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBlogNotFound
	} else if err != nil {
		return nil, err
	}

	review := &model.Review{BlogID: blogID, UserID: userID, Content: content}
	if err := s.store.Reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Update changes the content of a review written by userID.
func (s *ReviewService) Update(ctx context.Context, userID, id uint, content string) (*model.Review, error) {
	if strings.TrimSpace(content) == "" {
		return nil, InvalidInput("content is required")
	}
	if err := s.checkAuthor(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.store.Reviews.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	review, err := s.store.Reviews.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	return review, err
}

// Delete soft-deletes a review written by userID.
func (s *ReviewService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.checkAuthor(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.Reviews.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

func (s *ReviewService) checkAuthor(ctx context.Context, userID, id uint) error {
	owner, err := s.store.Reviews.FindOwner(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrReviewNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrNotAuthor
	}
	return nil
}
