package repository

import (
	"context"

	"social-blog/internal/model"

	"gorm.io/gorm"
)

// ReactableStore is what the reaction aggregator needs from an entity that
// can be reacted to.
type ReactableStore interface {
	// FindOwner returns the author of the target, or ErrNotFound.
	FindOwner(ctx context.Context, id uint) (uint, error)
	// LockOwner is FindOwner taking a row lock on the target, so toggles on
	// one target serialise in the database even without the key lock.
	// sqlite drops the clause; its single connection already serialises.
	LockOwner(ctx context.Context, id uint) (uint, error)
	// SaveReactionSummary overwrites the cached counts on the target.
	SaveReactionSummary(ctx context.Context, id uint, summary model.ReactionSummary) error
}

var reactables = map[model.TargetType]func(*Store) ReactableStore{
	model.TargetBlog:   func(s *Store) ReactableStore { return s.Blogs },
	model.TargetReview: func(s *Store) ReactableStore { return s.Reviews },
}

// Store bundles the repositories over one gorm handle, which is either the
// pool or an open transaction.
type Store struct {
	db *gorm.DB

	Users       *UserRepository
	Friendships *FriendshipRepository
	Reactions   *ReactionRepository
	Blogs       *BlogRepository
	Reviews     *ReviewRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       NewUserRepository(db),
		Friendships: NewFriendshipRepository(db),
		Reactions:   NewReactionRepository(db),
		Blogs:       NewBlogRepository(db),
		Reviews:     NewReviewRepository(db),
	}
}

// Transaction runs fn against a Store bound to one transaction. fn's error
// rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Reactable returns the store for targetType, or false for an unknown type.
func (s *Store) Reactable(targetType model.TargetType) (ReactableStore, bool) {
	build, ok := reactables[targetType]
	if !ok {
		return nil, false
	}
	return build(s), true
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}
