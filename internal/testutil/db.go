// Package testutil provides helpers shared by package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"social-blog/config"
	"social-blog/internal/model"
	"social-blog/pkg/db"

	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database in t.TempDir(). It goes through
// db.InitDB so tests exercise the production gorm configuration.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	orm, err := db.InitDB(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(orm, model.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(orm) })
	return orm
}

// CreateUsers inserts n users named user1..userN and returns them in order.
func CreateUsers(t *testing.T, orm *gorm.DB, n int) []model.User {
	t.Helper()

	users := make([]model.User, 0, n)
	for i := 1; i <= n; i++ {
		u := model.User{
			Name:         fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: "x",
		}
		if err := orm.Create(&u).Error; err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}
		users = append(users, u)
	}
	return users
}

// CreateBlog inserts a blog owned by authorID.
func CreateBlog(t *testing.T, orm *gorm.DB, authorID uint) model.Blog {
	t.Helper()

	b := model.Blog{AuthorID: authorID, Title: "title", Content: "content"}
	if err := orm.Create(&b).Error; err != nil {
		t.Fatalf("Failed to create blog: %v", err)
	}
	return b
}

// CreateReview inserts a review on blogID by userID.
func CreateReview(t *testing.T, orm *gorm.DB, blogID, userID uint) model.Review {
	t.Helper()

	r := model.Review{BlogID: blogID, UserID: userID, Content: "review"}
	if err := orm.Create(&r).Error; err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	return r
}
