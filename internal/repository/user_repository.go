package repository

import (
	"context"

	"social-blog/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

// Create inserts user. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate("create user", r.orm.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate("get user by email", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByVerificationCode(ctx context.Context, code string) (*model.User, error) {
	var u model.User
	err := r.orm.WithContext(ctx).
		Where("email_verification_code = ? AND email_verified = ?", code, false).
		First(&u).Error
	if err != nil {
		return nil, translate("get user by verification code", err)
	}
	return &u, nil
}

// Exists reports whether a live user has id.
func (r *UserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.orm.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, translate("count user", err)
	}
	return count > 0, nil
}

// FindByIDs returns the live users among ids keyed by id.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]model.User, error) {
	users := make(map[uint]model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	var list []model.User
	if err := r.orm.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate("find users", err)
	}
	for _, u := range list {
		users[u.ID] = u
	}
	return users, nil
}

// Updates writes the given columns on user id.
func (r *UserRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.orm.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate("update user", res.Error)
	}
	return nil
}

// List pages through users, optionally filtered by a name substring, in
// id order.
func (r *UserRepository) List(ctx context.Context, name string, page Page) ([]model.User, int64, error) {
	q := r.orm.WithContext(ctx).Model(&model.User{})
	if name != "" {
		q = q.Where("name LIKE ?", "%"+name+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count users", err)
	}

	var users []model.User
	if err := q.Scopes(page.scope).Order("id ASC").Find(&users).Error; err != nil {
		return nil, 0, translate("list users", err)
	}
	return users, total, nil
}
