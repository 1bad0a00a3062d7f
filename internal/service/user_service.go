package service

import (
	"context"
	"errors"
	"strings"

	"social-blog/internal/model"
	"social-blog/internal/repository"
	"social-blog/pkg/jwt"
	"social-blog/pkg/logger"
	"social-blog/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Name      string
	Email     string
	AvatarURL string
	Password  string
}

// UpdateProfileInput holds the optional profile changes; nil fields are
// left alone.
type UpdateProfileInput struct {
	Name      *string
	AvatarURL *string
	Password  *string
}

// UserProfile is the current user with the number of accepted friends.
type UserProfile struct {
	model.User
	FriendCount int64 `json:"friendCount"`
}

type UserService struct {
	store       *repository.Store
	jwtService  *jwt.JWTService
	mailer      Mailer
	frontendURL string
}

// NewUserService wires the service. mailer may be nil.
func NewUserService(store *repository.Store, jwtService *jwt.JWTService, mailer Mailer, frontendURL string) *UserService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &UserService{
		store:       store,
		jwtService:  jwtService,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Register creates an unverified account, mails its verification link and
// returns an access token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, "", InvalidInput("name, email and password are required")
	}

	if _, err := s.store.Users.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Name:                  in.Name,
		Email:                 in.Email,
		AvatarURL:             in.AvatarURL,
		PasswordHash:          hash,
		EmailVerificationCode: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	link := s.frontendURL + "/verify/" + user.EmailVerificationCode
	if err := s.mailer.SendVerification(ctx, user, link); err != nil {
		// the account exists either way; the user can ask for a new link
		logger.Warn("send verification email failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	logger.Info("user registered", zap.Uint("user_id", user.ID))
	return user, token, nil
}

// Login checks email and password. Unknown emails and bad passwords get
// the same error.
func (s *UserService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return nil, "", InvalidInput("email and password are required")
	}

	u, err := s.store.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrWrongPassword
	}
	if err != nil {
		return nil, "", err
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", ErrWrongPassword
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// VerifyEmail marks the account holding code as verified and signs it in.
func (s *UserService) VerifyEmail(ctx context.Context, code string) (*model.User, string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, "", ErrInvalidCode
	}
	u, err := s.store.Users.GetByVerificationCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCode
	}
	if err != nil {
		return nil, "", err
	}

	err = s.store.Users.Updates(ctx, u.ID, map[string]interface{}{
		"email_verified":          true,
		"email_verification_code": "",
	})
	if err != nil {
		return nil, "", err
	}
	u.EmailVerified = true
	u.EmailVerificationCode = ""

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	logger.Info("email verified", zap.Uint("user_id", u.ID))
	return u, token, nil
}

// GetCurrentUser loads the caller with a friend count computed on read.
func (s *UserService) GetCurrentUser(ctx context.Context, userID uint) (*UserProfile, error) {
	u, err := s.store.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	count, err := s.store.Friendships.CountFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserProfile{User: *u, FriendCount: count}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*model.User, error) {
	fields := make(map[string]interface{})
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, InvalidInput("name cannot be empty")
		}
		fields["name"] = name
	}
	if in.AvatarURL != nil {
		fields["avatar_url"] = strings.TrimSpace(*in.AvatarURL)
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, InvalidInput("password cannot be empty")
		}
		hash, err := password.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}

	if _, err := s.store.Users.GetByID(ctx, userID); errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.store.Users.Updates(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.store.Users.GetByID(ctx, userID)
}

// ListUsers pages through users matching name and attaches the viewer's
// friendship record with each of them, if any.
func (s *UserService) ListUsers(ctx context.Context, viewerID uint, name string, page repository.Page) ([]UserWithFriendship, int64, error) {
	users, total, err := s.store.Users.List(ctx, strings.TrimSpace(name), page.Normalize())
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	relations, err := s.store.Friendships.FindForUser(ctx, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]UserWithFriendship, 0, len(users))
	for _, u := range users {
		entry := UserWithFriendship{User: u}
		if f, ok := relations[u.ID]; ok && u.ID != viewerID {
			f := f
			entry.Friendship = &f
		}
		result = append(result, entry)
	}
	return result, total, nil
}

func (s *UserService) issueToken(u *model.User) (string, error) {
	return s.jwtService.GenerateToken(u.ID, map[string]interface{}{"username": u.Name})
}
