package service

import (
	"context"

	"social-blog/internal/model"
	"social-blog/pkg/logger"

	"go.uber.org/zap"
)

// Mailer delivers account emails.
type Mailer interface {
	SendVerification(ctx context.Context, user *model.User, link string) error
}

// LogMailer writes verification links to the log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendVerification(_ context.Context, user *model.User, link string) error {
	logger.Info("verification email",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("link", link),
	)
	return nil
}
