package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	"github.com/Marcella2706/task2-GeekHaven/internal/helper"
	"github.com/Marcella2706/task2-GeekHaven/internal/queue"
	"github.com/Marcella2706/task2-GeekHaven/internal/repo"
	"github.com/Marcella2706/task2-GeekHaven/internal/security"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ForgotPassword starts a reset for a local account. In dev-reset mode the returned token
// is the predictable dev-reset-token-<id>; otherwise it is empty and a single-use token
// is mailed instead.
func (s *Service) ForgotPassword(ctx context.Context, email string) (token string, err error) {
	defer func() { observe("forgot_password", err) }()

	email = normalizeEmail(email)
	if email == "" {
		return "", domain.Validation(MsgEmailRequired)
	}
	u, err := s.store.FindLocalUser(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", domain.NotFound(MsgUserNotFound)
	}

	ev := queue.PasswordResetRequested{
		UserID: u.ID.Hex(), Email: u.Email, FullName: u.FullName, At: s.now(),
	}
	if s.opts.DevReset {
		token = security.MakeDevResetToken(u.ID.Hex())
		ev.Token = token
	} else {
		plain, err := security.NewOpaqueToken()
		if err != nil {
			return "", err
		}
		exp := s.now().Add(s.opts.ResetTTL)
		if err := s.store.CreateResetToken(ctx, repo.ResetToken{
			UserID:    u.ID,
			TokenHash: security.HashToken(plain),
			ExpiresAt: exp,
		}); err != nil {
			return "", err
		}
		ev.Token = plain
		ev.ExpiresAt = &exp
	}

	s.logger(ctx).Info("password reset requested",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email_hash", helper.Hash8(email)),
		zap.Bool("dev_token", s.opts.DevReset),
	)
	s.publish(ctx, queue.KeyPasswordReset, ev)
	return token, nil
}

// ResetPassword sets a new password for the account the reset token points at.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	defer func() { observe("reset_password", err) }()

	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return domain.Validation(MsgResetRequired)
	}

	var devID string
	if s.opts.DevReset {
		id, ok := security.ParseDevResetToken(token)
		if !ok {
			return domain.Validation(MsgInvalidReset)
		}
		devID = id
	}
	if security.PasswordTooShort(newPassword) {
		return domain.Validation(MsgPasswordTooShort)
	}
	if security.PasswordTooLong(newPassword) {
		return domain.Validation(MsgPasswordTooLong)
	}

	var uid primitive.ObjectID
	if s.opts.DevReset {
		id, ok := parseID(devID)
		if !ok {
			return domain.NotFound(MsgUserNotFound)
		}
		uid = id
	} else {
		rt, err := s.store.ConsumeResetToken(ctx, security.HashToken(token), s.now())
		if err != nil {
			return err
		}
		if rt == nil {
			return domain.Validation(MsgInvalidReset)
		}
		uid = rt.UserID
	}

	u, err := s.store.FindUserByID(ctx, uid)
	if err != nil {
		return err
	}
	if u == nil || u.Provider != domain.ProviderLocal {
		return domain.NotFound(MsgUserNotFound)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.SetPasswordHash(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.NotFound(MsgUserNotFound)
		}
		return err
	}
	s.logger(ctx).Info("password reset", zap.String("user_id", u.ID.Hex()))
	return nil
}
