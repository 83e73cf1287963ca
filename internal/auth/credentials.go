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
	"go.uber.org/zap"
)

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     string
	Phone    string
	Location string
}

// Register creates a local account. The unique email index decides races between
// concurrent registrations; the loser gets a conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (sess *Session, err error) {
	defer func() { observe("register", err) }()

	fullName := strings.TrimSpace(in.FullName)
	email := normalizeEmail(in.Email)
	if fullName == "" || email == "" || in.Password == "" {
		return nil, domain.Validation(MsgRegisterRequired)
	}
	if security.PasswordTooShort(in.Password) {
		return nil, domain.Validation(MsgPasswordTooShort)
	}
	if security.PasswordTooLong(in.Password) {
		return nil, domain.Validation(MsgPasswordTooLong)
	}
	role, ok := domain.ParseRole(strings.TrimSpace(in.Role))
	if !ok {
		return nil, domain.Validation(MsgBadRole)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := domain.NewUser(fullName, email, role, domain.ProviderLocal, s.now())
	u.PasswordHash = hash
	u.Phone = strings.TrimSpace(in.Phone)
	u.Location = strings.TrimSpace(in.Location)
	u.LastLogin = &u.CreatedAt

	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailExists) {
			return nil, domain.Conflict(MsgUserExists)
		}
		return nil, err
	}

	sess, err = s.issue(u)
	if err != nil {
		return nil, err
	}
	s.logger(ctx).Info("user registered",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email_hash", helper.Hash8(email)),
		zap.String("role", string(role)),
	)
	s.publish(ctx, queue.KeyUserRegistered, queue.UserRegistered{
		UserID: u.ID.Hex(), Email: u.Email, FullName: u.FullName,
		Role: string(u.Role), Provider: string(u.Provider), At: u.CreatedAt,
	})
	return sess, nil
}

// Login authenticates a local account by email and password.
func (s *Service) Login(ctx context.Context, email, password string) (sess *Session, err error) {
	defer func() { observe("login", err) }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validation(MsgLoginRequired)
	}
	u, err := s.store.FindLocalUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound(MsgUserNotFound)
	}
	if !u.IsActive {
		return nil, domain.Forbidden(MsgDeactivated)
	}
	if !security.CheckPassword(u.PasswordHash, password) {
		s.logger(ctx).Info("login rejected", zap.String("user_id", u.ID.Hex()))
		return nil, domain.Validation(MsgInvalidCreds)
	}
	return s.startSession(ctx, u)
}

// startSession stamps last-login, issues a token and announces the login.
func (s *Service) startSession(ctx context.Context, u *domain.User) (*Session, error) {
	if err := s.touch(ctx, u); err != nil {
		return nil, err
	}
	sess, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.KeyUserLoggedIn, queue.UserLoggedIn{
		UserID: u.ID.Hex(), Email: u.Email, Provider: string(u.Provider), At: *u.LastLogin,
	})
	return sess, nil
}

// Refresh re-issues a token for userID while the account exists and is active.
func (s *Service) Refresh(ctx context.Context, userID string) (sess *Session, err error) {
	defer func() { observe("refresh", err) }()

	u, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *Service) activeUser(ctx context.Context, userID string) (*domain.User, error) {
	id, ok := parseID(userID)
	if !ok {
		return nil, domain.NotFound(MsgNotFoundInactive)
	}
	u, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, domain.NotFound(MsgNotFoundInactive)
	}
	return u, nil
}
