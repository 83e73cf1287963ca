package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	"github.com/Marcella2706/task2-GeekHaven/internal/helper"
	"github.com/Marcella2706/task2-GeekHaven/internal/oauth"
	"github.com/Marcella2706/task2-GeekHaven/internal/queue"
	"github.com/Marcella2706/task2-GeekHaven/internal/repo"
	"github.com/Marcella2706/task2-GeekHaven/internal/security"
	"go.uber.org/zap"
)

func (s *Service) googleEnabled() bool { return s.google != nil }

// GoogleAuth signs in with a Google ID token, creating the account on first use.
// An existing account keeps its role whatever role is requested.
func (s *Service) GoogleAuth(ctx context.Context, idToken, role string) (gs *GoogleSession, err error) {
	defer func() { observe("google", err) }()

	if !s.googleEnabled() {
		return nil, domain.Configuration(MsgGoogleDisabled)
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, domain.Validation(MsgGoogleTokenNeeded)
	}
	r, ok := domain.ParseRole(strings.TrimSpace(role))
	if !ok {
		return nil, domain.Validation(MsgBadRole)
	}

	gu, err := s.google.Verify(ctx, idToken)
	if errors.Is(err, oauth.ErrNotConfigured) {
		return nil, domain.Configuration(MsgGoogleDisabled)
	}
	if err != nil {
		s.logger(ctx).Info("google token rejected", zap.Error(err))
		return nil, domain.Validation(MsgGoogleInvalid)
	}
	return s.googleSignIn(ctx, gu, r)
}

func (s *Service) googleSignIn(ctx context.Context, gu *oauth.GoogleUser, role domain.Role) (*GoogleSession, error) {
	email := normalizeEmail(gu.Email)

	u, err := s.store.FindGoogleUser(ctx, gu.Sub, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return s.googleLogin(ctx, u)
	}

	name := strings.TrimSpace(gu.Name)
	if name == "" {
		name = email
	}
	u = domain.NewUser(name, email, role, domain.ProviderGoogle, s.now())
	u.GoogleID = gu.Sub
	u.Avatar = gu.Picture
	u.IsVerified = true
	u.LastLogin = &u.CreatedAt

	if err := s.store.CreateUser(ctx, u); err != nil {
		if !errors.Is(err, repo.ErrEmailExists) {
			return nil, err
		}
		// Either a concurrent first sign-in won the insert or a local account owns the email.
		existing, ferr := s.store.FindGoogleUser(ctx, gu.Sub, email)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, domain.Conflict(MsgUserExists)
		}
		return s.googleLogin(ctx, existing)
	}

	sess, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.logger(ctx).Info("google account created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email_hash", helper.Hash8(email)),
	)
	s.publish(ctx, queue.KeyUserRegistered, queue.UserRegistered{
		UserID: u.ID.Hex(), Email: u.Email, FullName: u.FullName,
		Role: string(u.Role), Provider: string(u.Provider), At: u.CreatedAt,
	})
	return &GoogleSession{Session: *sess, Created: true}, nil
}

func (s *Service) googleLogin(ctx context.Context, u *domain.User) (*GoogleSession, error) {
	if !u.IsActive {
		return nil, domain.Forbidden(MsgDeactivated)
	}
	sess, err := s.startSession(ctx, u)
	if err != nil {
		return nil, err
	}
	return &GoogleSession{Session: *sess}, nil
}

// GoogleAuthURL starts the redirect flow. The requested role travels in the signed state.
func (s *Service) GoogleAuthURL(role string) (url, state string, err error) {
	if !s.googleEnabled() || !s.google.CodeFlowEnabled() {
		return "", "", domain.Configuration(MsgGoogleDisabled)
	}
	r, ok := domain.ParseRole(strings.TrimSpace(role))
	if !ok {
		return "", "", domain.Validation(MsgBadRole)
	}
	nonce, err := security.NewID()
	if err != nil {
		return "", "", err
	}
	state = s.google.MakeState(string(r), nonce)
	url, err = s.google.AuthURL(state)
	if err != nil {
		return "", "", err
	}
	return url, state, nil
}

// GoogleCallback finishes the redirect flow and then behaves exactly like GoogleAuth.
func (s *Service) GoogleCallback(ctx context.Context, code, state string) (gs *GoogleSession, err error) {
	defer func() { observe("google_callback", err) }()

	if !s.googleEnabled() || !s.google.CodeFlowEnabled() {
		return nil, domain.Configuration(MsgGoogleDisabled)
	}
	role, err := s.google.VerifyState(state)
	if err != nil {
		return nil, domain.Validation(MsgGoogleState)
	}
	if strings.TrimSpace(code) == "" {
		return nil, domain.Validation(MsgCodeRequired)
	}
	raw, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger(ctx).Info("google code exchange failed", zap.Error(err))
		return nil, domain.Validation(MsgGoogleInvalid)
	}
	gu, err := s.google.Verify(ctx, raw)
	if err != nil {
		s.logger(ctx).Info("google token rejected", zap.Error(err))
		return nil, domain.Validation(MsgGoogleInvalid)
	}
	r, _ := domain.ParseRole(role)
	return s.googleSignIn(ctx, gu, r)
}
