// Package auth implements account registration, sign-in, password reset and profile
// maintenance on top of a user store. Handlers translate its *domain.Error values into
// HTTP responses.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	applog "github.com/Marcella2706/task2-GeekHaven/internal/log"
	"github.com/Marcella2706/task2-GeekHaven/internal/metrics"
	"github.com/Marcella2706/task2-GeekHaven/internal/oauth"
	"github.com/Marcella2706/task2-GeekHaven/internal/queue"
	"github.com/Marcella2706/task2-GeekHaven/internal/repo"
	"github.com/Marcella2706/task2-GeekHaven/internal/security"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Client-visible messages.
const (
	MsgRegisterRequired  = "fullName, email and password are required"
	MsgUserExists        = "User already exists with this email"
	MsgPasswordTooShort  = "Password must be at least 6 characters long"
	MsgPasswordTooLong   = "Password must be at most 72 bytes long"
	MsgBadRole           = "Role must be buyer or seller"
	MsgLoginRequired     = "Email and password are required"
	MsgUserNotFound      = "User not found"
	MsgDeactivated       = "Account has been deactivated"
	MsgInvalidCreds      = "Invalid credentials"
	MsgGoogleDisabled    = "Google authentication not configured"
	MsgGoogleTokenNeeded = "Google ID token is required"
	MsgGoogleInvalid     = "Invalid Google token"
	MsgGoogleState       = "Invalid OAuth state"
	MsgCodeRequired      = "Authorization code is required"
	MsgNotFoundInactive  = "User not found or inactive"
	MsgEmailRequired     = "Email is required"
	MsgResetRequired     = "resetToken and newPassword are required"
	MsgInvalidReset      = "Invalid reset token"
	MsgFullNameEmpty     = "fullName cannot be empty"
	MsgSellerFieldsOnly  = "sellerInfo can only be updated by sellers"
	MsgNotSeller         = "Seller profile not found"
	MsgNoToken           = "Not authorized, no token"
	MsgTokenFailed       = "Not authorized, token failed"
	MsgSellersOnly       = "Access denied, sellers only"
)

// UserStore is implemented by repo.Store and repo.MemoryStore.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	FindLocalUser(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindGoogleUser(ctx context.Context, googleID, email string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	SaveProfile(ctx context.Context, u *domain.User) error
	CreateResetToken(ctx context.Context, rt repo.ResetToken) error
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) (*repo.ResetToken, error)
}

// GoogleProvider is satisfied by *oauth.GoogleOAuth.
type GoogleProvider interface {
	Verify(ctx context.Context, rawIDToken string) (*oauth.GoogleUser, error)
	CodeFlowEnabled() bool
	MakeState(role, nonce string) string
	VerifyState(state string) (string, error)
	AuthURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (string, error)
}

type Options struct {
	Secret   string
	TokenTTL time.Duration
	DevReset bool // return predictable reset tokens in-band instead of mailing single-use ones
	ResetTTL time.Duration
	Exchange string
}

type Service struct {
	store  UserStore
	google GoogleProvider
	pub    queue.Publisher
	opts   Options
	log    *zap.Logger
	now    func() time.Time
}

// NewService wires the account service. google may be nil when Google sign-in is disabled.
func NewService(store UserStore, google GoogleProvider, pub queue.Publisher, opts Options, logger *zap.Logger) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = security.TTLWeek
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	if opts.Exchange == "" {
		opts.Exchange = queue.DefaultExchange
	}
	if pub == nil {
		pub = queue.NewNoop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		google: google,
		pub:    pub,
		opts:   opts,
		log:    logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Session is a freshly issued token and the redacted account it belongs to.
type Session struct {
	Token string
	User  domain.UserView
}

// GoogleSession tells a Google sign-in apart from a Google sign-up.
type GoogleSession struct {
	Session
	Created bool
}

func (s *Service) Secret() string { return s.opts.Secret }

// Authenticate validates a bearer token. Any failure is Unauthorized.
func (s *Service) Authenticate(token string) (*security.Claims, error) {
	c, err := security.ParseAccess(s.opts.Secret, token)
	if err != nil {
		return nil, domain.Unauthorized(MsgTokenFailed)
	}
	return c, nil
}

func (s *Service) issue(u *domain.User) (*Session, error) {
	tok, err := security.MakeAccess(s.opts.Secret, u.ID.Hex(), string(u.Role), s.opts.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u.View()}, nil
}

// touch stamps last-login on the stored record and on u.
func (s *Service) touch(ctx context.Context, u *domain.User) error {
	at := s.now()
	if err := s.store.TouchLastLogin(ctx, u.ID, at); err != nil {
		return err
	}
	u.LastLogin = &at
	return nil
}

func (s *Service) publish(ctx context.Context, key string, event any) {
	reqID := RequestID(ctx)
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.pub.Publish(ctx, s.opts.Exchange, key, event, reqID); err != nil {
			s.logger(ctx).Warn("publish event failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (s *Service) logger(ctx context.Context) *zap.Logger {
	return applog.WithDD(ctx, s.log, zap.String("request_id", RequestID(ctx)))
}

// observe records the outcome of op. Domain errors count as rejected, anything else as error.
func observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.As(err, new(*domain.Error)):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	metrics.AuthOps.WithLabelValues(op, outcome).Inc()
}

// normalizeEmail only trims. Emails are matched exactly as stored, case included.
func normalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}
