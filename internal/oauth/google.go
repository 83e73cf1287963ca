package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	ggoogle "golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

const stateTTL = 10 * time.Minute

var (
	ErrNotConfigured = errors.New("google oauth not configured")
	ErrInvalidToken  = errors.New("invalid google token")
	ErrBadState      = errors.New("invalid oauth state")
)

type GoogleUser struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleOAuth verifies Google ID tokens and, when a client secret is set, runs the
// authorization-code flow.
type GoogleOAuth struct {
	clientID  string
	validator *idtoken.Validator
	cfg       *oauth2.Config
	stateKey  []byte
	now       func() time.Time
}

// NewGoogle returns nil, nil when clientID is empty so callers can treat Google as disabled.
func NewGoogle(ctx context.Context, clientID, clientSecret, redirectURL, stateSecret string) (*GoogleOAuth, error) {
	if clientID == "" {
		return nil, nil
	}
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("idtoken validator: %w", err)
	}
	g := &GoogleOAuth{
		clientID:  clientID,
		validator: v,
		stateKey:  []byte(stateSecret),
		now:       time.Now,
	}
	if clientSecret != "" && redirectURL != "" {
		g.cfg = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     ggoogle.Endpoint,
		}
	}
	return g, nil
}

func (g *GoogleOAuth) CodeFlowEnabled() bool { return g != nil && g.cfg != nil }

// Verify checks signature, audience, expiry and issuer of a Google ID token.
func (g *GoogleOAuth) Verify(ctx context.Context, rawIDToken string) (*GoogleUser, error) {
	if g == nil {
		return nil, ErrNotConfigured
	}
	p, err := g.validator.Validate(ctx, rawIDToken, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return userFromClaims(p.Subject, p.Claims)
}

func userFromClaims(sub string, claims map[string]interface{}) (*GoogleUser, error) {
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, fmt.Errorf("%w: missing sub or email", ErrInvalidToken)
	}
	u := &GoogleUser{Sub: sub, Email: email}
	u.Name, _ = claims["name"].(string)
	u.Picture, _ = claims["picture"].(string)
	switch v := claims["email_verified"].(type) {
	case bool:
		u.EmailVerified = v
	case string:
		u.EmailVerified = v == "true"
	}
	if u.Name == "" {
		u.Name = strings.SplitN(email, "@", 2)[0]
	}
	return u, nil
}

// MakeState signs "role:nonce:unix" so the callback can trust the requested role.
func (g *GoogleOAuth) MakeState(role, nonce string) string {
	raw := role + ":" + nonce + ":" + strconv.FormatInt(g.now().Unix(), 10)
	return raw + "." + base64.RawURLEncoding.EncodeToString(g.sign(raw))
}

// VerifyState checks the signature and age of state and returns the role it carries.
func (g *GoogleOAuth) VerifyState(state string) (string, error) {
	i := strings.LastIndexByte(state, '.')
	if i < 0 {
		return "", ErrBadState
	}
	raw := state[:i]
	sig, err := base64.RawURLEncoding.DecodeString(state[i+1:])
	if err != nil || !hmac.Equal(g.sign(raw), sig) {
		return "", ErrBadState
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return "", ErrBadState
	}
	issued, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || g.now().Sub(time.Unix(issued, 0)) > stateTTL {
		return "", ErrBadState
	}
	return parts[0], nil
}

func (g *GoogleOAuth) sign(raw string) []byte {
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(raw))
	return mac.Sum(nil)
}

func (g *GoogleOAuth) AuthURL(state string) (string, error) {
	if !g.CodeFlowEnabled() {
		return "", ErrNotConfigured
	}
	return g.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

// Exchange trades an authorization code for tokens and returns the raw ID token.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (string, error) {
	if !g.CodeFlowEnabled() {
		return "", ErrNotConfigured
	}
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", errors.New("no id_token in token response")
	}
	return raw, nil
}
