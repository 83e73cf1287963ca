package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. TTLWeek is the default for every session token.
const (
	TTLWeek     = 7 * 24 * time.Hour
	TTLDay      = 24 * time.Hour
	TTLHalfDay  = 12 * time.Hour
	TTLQuarter  = 6 * time.Hour
	signingAlgo = "HS256"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func MakeAccess(secret, uid, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}
	jti, err := NewID()
	if err != nil {
		return "", err
	}
	now := time.Now()
	c := Claims{
		UserID: uid, Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   uid,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// ParseAccess verifies signature, algorithm and expiry. Every failure collapses to ErrInvalidToken.
func ParseAccess(secret, token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{signingAlgo}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UserID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
