package security_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Marcella2706/task2-GeekHaven/internal/security"
	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret"

func TestHS256_RoundTrip(t *testing.T) {
	tok, err := security.MakeAccess(secret, "u1", "seller", security.TTLWeek)
	if err != nil {
		t.Fatal(err)
	}
	c, err := security.ParseAccess(secret, tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UserID != "u1" || c.Role != "seller" {
		t.Fatalf("claims mismatch: %#v", c)
	}
	if c.ID == "" {
		t.Fatal("expected jti")
	}
	if got := c.ExpiresAt.Sub(c.IssuedAt.Time); got != security.TTLWeek {
		t.Fatalf("lifetime=%v", got)
	}
}

func TestHS256_TwoTokensDiffer(t *testing.T) {
	a, _ := security.MakeAccess(secret, "u1", "buyer", time.Hour)
	b, _ := security.MakeAccess(secret, "u1", "buyer", time.Hour)
	if a == b {
		t.Fatal("tokens issued in the same second must still differ")
	}
}

func TestHS256_Rejects(t *testing.T) {
	good, err := security.MakeAccess(secret, "u1", "buyer", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, _ := security.MakeAccess(secret, "u1", "buyer", -time.Minute)

	parts := strings.Split(good, ".")
	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, security.Claims{
		UserID: "u1", Role: "seller",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SigningString()
	tampered := strings.Split(forged, ".")[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, security.Claims{
		UserID: "u1", Role: "seller",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, security.Claims{UserID: "u1"}).SignedString([]byte(secret))

	cases := map[string]struct{ secret, token string }{
		"wrong secret":   {"other", good},
		"expired":        {secret, expired},
		"tampered claim": {secret, tampered},
		"alg none":       {secret, none},
		"no exp":         {secret, noExp},
		"garbage":        {secret, "not.a.jwt"},
		"empty":          {secret, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := security.ParseAccess(tc.secret, tc.token); err == nil {
				t.Fatal("expected rejection")
			}
		})
	}
}

func TestMakeAccess_EmptySecret(t *testing.T) {
	if _, err := security.MakeAccess("", "u1", "buyer", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
