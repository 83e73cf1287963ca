package security_test

import (
	"strings"
	"testing"

	"github.com/Marcella2706/task2-GeekHaven/internal/security"
)

func TestPassword(t *testing.T) {
	h, err := security.HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if h == "secret1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !security.CheckPassword(h, "secret1") {
		t.Fatal("correct password rejected")
	}
	if security.CheckPassword(h, "secret2") {
		t.Fatal("wrong password accepted")
	}
	if security.CheckPassword("", "secret1") {
		t.Fatal("empty hash must never match")
	}
}

func TestPasswordLength(t *testing.T) {
	cases := []struct {
		pw          string
		short, long bool
	}{
		{"12345", true, false},
		{"123456", false, false},
		{"ééééé", true, false},
		{"éééééé", false, false},
		{strings.Repeat("a", 72), false, false},
		{strings.Repeat("a", 73), false, true},
		{strings.Repeat("é", 37), false, true},
	}
	for _, tc := range cases {
		if got := security.PasswordTooShort(tc.pw); got != tc.short {
			t.Errorf("PasswordTooShort(%q) = %v", tc.pw, got)
		}
		if got := security.PasswordTooLong(tc.pw); got != tc.long {
			t.Errorf("PasswordTooLong(%q) = %v", tc.pw, got)
		}
	}

	// the longest accepted password still hashes
	if _, err := security.HashPassword(strings.Repeat("a", security.MaxPasswordBytes)); err != nil {
		t.Fatal(err)
	}
}

func TestSignature(t *testing.T) {
	body := []byte(`{"message":"Login successful"}`)
	sig := security.Sign(secret, body)
	if len(sig) != 64 {
		t.Fatalf("want 64 hex chars, got %d", len(sig))
	}
	if !security.VerifySignature(secret, body, sig) {
		t.Fatal("signature did not verify")
	}
	if security.VerifySignature(secret, []byte(`{"message":"Login successful" }`), sig) {
		t.Fatal("signature must cover exact bytes")
	}
	if security.VerifySignature("other", body, sig) {
		t.Fatal("signature verified under the wrong secret")
	}
	if security.VerifySignature(secret, body, "zz") {
		t.Fatal("non-hex signature verified")
	}
}

func TestDevResetToken(t *testing.T) {
	tok := security.MakeDevResetToken("64b7f0c2a1b2c3d4e5f60718")
	if tok != "dev-reset-token-64b7f0c2a1b2c3d4e5f60718" {
		t.Fatalf("token=%q", tok)
	}
	id, ok := security.ParseDevResetToken(tok)
	if !ok || id != "64b7f0c2a1b2c3d4e5f60718" {
		t.Fatalf("parse: %q %v", id, ok)
	}
	if _, ok := security.ParseDevResetToken("reset-64b7f0c2"); ok {
		t.Fatal("missing prefix accepted")
	}
}

func TestOpaqueTokens(t *testing.T) {
	a, err := security.NewOpaqueToken()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := security.NewOpaqueToken()
	if a == b || len(a) < 40 {
		t.Fatalf("weak tokens: %q %q", a, b)
	}
	if security.HashToken(a) == a || security.HashToken(a) != security.HashToken(a) {
		t.Fatal("hash must be deterministic and differ from input")
	}
}
