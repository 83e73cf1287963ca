package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Marcella2706/task2-GeekHaven/internal/auth"
	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	"github.com/Marcella2706/task2-GeekHaven/internal/oauth"
	"github.com/Marcella2706/task2-GeekHaven/internal/repo"
)

const testSecret = "unit-test-secret"

type published struct {
	key   string
	event any
}

type recordingPub struct {
	mu     sync.Mutex
	events []published
	ch     chan struct{}
}

func newRecordingPub() *recordingPub { return &recordingPub{ch: make(chan struct{}, 64)} }

func (p *recordingPub) Publish(_ context.Context, _, key string, event any, _ string) error {
	p.mu.Lock()
	p.events = append(p.events, published{key: key, event: event})
	p.mu.Unlock()
	select {
	case p.ch <- struct{}{}:
	default:
	}
	return nil
}

func (p *recordingPub) Close() error { return nil }

// wait blocks until n events have been published in total.
func (p *recordingPub) wait(t *testing.T, n int) []published {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		p.mu.Lock()
		got := len(p.events)
		p.mu.Unlock()
		if got >= n {
			break
		}
		select {
		case <-p.ch:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d", n, got)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

// stubGoogle accepts any token present in users.
type stubGoogle struct {
	users    map[string]*oauth.GoogleUser
	codeFlow bool
	codes    map[string]string // code -> id token
}

func (g *stubGoogle) Verify(_ context.Context, raw string) (*oauth.GoogleUser, error) {
	if u, ok := g.users[raw]; ok {
		return u, nil
	}
	return nil, oauth.ErrInvalidToken
}

func (g *stubGoogle) CodeFlowEnabled() bool { return g.codeFlow }

func (g *stubGoogle) MakeState(role, nonce string) string { return role + ":" + nonce + ".sig" }

func (g *stubGoogle) VerifyState(state string) (string, error) {
	for _, r := range []string{"buyer", "seller"} {
		if len(state) > len(r) && state[:len(r)+1] == r+":" {
			return r, nil
		}
	}
	return "", oauth.ErrBadState
}

func (g *stubGoogle) AuthURL(state string) (string, error) {
	return "https://accounts.example/auth?state=" + state, nil
}

func (g *stubGoogle) Exchange(_ context.Context, code string) (string, error) {
	if tok, ok := g.codes[code]; ok {
		return tok, nil
	}
	return "", errors.New("bad code")
}

type env struct {
	svc    *auth.Service
	store  *repo.MemoryStore
	pub    *recordingPub
	google *stubGoogle
}

func newEnv(t *testing.T, devReset bool) *env {
	t.Helper()
	store := repo.NewMemoryStore()
	pub := newRecordingPub()
	g := &stubGoogle{
		users: map[string]*oauth.GoogleUser{
			"tok-gina": {Sub: "sub-gina", Email: " gina@example.com", Name: "Gina", Picture: "https://img/gina.png"},
			"tok-ann":  {Sub: "sub-ann", Email: "ann@x.com", Name: "Ann G"},
		},
		codeFlow: true,
		codes:    map[string]string{"code-gina": "tok-gina"},
	}
	svc := auth.NewService(store, g, pub, auth.Options{
		Secret:   testSecret,
		DevReset: devReset,
		ResetTTL: time.Hour,
	}, nil)
	return &env{svc: svc, store: store, pub: pub, google: g}
}

func wantKind(t *testing.T, err error, kind domain.Kind, msg string) {
	t.Helper()
	de, ok := domain.AsError(err)
	if !ok {
		t.Fatalf("want domain error %q, got %v", msg, err)
	}
	if de.Kind != kind || de.Message != msg {
		t.Fatalf("want kind=%d %q, got kind=%d %q", kind, msg, de.Kind, de.Message)
	}
}

func register(t *testing.T, e *env, email, password, role string) *auth.Session {
	t.Helper()
	s, err := e.svc.Register(context.Background(), auth.RegisterInput{
		FullName: "Test User", Email: email, Password: password, Role: role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return s
}
