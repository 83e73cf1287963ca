package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Marcella2706/task2-GeekHaven/internal/auth"
	api "github.com/Marcella2706/task2-GeekHaven/internal/http"
	"github.com/Marcella2706/task2-GeekHaven/internal/repo"
	"github.com/Marcella2706/task2-GeekHaven/internal/security"
)

const testSecret = "http-test-secret"

type testEnv struct {
	T      *testing.T
	Store  *repo.MemoryStore
	Router *gin.Engine
	Now    time.Time
	global *api.RateLimiter
	auth   *api.RateLimiter
}

type envOpts struct {
	devReset  bool
	authMax   int
	globalMax int
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, envOpts{devReset: true, authMax: 1000, globalMax: 1000})
}

func newTestEnvWith(t *testing.T, o envOpts) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repo.NewMemoryStore()
	svc := auth.NewService(store, nil, nil, auth.Options{Secret: testSecret, DevReset: o.devReset}, nil)
	return buildEnv(t, store, svc, o)
}

func buildEnv(t *testing.T, store *repo.MemoryStore, svc *auth.Service, o envOpts) *testEnv {
	t.Helper()
	e := &testEnv{T: t, Store: store, Now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return e.Now }

	counter := api.NewMemoryCounter()
	counter.Now = clock
	e.global = api.NewRateLimiter("global", o.globalMax, 15*time.Minute, api.MsgGlobalLimit, counter)
	e.global.Now = clock
	e.auth = api.NewRateLimiter("auth", o.authMax, 15*time.Minute, api.MsgAuthLimit, counter)
	e.auth.Now = clock

	h := api.NewHandler(svc, store)
	e.Router = api.NewRouter(h, api.RouterConfig{Global: e.global, Auth: e.auth})
	return e
}

// do sends a request and checks that the response carries a valid signature.
func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	e.T.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	sig := w.Header().Get(security.SignatureHeader)
	if !security.VerifySignature(testSecret, w.Body.Bytes(), sig) {
		e.T.Fatalf("%s %s: bad signature %q for body %s", method, path, sig, w.Body.String())
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return m
}

func expect(t *testing.T, w *httptest.ResponseRecorder, code int, msg string) map[string]any {
	t.Helper()
	if w.Code != code {
		t.Fatalf("want %d, got %d: %s", code, w.Code, w.Body.String())
	}
	m := decode(t, w)
	if msg != "" && m["message"] != msg {
		t.Fatalf("want message %q, got %v", msg, m["message"])
	}
	return m
}

// registerUser returns the token and user id of a fresh account.
func (e *testEnv) registerUser(email, role string) (string, string) {
	e.T.Helper()
	w := e.do(http.MethodPost, "/api/auth/register",
		`{"fullName":"Test User","email":"`+email+`","password":"secret1","role":"`+role+`"}`, "")
	m := expect(e.T, w, http.StatusCreated, "User registered successfully")
	return m["token"].(string), m["user"].(map[string]any)["id"].(string)
}
