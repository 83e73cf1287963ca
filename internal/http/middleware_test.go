package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	api "github.com/Marcella2706/task2-GeekHaven/internal/http"
	"github.com/Marcella2706/task2-GeekHaven/internal/security"
)

func signedEngine(routes func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.SignResponse(testSecret))
	routes(r)
	return r
}

func Test_SignResponse_ExactBytes(t *testing.T) {
	r := signedEngine(func(r *gin.Engine) {
		r.GET("/json", func(c *gin.Context) {
			c.Header("X-Extra", "1")
			c.JSON(http.StatusAccepted, gin.H{"b": 2, "a": "x"})
		})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/json", nil))

	if w.Code != http.StatusAccepted || w.Header().Get("X-Extra") != "1" {
		t.Fatalf("status or headers lost: %d %v", w.Code, w.Header())
	}
	want := security.Sign(testSecret, []byte(`{"a":"x","b":2}`))
	if got := w.Header().Get(security.SignatureHeader); got != want || w.Body.String() != `{"a":"x","b":2}` {
		t.Fatalf("sig=%s body=%s", got, w.Body.String())
	}

	// a single changed byte invalidates it
	if security.VerifySignature(testSecret, []byte(`{"a":"y","b":2}`), want) {
		t.Fatal("signature accepted a different body")
	}
}

func Test_SignResponse_Panic(t *testing.T) {
	r := signedEngine(func(r *gin.Engine) {
		r.GET("/boom", func(c *gin.Context) { panic("boom") })
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500 after panic, got %d", w.Code)
	}
	want := `{"message":"` + api.MsgInternal + `"}`
	if w.Body.String() != want {
		t.Fatalf("body=%s", w.Body.String())
	}
	if !security.VerifySignature(testSecret, w.Body.Bytes(), w.Header().Get(security.SignatureHeader)) {
		t.Fatalf("panic response not signed: %v", w.Header())
	}
}

func Test_SignResponse_PanicAfterPartialWrite(t *testing.T) {
	r := signedEngine(func(r *gin.Engine) {
		r.GET("/half", func(c *gin.Context) {
			_, _ = c.Writer.WriteString(`{"partial":`)
			panic("half way")
		})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/half", nil))
	if w.Code != http.StatusInternalServerError || w.Body.String() != `{"message":"`+api.MsgInternal+`"}` {
		t.Fatalf("partial body leaked: %d %s", w.Code, w.Body.String())
	}
	if !security.VerifySignature(testSecret, w.Body.Bytes(), w.Header().Get(security.SignatureHeader)) {
		t.Fatal("panic response not signed")
	}
}

func Test_RequestID_Echo(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("request id not echoed: %v", w.Header())
	}
}
