//go:build integration

package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/Marcella2706/task2-GeekHaven/internal/auth"
	api "github.com/Marcella2706/task2-GeekHaven/internal/http"
	"github.com/Marcella2706/task2-GeekHaven/internal/log"
	"github.com/Marcella2706/task2-GeekHaven/internal/repo"
)

func newMongoRouter(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	mc, err := mongodb.RunContainer(ctx, testcontainers.WithImage("mongo:6"))
	if err != nil {
		t.Fatalf("mongo container: %v", err)
	}
	t.Cleanup(func() { _ = mc.Terminate(context.Background()) })

	uri, err := mc.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("mongo uri: %v", err)
	}
	if _, err := log.Init(false); err != nil {
		t.Fatalf("log init: %v", err)
	}
	store, err := repo.NewStore(ctx, uri, "resellhub_http_test")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	gin.SetMode(gin.TestMode)
	svc := auth.NewService(store, nil, nil, auth.Options{Secret: testSecret}, log.L())
	h := api.NewHandler(svc, store)
	env := &testEnv{T: t}
	env.Router = api.NewRouter(h, api.RouterConfig{})
	return env
}

func Test_Mongo_SecureResetFlow(t *testing.T) {
	env := newMongoRouter(t)
	_, _ = env.registerUser("m@x.com", "seller")

	w := env.do("POST", "/api/auth/register", `{"fullName":"Dup","email":"m@x.com","password":"secret1"}`, "")
	expect(t, w, http.StatusBadRequest, auth.MsgUserExists)

	w = env.do("POST", "/api/auth/register", `{"fullName":"Other","email":"M@X.com","password":"secret1"}`, "")
	expect(t, w, http.StatusCreated, "User registered successfully")

	w = env.do("POST", "/api/auth/login", `{"email":"m@x.com","password":"secret1"}`, "")
	lr := expect(t, w, http.StatusOK, "Login successful")

	w = env.do("PUT", "/api/users/profile", `{"sellerInfo":{"businessName":"Mongo Shop"}}`, lr["token"].(string))
	expect(t, w, http.StatusOK, "")

	w = env.do("GET", "/api/users/seller/profile", "", lr["token"].(string))
	si := expect(t, w, http.StatusOK, "")
	if si["businessName"] != "Mongo Shop" {
		t.Fatalf("seller profile: %v", si)
	}

	w = env.do("POST", "/api/auth/forgot-password", `{"email":"m@x.com"}`, "")
	fr := expect(t, w, http.StatusOK, "Password reset instructions sent to your email")
	if _, ok := fr["resetToken"]; ok {
		t.Fatal("token returned in secure mode")
	}
}
