package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/Marcella2706/task2-GeekHaven/docs"
	"github.com/Marcella2706/task2-GeekHaven/internal/auth"
	"github.com/Marcella2706/task2-GeekHaven/internal/config"
	api "github.com/Marcella2706/task2-GeekHaven/internal/http"
	applog "github.com/Marcella2706/task2-GeekHaven/internal/log"
	"github.com/Marcella2706/task2-GeekHaven/internal/metrics"
	"github.com/Marcella2706/task2-GeekHaven/internal/oauth"
	"github.com/Marcella2706/task2-GeekHaven/internal/queue"
	"github.com/Marcella2706/task2-GeekHaven/internal/repo"
)

const serviceName = "resellhub-api"

type backend interface {
	auth.UserStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	EnsureIndexes(ctx context.Context) error
}

func openStore(ctx context.Context, cfg config.Config) (backend, error) {
	if cfg.Store == config.StoreMemory {
		return repo.NewMemoryStore(), nil
	}
	return repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
}

// @title ReSellHub API
// @version 1.0
// @description Accounts, sign-in and profiles for the ReSellHub marketplace. Every response carries an X-Signature header.
// @schemes http https
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, err := applog.Init(cfg.Production())
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.DDEnabled {
		tracer.Start(tracer.WithService(serviceName), tracer.WithEnv(cfg.Env))
		defer tracer.Stop()
	}
	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("store connect", zap.Error(err))
	}
	defer store.Close(context.Background())
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		p, err := queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
		pub = p
	} else {
		logger.Warn("RABBIT_URL not set, auth events are dropped")
	}
	defer pub.Close()

	var google auth.GoogleProvider
	if cfg.GoogleEnabled() {
		g, err := oauth.NewGoogle(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.JWTSecret)
		if err != nil {
			logger.Fatal("google oauth", zap.Error(err))
		}
		google = g
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	devReset := cfg.ResetMode == config.ResetModeDev
	if devReset && cfg.Production() {
		logger.Warn("RESET_MODE=dev in production: reset tokens are predictable and returned in responses")
	}

	svc := auth.NewService(store, google, pub, auth.Options{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL,
		DevReset: devReset,
		ResetTTL: cfg.ResetTTL,
		Exchange: cfg.RabbitExchange,
	}, logger)

	h := api.NewHandler(svc, store)

	var counter api.Counter = api.NewMemoryCounter()
	if cfg.RedisAddr != "" {
		rds := repo.NewRedis(cfg.RedisAddr)
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, rate limits fail open until it answers", zap.Error(err))
		}
		counter = rds
		h.Redis = rds
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	docs.SwaggerInfo.BasePath = "/"

	r := api.NewRouter(h, api.RouterConfig{
		Service:     serviceName,
		CORSOrigins: cfg.CORSOrigins,
		Global:      api.NewRateLimiter("global", cfg.GlobalLimit.Max, cfg.GlobalLimit.Window, api.MsgGlobalLimit, counter),
		Auth:        api.NewRateLimiter("auth", cfg.AuthLimit.Max, cfg.AuthLimit.Window, api.MsgAuthLimit, counter),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()

	logger.Info("resellhub api listening",
		zap.String("addr", srv.Addr),
		zap.String("store", cfg.Store),
		zap.String("reset_mode", cfg.ResetMode),
		zap.Bool("google", cfg.GoogleEnabled()),
		zap.Bool("redis", cfg.RedisAddr != ""),
	)
	applog.Infof("swagger UI on http://localhost:%s/docs/index.html", cfg.Port)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
