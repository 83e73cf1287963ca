package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Marcella2706/task2-GeekHaven/internal/config"
	applog "github.com/Marcella2706/task2-GeekHaven/internal/log"
	"github.com/Marcella2706/task2-GeekHaven/internal/mail"
	"github.com/Marcella2706/task2-GeekHaven/internal/metrics"
	"github.com/Marcella2706/task2-GeekHaven/internal/notify"
	"github.com/Marcella2706/task2-GeekHaven/internal/queue"
)

func main() {
	cfg := config.LoadNotifier()

	logger, err := applog.Init(cfg.Env == "production")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	metrics.MustRegister()

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.Exchange, cfg.Queue, cfg.BindKeys)
	if err != nil {
		logger.Fatal("rabbit consumer init failed", zap.Error(err))
	}
	defer cons.Close()

	var sender mail.Sender = mail.LogSender{L: logger}
	if cfg.ResendAPIKey != "" {
		sender = mail.NewResend(cfg.ResendAPIKey, cfg.MailFrom)
	} else {
		logger.Warn("RESEND_API_KEY not set, mails are only logged")
	}

	d := &notify.Dispatcher{
		Sender:      mail.NewThrottled(sender, cfg.MailPerSecond),
		FrontendURL: cfg.FrontendURL,
		Log:         logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error("metrics listener", zap.Error(err))
			}
		}()
	}

	logger.Info("notifier up",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue),
		zap.Strings("keys", cfg.BindKeys),
		zap.Int("workers", cfg.Concurrency),
		zap.String("metrics", cfg.MetricsAddr),
	)

	if err := cons.Consume(ctx, cfg.Concurrency, d.Handle); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
