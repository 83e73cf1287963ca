package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)
	AuthOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_operations_total", Help: "Auth operations by outcome"},
		[]string{"operation", "outcome"},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rate_limited_total", Help: "Requests rejected by a rate limiter"},
		[]string{"limiter"},
	)
	MailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notifier_mails_total", Help: "Mails handed to the sender by outcome"},
		[]string{"kind", "outcome"},
	)
)

var once sync.Once

// MustRegister registers every collector with the default registry. Safe to call more than once.
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(RequestsTotal, ReqDuration, InFlight, AuthOps, RateLimited, MailsSent)
	})
}

// Handler serves the default registry on /metrics.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve runs a metrics-only listener on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
