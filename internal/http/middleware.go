package http

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Marcella2706/task2-GeekHaven/internal/auth"
	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	applog "github.com/Marcella2706/task2-GeekHaven/internal/log"
	"github.com/Marcella2706/task2-GeekHaven/internal/metrics"
	"github.com/Marcella2706/task2-GeekHaven/internal/security"
)

const (
	requestIDKey = "X-Request-ID"
	userIDKey    = "uid"
	roleKey      = "role"
)

// RequestID reuses an inbound X-Request-ID or mints one, echoes it back and
// stores it on both the gin and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDKey))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDKey, id)
		c.Request = c.Request.WithContext(auth.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		l := applog.Ctx(c.Request.Context(),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", ClientIP(c)),
		)
		if status >= http.StatusInternalServerError {
			l.Warn("request")
			return
		}
		l.Info("request")
	}
}

func Prometheus() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.InFlight.Inc()
		start := time.Now()
		c.Next()
		metrics.InFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.ReqDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

func AuthJWT(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": auth.MsgNoToken})
			return
		}
		tok := strings.TrimSpace(h[len("Bearer "):])
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": auth.MsgNoToken})
			return
		}
		claims, err := svc.Authenticate(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": auth.MsgTokenFailed})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// SellerOnly must run after AuthJWT.
func SellerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if domain.Role(c.GetString(roleKey)) != domain.RoleSeller {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": auth.MsgSellersOnly})
			return
		}
		c.Next()
	}
}

// signingWriter holds the body back until the handler chain is done.
type signingWriter struct {
	gin.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *signingWriter) WriteHeader(code int) {
	if code > 0 {
		w.status = code
	}
}

func (w *signingWriter) WriteHeaderNow()                   {}
func (w *signingWriter) Write(b []byte) (int, error)       { return w.buf.Write(b) }
func (w *signingWriter) WriteString(s string) (int, error) { return w.buf.WriteString(s) }
func (w *signingWriter) Status() int                       { return w.status }
func (w *signingWriter) Size() int                         { return w.buf.Len() }
func (w *signingWriter) Written() bool                     { return w.buf.Len() > 0 }

// MsgInternal answers a request whose handler panicked.
const MsgInternal = "Internal server error"

// SignResponse sets X-Signature to the hex HMAC-SHA256 of the exact response body.
// A panic further down the chain is turned into a signed 500.
func SignResponse(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orig := c.Writer
		sw := &signingWriter{ResponseWriter: orig, status: http.StatusOK}
		c.Writer = sw
		defer func() {
			if r := recover(); r != nil {
				applog.Ctx(c.Request.Context()).Error("panic recovered",
					zap.Any("panic", r), zap.String("path", c.Request.URL.Path), zap.Stack("stack"))
				c.Abort()
				sw.buf.Reset()
				sw.status = http.StatusInternalServerError
				orig.Header().Set("Content-Type", "application/json; charset=utf-8")
				_, _ = sw.buf.WriteString(`{"message":"` + MsgInternal + `"}`)
			}
			c.Writer = orig
			body := sw.buf.Bytes()
			orig.Header().Set(security.SignatureHeader, security.Sign(secret, body))
			orig.WriteHeader(sw.status)
			if len(body) > 0 {
				if _, err := orig.Write(body); err != nil {
					applog.Ctx(c.Request.Context()).Warn("write response", zap.Error(err))
				}
			}
		}()

		c.Next()
	}
}
