package http

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/ext"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
)

// Trace starts the request span, continuing a distributed trace when the caller sent one.
// Without a running tracer the spans are no-ops.
func Trace(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		opts := []ddtrace.StartSpanOption{
			tracer.ServiceName(service),
			tracer.SpanType(ext.SpanTypeWeb),
			tracer.ResourceName(c.Request.Method + " " + route),
			tracer.Tag(ext.HTTPMethod, c.Request.Method),
			tracer.Tag(ext.HTTPURL, c.Request.URL.Path),
		}
		if sctx, err := tracer.Extract(tracer.HTTPHeadersCarrier(c.Request.Header)); err == nil {
			opts = append(opts, tracer.ChildOf(sctx))
		}
		sp, ctx := tracer.StartSpanFromContext(c.Request.Context(), "http.request", opts...)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		sp.SetTag(ext.HTTPCode, strconv.Itoa(status))
		if status >= 500 {
			sp.SetTag(ext.Error, fmt.Errorf("%d: %s", status, c.Errors.String()))
		}
		sp.Finish()
	}
}

// startSpan opens a child of the request span. The returned context also carries the request id.
func startSpan(c *gin.Context, name string) (context.Context, ddtrace.Span) {
	sp, ctx := tracer.StartSpanFromContext(c.Request.Context(), name,
		tracer.Tag("request_id", c.GetString(requestIDKey)),
	)
	return ctx, sp
}

// finishSpan marks the span failed only for errors the client did not cause.
func finishSpan(sp ddtrace.Span, err error) {
	if err != nil {
		if _, ok := domain.AsError(err); !ok {
			sp.Finish(tracer.WithError(err))
			return
		}
		sp.SetTag("rejected", err.Error())
	}
	sp.Finish()
}
