package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns the otelgin server span middleware followed by one that
// tags the span with the request id and the authenticated admin. The span
// name is "METHOD route", e.g. "GET /api/v1/listings/:id".
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName,
			otelgin.WithSpanNameFormatter(func(c *gin.Context) string {
				route := c.FullPath()
				if route == "" {
					route = unmatchedRoute
				}
				return c.Request.Method + " " + route
			}),
		),
		enrichSpan,
	}
}

// enrichSpan runs inside the otelgin span. The username is only known
// once the JWT middleware has run, so it is read after c.Next.
func enrichSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}
	if id := GetRequestID(c); id != "" {
		span.SetAttributes(attribute.String("http.request_id", id))
	}

	c.Next()

	if username := c.GetString(JWTUsernameKey); username != "" {
		span.SetAttributes(attribute.String("enduser.id", username))
	}
}
