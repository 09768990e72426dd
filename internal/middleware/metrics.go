package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RequestRecorder stores per-route request statistics
type RequestRecorder interface {
	RecordRequest(ctx context.Context, route string, statusCode int, latencyMs float64) error
}

// Metrics returns a middleware that records request metrics.
// A nil recorder disables it.
func Metrics(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil || strings.HasPrefix(c.Request.URL.Path, "/static/") {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		latency := float64(time.Since(start).Milliseconds())
		route := routeName(c)

		// the request context is done once the handler returned
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := recorder.RecordRequest(ctx, route, c.Writer.Status(), latency); err != nil {
			log.Warn().Err(err).Msg("Failed to record metrics")
		}
	}
}

// routeName is the matched route template, shared by the access log and metrics keys
func routeName(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "not_found"
}
