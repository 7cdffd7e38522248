package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/SINTEF/entities-service/pkg/metrics"
)

// Metrics records request counts and latencies by route pattern
func Metrics(m *metrics.Metrics) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(string(c.Method()), route, c.Response.StatusCode(), time.Since(start))
	}
}
