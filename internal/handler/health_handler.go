package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// HealthHandler answers liveness and readiness probes
type HealthHandler struct {
	pingStore func(ctx context.Context) error
}

// NewHealthHandler creates a HealthHandler; pingStore reports document store reachability
func NewHealthHandler(pingStore func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{pingStore: pingStore}
}

// Ping
//
//	@Summary	Ping
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/ping [get]
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}

// Readiness checks the document store
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Failure	503	{object}	map[string]any
//	@Router		/health/ready [get]
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.pingStore(ctx); err != nil {
		c.JSON(consts.StatusServiceUnavailable, utils.H{
			"status": "not_ready",
			"store":  "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"status": "ready",
		"store":  "healthy",
	})
}

// Liveness
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health/live [get]
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status": "alive",
	})
}
