package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	models "SignalDesk/internal/domain/models"
	"SignalDesk/pkg/cache"
	xhttp "SignalDesk/pkg/http"
	xlogger "SignalDesk/pkg/logger"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/labstack/echo/v4"
)

// HealthChecker is a dependency checked by /health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// OpsEchoHandler serves health and cache administration routes.
type OpsEchoHandler struct {
	logger *xlogger.Logger
	cache  *cache.TieredCache
	checks map[string]HealthChecker
}

func NewOpsEchoHandler(logger *xlogger.Logger, c *cache.TieredCache) *OpsEchoHandler {
	return &OpsEchoHandler{logger: logger, cache: c, checks: map[string]HealthChecker{}}
}

// AddCheck registers a named dependency for /health.
func (h *OpsEchoHandler) AddCheck(name string, hc HealthChecker) {
	h.checks[name] = hc
}

func (h *OpsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api/cache")
	g.GET("/stats", h.CacheStats)
	g.DELETE("", h.InvalidateCache)
}

type healthReport struct {
	Status     string            `json:"status"`
	CacheTier  string            `json:"cache_tier"`
	Components map[string]string `json:"components,omitempty"`
}

// Health reports "ok", "degraded" when the cache is running on its local
// tier, or "unhealthy" with 503 when a registered dependency fails.
func (h *OpsEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	rep := healthReport{Status: "ok", CacheTier: cache.TierLocal}
	if h.cache != nil {
		m := h.cache.Metrics(ctx)
		rep.CacheTier = m.Tier
		if m.Degraded {
			rep.Status = "degraded"
		}
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	for _, name := range names {
		if rep.Components == nil {
			rep.Components = make(map[string]string, len(names))
		}
		if err := h.checks[name].Health(ctx); err != nil {
			h.logger.Warn("health check failed", xlogger.String("component", name), xlogger.Error(err))
			rep.Components[name] = err.Error()
			rep.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		rep.Components[name] = "ok"
	}
	return c.JSON(status, xhttp.APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    rep,
	})
}

func (h *OpsEchoHandler) CacheStats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.cache.Metrics(c.Request().Context()))
}

type invalidateResult struct {
	Pattern string `json:"pattern"`
	Removed int    `json:"removed"`
}

func (h *OpsEchoHandler) InvalidateCache(c echo.Context) error {
	req := &models.CacheInvalidateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	removed, err := h.cache.Invalidate(c.Request().Context(), req.Pattern)
	if err != nil {
		if errors.Is(err, doublestar.ErrBadPattern) {
			return xhttp.BadRequestResponse(c, xhttp.ValidationErrors(err))
		}
		h.logger.Error("cache invalidate error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_CACHE", "pattern", "cache invalidate failed", http.StatusInternalServerError).WithError(err))
	}
	h.logger.Info("cache invalidated",
		xlogger.String("pattern", req.Pattern),
		xlogger.Int("removed", removed),
	)
	return xhttp.SuccessResponse(c, invalidateResult{Pattern: req.Pattern, Removed: removed})
}
