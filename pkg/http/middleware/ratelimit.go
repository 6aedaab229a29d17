package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Limiter admits or rejects a call for an identity.
type Limiter interface {
	Allow(key string) bool
}

// RateLimit rejects requests over the limiter's budget with 429, keyed by
// the client address. Requests to any of the skip paths are never counted.
func RateLimit(l Limiter, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skipped[c.Request().URL.Path]; ok {
				return next(c)
			}
			if !l.Allow("http:" + c.RealIP()) {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": "Too Many Requests",
				})
			}
			return next(c)
		}
	}
}
