// Package endpoint provides the system endpoints every server exposes.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/version"
)

const checkTimeout = 5 * time.Second

// Health reports aggregated component health. Down yields 503; degraded
// still answers 200 so a tripped model breaker does not fail the probe.
func Health(service string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := check(c.Request.Context(), service, checkers)
		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status":     sh.Status,
			"service":    sh.Service,
			"version":    sh.Version,
			"components": sh.Components,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Readiness answers 503 unless every component is up.
func Readiness(service string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := check(c.Request.Context(), service, checkers)
		status, state := http.StatusOK, "ready"
		if sh.Status != observability.HealthStatusUp {
			status, state = http.StatusServiceUnavailable, "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "service": service})
	}
}

// Liveness confirms the process is serving HTTP.
func Liveness(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "service": service})
	}
}

func check(ctx context.Context, service string, checkers []observability.HealthChecker) *observability.ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return observability.Check(ctx, service, version.Short(), checkers...)
}
