// Package endpoint holds the probe handlers every server exposes.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamupload/component"
)

var startedAt = time.Now()

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Health reports the aggregate status with each component's health. Any
// unhealthy component turns the response into a 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := check(c.Request.Context(), checker)
		status := aggregate(components)

		body := probeBody(string(status), serviceName)
		body["components"] = components
		c.JSON(statusCode(status != component.StatusUnhealthy), body)
	}
}

// Liveness answers as long as the process can serve requests.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := probeBody("alive", serviceName)
		body["uptime"] = time.Since(startedAt).Round(time.Second).String()
		c.JSON(http.StatusOK, body)
	}
}

// Readiness reports not_ready while any component, the uploader in
// particular, is unhealthy.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ready := aggregate(check(c.Request.Context(), checker)) != component.StatusUnhealthy
		status := "ready"
		if !ready {
			status = "not_ready"
		}
		c.JSON(statusCode(ready), probeBody(status, serviceName))
	}
}

func check(ctx context.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(ctx)
}

// aggregate folds component statuses: unhealthy wins over degraded, which
// wins over healthy.
func aggregate(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, ch := range components {
		switch ch.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}

func probeBody(status, serviceName string) gin.H {
	return gin.H{
		"status":    status,
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

func statusCode(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
