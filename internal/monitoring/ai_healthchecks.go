package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/starsense/internal/clients"
	"github.com/spacesedan/starsense/internal/metrics"
)

const (
	HEALTHCHECK_TIMER   = 15 * time.Second
	HEALTHCHECK_TIMEOUT = 10 * time.Second
)

// CheckClassifierHealth runs one health check and records the result.
func CheckClassifierHealth(ctx context.Context, checker clients.HealthChecker, healthy *atomic.Bool) bool {
	checkCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	err := checker.HealthCheck(checkCtx)
	isHealthy := err == nil
	healthy.Store(isHealthy)

	if isHealthy {
		metrics.ClassifierHealthy.Set(1)
	} else {
		metrics.ClassifierHealthy.Set(0)
		slog.Warn("[HealthCheck] Classifier is unhealthy",
			slog.String("error", err.Error()))
	}
	return isHealthy
}

// MonitorClassifierHealth checks immediately, then on every tick until ctx
// is done. The first check also warms up a lazily built model.
func MonitorClassifierHealth(ctx context.Context, checker clients.HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	CheckClassifierHealth(ctx, checker, healthy)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckClassifierHealth(ctx, checker, healthy)
		}
	}
}
