package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/inklet-app/inklet/backend/internal/observability/metrics"
)

// StartPoolMetrics samples pool stats into prometheus gauges until ctx is
// cancelled.
func StartPoolMetrics(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	go samplePoolStats(ctx, pool.Stat, interval)
}

func samplePoolStats(ctx context.Context, stat func() *pgxpool.Stat, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := stat()
			metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
			metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
			metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
			metrics.DBPoolAcquireCount.Set(float64(s.AcquireCount()))
		}
	}
}
