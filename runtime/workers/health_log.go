package workers

import (
	"context"
	"log/slog"
	"time"

	"social-lab/observability"
)

// HealthWorker logs a process health snapshot at a fixed interval, the
// same data the health endpoint serves.
type HealthWorker struct {
	monitor  *observability.Monitor
	log      *slog.Logger
	interval time.Duration
}

func NewHealthWorker(monitor *observability.Monitor, log *slog.Logger, interval time.Duration) *HealthWorker {
	return &HealthWorker{monitor: monitor, log: log, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats := w.monitor.Snapshot()
			w.log.Info("health",
				"rss_mb", stats.ProcessRSSMb,
				"alloc_mb", stats.AllocMemMb,
				"goroutines", stats.NumGoroutine,
				"requests", stats.RequestsServed,
				"failures", stats.RequestFailures)
		}
	}
}
