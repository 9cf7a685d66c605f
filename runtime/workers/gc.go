package workers

import (
	"context"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// GCWorker periodically compacts badger's value log. Badger never
// reclaims value-log space on its own; without this loop the store only
// grows.
type GCWorker struct {
	db           *badger.DB
	log          *slog.Logger
	interval     time.Duration
	discardRatio float64
}

func NewGCWorker(db *badger.DB, log *slog.Logger, interval time.Duration) *GCWorker {
	return &GCWorker{db: db, log: log, interval: interval, discardRatio: 0.5}
}

func (w *GCWorker) Run(ctx context.Context) error {
	w.log.Info("Starting badger GC worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.collect()
		}
	}
}

// collect rewrites value-log files until badger reports nothing left to
// reclaim.
func (w *GCWorker) collect() {
	for {
		err := w.db.RunValueLogGC(w.discardRatio)
		if err == badger.ErrNoRewrite {
			return
		}
		if err != nil {
			w.log.Warn("Badger GC pass failed", "error", err)
			return
		}
		w.log.Debug("Badger GC rewrote a value log file")
	}
}
