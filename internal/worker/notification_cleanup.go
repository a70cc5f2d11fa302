package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/facility-api/pkg/logger"
)

// Pruner drops notifications older than a cutoff.
type Pruner interface {
	PruneBefore(cutoff time.Time) int
}

// NotificationCleanupWorker trims the feed to a retention window.
type NotificationCleanupWorker struct {
	feed            Pruner
	retention       time.Duration
	cleanupInterval time.Duration
	log             *logger.Logger
	now             func() time.Time
}

func NewNotificationCleanupWorker(feed Pruner, retention, cleanupInterval time.Duration, log *logger.Logger) *NotificationCleanupWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationCleanupWorker{
		feed:            feed,
		retention:       retention,
		cleanupInterval: cleanupInterval,
		log:             log,
		now:             time.Now,
	}
}

// Start blocks until ctx is done.
func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *NotificationCleanupWorker) cleanup() int {
	cutoff := w.now().Add(-w.retention)
	removed := w.feed.PruneBefore(cutoff)
	if removed > 0 {
		w.log.Info("pruned notifications", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
	}
	return removed
}
