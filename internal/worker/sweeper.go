package worker

import (
	"context"
	"time"

	"github.com/wb-go/wbf/zlog"
)

type sentNotificationStore interface {
	DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper deletes notifications that were sent longer ago than the retention window.
type Sweeper struct {
	store     sentNotificationStore
	retention time.Duration
	now       func() time.Time
}

// NewSweeper creates a new Sweeper.
func NewSweeper(store sentNotificationStore, retention time.Duration) *Sweeper {
	return &Sweeper{store: store, retention: retention, now: time.Now}
}

// Sweep runs one retention pass. Only sent notifications are eligible, so it
// is safe to run alongside the Scheduler.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)

	deleted, err := s.store.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		zlog.Logger.Error().Err(err).Time("cutoff", cutoff).Msg("failed to clean up old notifications")
		return
	}

	if deleted > 0 {
		zlog.Logger.Info().Int64("deleted", deleted).Msg("cleaned up old notifications")
	}
}
