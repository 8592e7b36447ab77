package utils

import (
	"context"
	"time"
)

// PurgeFunc deletes records older than before and reports how many went.
type PurgeFunc func(ctx context.Context, before time.Time) (int64, error)

// StartRetentionCleaner periodically purges records older than retention until
// ctx is cancelled. It is best-effort and only logs failures.
func StartRetentionCleaner(ctx context.Context, name string, interval, retention time.Duration, purge PurgeFunc) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			runCtx, cancel := context.WithTimeout(ctx, time.Minute)
			n, err := purge(runCtx, time.Now().Add(-retention))
			cancel()
			if err != nil {
				Sugar.Warnf("%s cleaner failed: %v", name, err)
				continue
			}
			if n > 0 {
				Sugar.Infof("%s cleaner removed %d rows", name, n)
			}
		}
	}()
}
