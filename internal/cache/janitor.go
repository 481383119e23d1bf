package cache

import (
	"context"
	"time"

	"github.com/thomas-vilte/mateticket/internal/logger"
)

// Sweeper is implemented by stores that keep expired entries until they are
// read again.
type Sweeper interface {
	CleanExpired() int
}

// RunJanitor removes expired entries from s every interval until ctx is
// done.
func RunJanitor(ctx context.Context, s Sweeper, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.CleanExpired(); removed > 0 {
				logger.Debug(ctx, "expired cache entries removed", "count", removed)
			}
		}
	}
}
