package backfill

import (
	"context"
	"time"
)

// Scheduler runs a backfill pass once at startup and then every 24 hours,
// repairing any gaps the live feed left behind (restarts, dropped flushes).
type Scheduler struct {
	Load func(ctx context.Context)
}

// Start launches the schedule in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		// Run immediately once at startup
		s.Load(ctx)

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Load(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}
