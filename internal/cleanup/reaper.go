// Package cleanup expires learning sessions that were abandoned mid-deck.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/services"
)

// Expirer ends sessions that have not moved since before a cutoff.
type Expirer interface {
	ExpireIdle(ctx context.Context, before time.Time) (int, error)
}

var _ Expirer = (services.SessionService)(nil)

// Reaper periodically expires sessions idle for longer than ttl.
type Reaper struct {
	scheduler *gocron.Scheduler
	sessions  Expirer
	ttl       time.Duration
	interval  time.Duration
	now       func() time.Time
	log       *logger.Logger
}

func NewReaper(sessions Expirer, ttl, interval time.Duration) *Reaper {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Reaper{
		scheduler: s,
		sessions:  sessions,
		ttl:       ttl,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.Default().WithPrefix("reaper"),
	}
}

// Run schedules the sweep and blocks until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	if _, err := r.scheduler.Every(r.interval).Do(func() {
		if _, err := r.Sweep(ctx); err != nil {
			r.log.Error("sweep failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	r.scheduler.StartAsync()
	r.log.Info("expiring sessions idle for %s, checking every %s", r.ttl, r.interval)

	<-ctx.Done()
	r.scheduler.Stop()
	return nil
}

// Sweep expires every session whose last activity is older than ttl.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	if ctx.Err() != nil {
		return 0, nil
	}
	cutoff := r.now().Add(-r.ttl)
	n, err := r.sessions.ExpireIdle(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.log.Info("expired %d idle sessions (cutoff %s)", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}
