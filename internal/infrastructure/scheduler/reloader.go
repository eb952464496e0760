package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

// Reloadable is implemented by the deck catalog.
type Reloadable interface {
	Reload(ctx context.Context) (entity.DeckStats, error)
}

// Reloader periodically rebuilds the deck from its source.
type Reloader struct {
	scheduler *gocron.Scheduler
	target    Reloadable
	interval  time.Duration
	timeout   time.Duration
	logger    *logrus.Logger
}

// NewReloader creates a reloader. A non-positive interval disables it.
func NewReloader(target Reloadable, interval, timeout time.Duration, logger *logrus.Logger) *Reloader {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Reloader{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Enabled reports whether a reload interval is configured.
func (r *Reloader) Enabled() bool {
	return r.interval > 0
}

// Start schedules the reload job without blocking. The first run happens one
// interval from now since the deck is loaded at startup.
func (r *Reloader) Start() error {
	if !r.Enabled() {
		return nil
	}
	if _, err := r.scheduler.Every(r.interval).WaitForSchedule().SingletonMode().Do(r.reload); err != nil {
		return fmt.Errorf("schedule deck reload: %w", err)
	}
	r.scheduler.StartAsync()
	r.logger.WithField("interval", r.interval.String()).Info("deck reload scheduled")
	return nil
}

// Stop terminates the scheduled job.
func (r *Reloader) Stop() {
	r.scheduler.Stop()
}

func (r *Reloader) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.target.Reload(ctx); err != nil {
		r.logger.WithError(err).Warn("deck reload failed, keeping previous deck")
	}
}
