package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultResyncSchedule refetches the full list every quarter hour.
const DefaultResyncSchedule = "@every 15m"

// Resync periodically refetches the store so drift from missed change events
// heals even when the realtime stream never reported a reconnect.
type Resync struct {
	store    *Store
	schedule cron.Schedule
	spec     string
	timeout  time.Duration
	loc      *time.Location
	logger   *slog.Logger
}

// NewResync parses spec (standard five-field cron or a descriptor such as
// "@every 10m"). Each run is bounded by timeout.
func NewResync(store *Store, spec string, timeout time.Duration, logger *slog.Logger) (*Resync, error) {
	if spec == "" {
		spec = DefaultResyncSchedule
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("resync schedule %q: %w", spec, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resync{
		store:    store,
		schedule: sched,
		spec:     spec,
		timeout:  timeout,
		loc:      time.UTC,
		logger:   logger,
	}, nil
}

// InLocation evaluates five-field schedules in loc instead of UTC.
func (r *Resync) InLocation(loc *time.Location) *Resync {
	if loc != nil {
		r.loc = loc
	}
	return r
}

// Next returns the next run time after t.
func (r *Resync) Next(t time.Time) time.Time {
	return r.schedule.Next(t.In(r.loc))
}

// Run schedules refetches until ctx is done, then waits for a running one to finish.
func (r *Resync) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(r.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(r.schedule, cron.FuncJob(func() { r.runOnce(ctx) }))
	c.Start()
	r.logger.Info("periodic resync started", slog.String("schedule", r.spec))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (r *Resync) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	arts, err := r.store.Refetch(ctx)
	if err != nil {
		r.logger.Warn("periodic resync failed", slog.Any("error", err))
		return
	}
	r.logger.Debug("periodic resync completed",
		slog.Int("articles", len(arts)),
		slog.Duration("duration", time.Since(start)))
}
