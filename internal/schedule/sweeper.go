// Package schedule runs periodic maintenance jobs on a cron scheduler.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/memohai/imgkeeper/internal/metrics"
)

// Sweepable drops expired entries and reports how many were removed.
type Sweepable interface {
	Sweep() int
}

// Sweeper periodically sweeps in-memory TTL stores.
type Sweeper struct {
	cron     *cron.Cron
	interval time.Duration
	targets  map[string]Sweepable
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper for the named targets. Nil targets are skipped.
func NewSweeper(log *slog.Logger, interval time.Duration, targets map[string]Sweepable) (*Sweeper, error) {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	s := &Sweeper{
		cron:     cron.New(),
		interval: interval,
		targets:  map[string]Sweepable{},
		logger:   log.With(slog.String("service", "sweeper")),
	}
	for name, target := range targets {
		if target != nil {
			s.targets[name] = target
		}
	}
	if _, err := s.cron.AddFunc("@every "+interval.String(), func() { s.RunOnce() }); err != nil {
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}
	return s, nil
}

// RunOnce sweeps every target and returns the total number of evictions.
func (s *Sweeper) RunOnce() int {
	names := make([]string, 0, len(s.targets))
	for name := range s.targets {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		n := s.targets[name].Sweep()
		if n > 0 {
			metrics.CacheEvictions.WithLabelValues(name).Add(float64(n))
			s.logger.Debug("swept expired entries", slog.String("cache", name), slog.Int("evicted", n))
		}
		total += n
	}
	return total
}

// Start begins the schedule. It is a no-op without targets.
func (s *Sweeper) Start() {
	if len(s.targets) == 0 {
		return
	}
	s.cron.Start()
	s.logger.Info("sweeper started", slog.Duration("interval", s.interval), slog.Int("targets", len(s.targets)))
}

// Stop halts the schedule and waits for a running sweep until ctx expires.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
