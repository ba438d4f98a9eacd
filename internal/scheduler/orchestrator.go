// Package scheduler triggers the daily salary refresh and valuation run.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/ingest/spotrac"
	"github.com/fortuna/moneta/internal/store"
)

// Enqueuer queues valuation runs.
type Enqueuer interface {
	Enqueue(ctx context.Context, season string, trigger store.RunTrigger) (*store.ValuationRun, error)
}

// SalaryRefresher replaces the season salary snapshot.
type SalaryRefresher interface {
	Ingest(ctx context.Context, season string, year int) (spotrac.Summary, error)
}

// Orchestrator manages scheduled tasks
type Orchestrator struct {
	runs     Enqueuer
	salaries SalaryRefresher
	config   *Config
	logger   *logrus.Entry

	mu      sync.Mutex
	cancel  context.CancelFunc
	lastRun *store.ValuationRun
}

// Config holds scheduler configuration
type Config struct {
	DailyRunHour    int           // Default: 6 (6 AM)
	Season          string        // e.g., "2024-25"
	SalaryYear      int           // Spotrac contract year, e.g. 2024
	EnableDailyRun  bool          // Default: true
	RefreshSalaries bool          // Default: false
	MaxRetries      int           // Default: 3
	RetryDelay      time.Duration // Default: 30s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		DailyRunHour:   6,
		Season:         "2024-25",
		SalaryYear:     2024,
		EnableDailyRun: true,
		MaxRetries:     3,
		RetryDelay:     30 * time.Second,
	}
}

// NewOrchestrator creates a scheduler. salaries may be nil, in which case
// the daily task only queues a valuation run.
func NewOrchestrator(runs Enqueuer, salaries SalaryRefresher, config *Config, logger *logrus.Entry) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Orchestrator{
		runs:     runs,
		salaries: salaries,
		config:   config,
		logger:   logger.WithField("component", "scheduler"),
	}
}

// Start runs the daily loop until ctx is canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	o.logger.WithFields(logrus.Fields{
		"daily_run":        o.config.EnableDailyRun,
		"hour":             o.config.DailyRunHour,
		"season":           o.config.Season,
		"refresh_salaries": o.config.RefreshSalaries && o.salaries != nil,
	}).Info("Scheduler orchestrator starting")

	ctx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()

	if !o.config.EnableDailyRun {
		<-ctx.Done()
		return
	}

	for {
		now := time.Now()
		next := NextRun(now, o.config.DailyRunHour)
		wait := next.Sub(now)
		o.logger.Infof("Next daily run: %s (in %v)", next.Format("2006-01-02 15:04:05"), wait.Round(time.Second))

		select {
		case <-ctx.Done():
			o.logger.Info("Daily scheduler stopped")
			return
		case <-time.After(wait):
			if err := o.RunDailyTask(ctx); err != nil {
				o.logger.WithError(err).Error("❌ Daily task failed")
			}
		}
	}
}

// Stop cancels the daily loop
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.logger.Info("✓ Scheduler orchestrator stopped")
}

// RunDailyTask refreshes salaries when enabled, then queues a run. A failed
// salary refresh keeps the previous snapshot and does not block the run.
func (o *Orchestrator) RunDailyTask(ctx context.Context) error {
	startTime := time.Now()

	if o.config.RefreshSalaries && o.salaries != nil {
		err := o.retry(ctx, "salary refresh", func() error {
			summary, err := o.salaries.Ingest(ctx, o.config.Season, o.config.SalaryYear)
			if err == nil {
				o.logger.WithFields(logrus.Fields{
					"teams":   summary.TeamsScraped,
					"players": summary.Players,
				}).Info("✓ Salaries refreshed")
			}
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.logger.WithError(err).Warn("⚠️  Salary refresh failed, valuing with previous snapshot")
		}
	}

	var run *store.ValuationRun
	err := o.retry(ctx, "enqueue run", func() error {
		var err error
		run, err = o.runs.Enqueue(ctx, o.config.Season, store.RunTriggerScheduled)
		return err
	})
	if err != nil {
		return fmt.Errorf("enqueue daily run: %w", err)
	}

	o.mu.Lock()
	o.lastRun = run
	o.mu.Unlock()

	o.logger.WithFields(logrus.Fields{
		"run_id":   run.RunID,
		"duration": time.Since(startTime).Round(time.Millisecond),
	}).Info("✓ Daily valuation run queued")
	return nil
}

// retry calls fn up to MaxRetries times, waiting RetryDelay between attempts.
func (o *Orchestrator) retry(ctx context.Context, name string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		o.logger.WithError(err).Warnf("⚠️  %s attempt %d/%d failed", name, attempt, o.config.MaxRetries)

		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	return err
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := map[string]interface{}{
		"daily_run_enabled": o.config.EnableDailyRun,
		"daily_run_hour":    o.config.DailyRunHour,
		"season":            o.config.Season,
		"refresh_salaries":  o.config.RefreshSalaries && o.salaries != nil,
		"next_run":          NextRun(time.Now(), o.config.DailyRunHour),
	}
	if o.lastRun != nil {
		status["last_run_id"] = o.lastRun.RunID
	}
	return status
}

// NextRun returns the next occurrence of hour:00 strictly after now, in
// now's location.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
