// Package runs queues valuation runs in Postgres and executes them one at a
// time on a background worker.
package runs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/store"
)

// ErrInvalidSeason is returned when a run is requested without a season.
var ErrInvalidSeason = errors.New("season is required")

// Service coordinates run persistence, execution, and status reporting.
type Service struct {
	store  Store
	runner Runner

	historyLimit int
	pollInterval time.Duration

	mu        sync.RWMutex
	listeners []Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logrus.Entry
}

// NewService constructs a Service. Call Start to launch the worker.
func NewService(s Store, runner Runner, logger *logrus.Entry) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Service{
		store:        s,
		runner:       runner,
		historyLimit: 10,
		pollInterval: 3 * time.Second,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger.WithField("component", "runs"),
	}
}

// AddListener registers l for run-finished callbacks.
func (s *Service) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Start launches the background worker loop.
func (s *Service) Start() {
	if err := s.store.ResetStuckRuns(s.ctx); err != nil {
		s.logger.WithError(err).Warn("failed to reset runs")
	}

	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops the worker and waits for the current run to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue creates a queued run for the season.
func (s *Service) Enqueue(ctx context.Context, season string, trigger store.RunTrigger) (*store.ValuationRun, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, ErrInvalidSeason
	}

	run, err := s.store.Create(ctx, season, trigger)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":  run.RunID,
		"season":  season,
		"trigger": trigger,
	}).Info("Run queued")
	return run, nil
}

// Get returns one run, or nil when unknown.
func (s *Service) Get(ctx context.Context, runID string) (*store.ValuationRun, error) {
	return s.store.Get(ctx, runID)
}

// GetStatus returns the currently running run plus recent history.
func (s *Service) GetStatus(ctx context.Context) (*StatusSummary, error) {
	history, err := s.store.ListRecent(ctx, s.historyLimit)
	if err != nil {
		return nil, err
	}

	summary := &StatusSummary{History: history}
	for _, run := range history {
		if run.Status == store.RunStatusRunning {
			summary.ActiveRun = run.Copy()
			break
		}
	}
	return summary, nil
}

// ProcessNext claims and executes the oldest queued run. It reports false
// when the queue was empty.
func (s *Service) ProcessNext(ctx context.Context) (bool, error) {
	run, err := s.store.ClaimNext(ctx)
	if err != nil {
		return false, err
	}
	if run == nil {
		return false, nil
	}

	s.execute(ctx, run)
	return true, nil
}

func (s *Service) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		processed, err := s.ProcessNext(s.ctx)
		if err != nil {
			s.logger.WithError(err).Error("claim run error")
		}
		if processed {
			continue
		}

		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) execute(ctx context.Context, run *store.ValuationRun) {
	log := s.logger.WithFields(logrus.Fields{"run_id": run.RunID, "season": run.Season})
	log.Info("Run started")

	reporter := &runReporter{ctx: ctx, store: s.store, runID: run.RunID, logger: log}
	counts, err := s.runner.Run(ctx, run, reporter)

	if recErr := s.store.RecordCounts(ctx, run.RunID, counts); recErr != nil {
		log.WithError(recErr).Warn("failed to record run counts")
	}
	run.InputRows = counts.InputRows
	run.JoinedRows = counts.JoinedRows
	run.ValuedRows = counts.ValuedRows
	run.UnresolvedOpponents = counts.UnresolvedOpponents
	run.PlayersValued = counts.PlayersValued
	run.UnmatchedSalary = counts.UnmatchedSalary

	if err != nil {
		log.WithError(err).Error("Run failed")
		run.Status = store.RunStatusFailed
		if upErr := s.store.UpdateStatus(ctx, run.RunID, store.RunStatusFailed, "Run failed", err); upErr != nil {
			log.WithError(upErr).Warn("failed to update run status")
		}
		run.LastError.String, run.LastError.Valid = err.Error(), true
	} else {
		log.WithField("players_valued", counts.PlayersValued).Info("✓ Run completed")
		run.Status = store.RunStatusCompleted
		if upErr := s.store.UpdateStatus(ctx, run.RunID, store.RunStatusCompleted, "Run completed", nil); upErr != nil {
			log.WithError(upErr).Warn("failed to update run status")
		}
	}

	s.notify(ctx, run)
}

func (s *Service) notify(ctx context.Context, run *store.ValuationRun) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.RunFinished(ctx, run.Copy())
	}
}

type runReporter struct {
	ctx    context.Context
	store  Store
	runID  string
	logger *logrus.Entry
}

func (r *runReporter) OnStage(message string) {
	r.logger.Info(message)
	if err := r.store.UpdateStatus(r.ctx, r.runID, store.RunStatusRunning, message, nil); err != nil {
		r.logger.WithError(err).WithField("stage", message).Warn("failed to record stage")
	}
}
