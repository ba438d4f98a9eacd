// Package service wires the valuation pipeline to its stores.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/runs"
	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/valuation"
)

// StatsSource loads a season's raw stat tables.
type StatsSource interface {
	LoadBoxScores(ctx context.Context, season string) ([]valuation.BoxScoreRow, error)
	LoadAdvanced(ctx context.Context, season string) ([]valuation.AdvancedRow, error)
}

// SalarySource loads a season's salary snapshot.
type SalarySource interface {
	LoadSeason(ctx context.Context, season string) ([]efficiency.SalaryRecord, error)
}

// ValueStore persists and queries player-game values.
type ValueStore interface {
	Replace(ctx context.Context, values []valuation.PlayerGameValue) error
	ListByPlayer(ctx context.Context, playerID int64) ([]valuation.PlayerGameValue, error)
	ListByGame(ctx context.Context, gameID string) ([]valuation.PlayerGameValue, error)
}

// FeatureStore persists and queries player features.
type FeatureStore interface {
	Replace(ctx context.Context, features []efficiency.PlayerFeature) error
	List(ctx context.Context, filter store.FeatureFilter) ([]efficiency.PlayerFeature, error)
}

// FeatureCache holds the latest feature snapshot.
type FeatureCache interface {
	SetFeatures(ctx context.Context, features []efficiency.PlayerFeature) error
	GetFeatures(ctx context.Context) ([]efficiency.PlayerFeature, bool, error)
}

// Outcome is the in-memory result of one pipeline pass.
type Outcome struct {
	Values   []valuation.PlayerGameValue
	Features []efficiency.PlayerFeature
	Counts   store.RunCounts
}

// ValuationService runs the valuation pipeline and serves its outputs.
type ValuationService struct {
	stats    StatsSource
	salaries SalarySource
	values   ValueStore
	features FeatureStore
	cache    FeatureCache

	engine     *valuation.Engine
	aggregator *efficiency.Aggregator
	windows    map[string]valuation.SeasonWindow

	logger *logrus.Entry
}

// Option configures a ValuationService.
type Option func(*ValuationService)

// WithCache enables the feature cache.
func WithCache(c FeatureCache) Option {
	return func(s *ValuationService) { s.cache = c }
}

// WithSeasonWindow overrides the date window used for a season.
func WithSeasonWindow(season string, window valuation.SeasonWindow) Option {
	return func(s *ValuationService) { s.windows[season] = window }
}

// NewValuationService creates the service. Any store may be nil when the
// caller only uses Evaluate.
func NewValuationService(
	stats StatsSource,
	salaries SalarySource,
	values ValueStore,
	features FeatureStore,
	engine *valuation.Engine,
	aggregator *efficiency.Aggregator,
	logger *logrus.Entry,
	opts ...Option,
) *ValuationService {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &ValuationService{
		stats:      stats,
		salaries:   salaries,
		values:     values,
		features:   features,
		engine:     engine,
		aggregator: aggregator,
		windows:    make(map[string]valuation.SeasonWindow),
		logger:     logger.WithField("component", "service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Window returns the regular-season window for a season.
func (s *ValuationService) Window(season string) (valuation.SeasonWindow, error) {
	if w, ok := s.windows[season]; ok {
		return w, nil
	}
	return valuation.SeasonWindowFor(season)
}

// Evaluate runs filter, join, scoring, opponent adjustment and aggregation
// over in-memory tables.
func (s *ValuationService) Evaluate(ctx context.Context, season string, box []valuation.BoxScoreRow, advanced []valuation.AdvancedRow, salaries []efficiency.SalaryRecord) (*Outcome, error) {
	window, err := s.Window(season)
	if err != nil {
		return nil, err
	}

	var counts store.RunCounts
	counts.InputRows = len(box)

	box = valuation.FilterRegularSeason(box, window)
	if len(box) == 0 {
		return &Outcome{Counts: counts}, fmt.Errorf("no regular-season rows for %s: %w", season, valuation.ErrEmptyInput)
	}

	lines, err := valuation.JoinAdvanced(box, advanced)
	if err != nil {
		return &Outcome{Counts: counts}, err
	}
	counts.JoinedRows = len(lines)

	valued, err := s.engine.Valuate(ctx, lines)
	if err != nil {
		return &Outcome{Counts: counts}, err
	}
	counts.ValuedRows = valued.Stats.ValuedRows
	counts.UnresolvedOpponents = valued.Stats.UnresolvedOpponents

	agg, err := s.aggregator.Aggregate(valued.Values, salaries)
	if err != nil {
		return &Outcome{Values: valued.Values, Counts: counts}, err
	}
	counts.PlayersValued = agg.Stats.Matched
	counts.UnmatchedSalary = agg.Stats.UnmatchedSalary

	return &Outcome{Values: valued.Values, Features: agg.Features, Counts: counts}, nil
}

// Compute loads the season from the stores and evaluates it.
func (s *ValuationService) Compute(ctx context.Context, season string, reporter runs.Reporter) (*Outcome, error) {
	stage(reporter, "Loading box scores")
	box, err := s.stats.LoadBoxScores(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load box scores: %w", err)
	}

	stage(reporter, "Loading advanced metrics")
	advanced, err := s.stats.LoadAdvanced(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load advanced metrics: %w", err)
	}

	stage(reporter, "Loading salaries")
	salaries, err := s.salaries.LoadSeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load salaries: %w", err)
	}

	stage(reporter, "Scoring player games")
	return s.Evaluate(ctx, season, box, advanced, salaries)
}

// Persist replaces both snapshot tables and refreshes the cache.
func (s *ValuationService) Persist(ctx context.Context, out *Outcome) error {
	if err := s.values.Replace(ctx, out.Values); err != nil {
		return fmt.Errorf("replace player values: %w", err)
	}
	if err := s.features.Replace(ctx, out.Features); err != nil {
		return fmt.Errorf("replace player features: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetFeatures(ctx, presented(out.Features)); err != nil {
			s.logger.WithError(err).Warn("Failed to cache features")
		}
	}
	return nil
}

// Run executes a queued valuation run end to end.
func (s *ValuationService) Run(ctx context.Context, run *store.ValuationRun, reporter runs.Reporter) (store.RunCounts, error) {
	start := time.Now()

	out, err := s.Compute(ctx, run.Season, reporter)
	if err != nil {
		if out != nil {
			return out.Counts, err
		}
		return store.RunCounts{}, err
	}

	stage(reporter, "Writing snapshots")
	if err := s.Persist(ctx, out); err != nil {
		return out.Counts, err
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":         run.RunID,
		"season":         run.Season,
		"valued_rows":    out.Counts.ValuedRows,
		"players_valued": out.Counts.PlayersValued,
		"duration":       time.Since(start).Round(time.Millisecond).String(),
	}).Info("✓ Valuation run persisted")

	return out.Counts, nil
}

// PlayerValues returns a player's per-game values with a summary.
func (s *ValuationService) PlayerValues(ctx context.Context, playerID int64) (*PlayerValueReport, error) {
	values, err := s.values.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching player values: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return &PlayerValueReport{Summary: SummarizePlayer(values), Games: values}, nil
}

// GameValues returns every player value in a game.
func (s *ValuationService) GameValues(ctx context.Context, gameID string) ([]valuation.PlayerGameValue, error) {
	values, err := s.values.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching game values: %w", err)
	}
	return values, nil
}

// Features returns the latest features, from cache when available.
func (s *ValuationService) Features(ctx context.Context, filter store.FeatureFilter) ([]efficiency.PlayerFeature, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetFeatures(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Feature cache read failed")
		}
		if ok {
			return filterFeatures(cached, filter), nil
		}
	}

	features, err := s.features.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetching features: %w", err)
	}
	return features, nil
}

func stage(r runs.Reporter, message string) {
	if r != nil {
		r.OnStage(message)
	}
}

func presented(features []efficiency.PlayerFeature) []efficiency.PlayerFeature {
	out := make([]efficiency.PlayerFeature, len(features))
	for i, f := range features {
		out[i] = f.Presented()
	}
	return out
}
