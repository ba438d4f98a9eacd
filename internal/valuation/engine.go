package valuation

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RunStats summarizes one valuation pass.
type RunStats struct {
	InputRows           int `json:"input_rows"`
	ValuedRows          int `json:"valued_rows"`
	MissingMinutes      int `json:"missing_minutes"`
	UnresolvedOpponents int `json:"unresolved_opponents"`
}

// Result is the output of Engine.Valuate.
type Result struct {
	Values  []PlayerGameValue
	Ratings RatingIndex
	Stats   RunStats
}

// Engine runs scoring and opponent adjustment over a season of lines.
type Engine struct {
	scorer  *Scorer
	workers int
	logger  *logrus.Entry
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of scoring goroutines.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine around the scorer.
func NewEngine(scorer *Scorer, opts ...Option) *Engine {
	e := &Engine{
		scorer:  scorer,
		workers: runtime.GOMAXPROCS(0),
		logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithField("component", "valuation")
	return e
}

// Valuate scores every line, resolves opponent strength once all
// composites are known, and returns values in input order.
func (e *Engine) Valuate(ctx context.Context, lines []GameStatLine) (*Result, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("game stats: %w", ErrEmptyInput)
	}
	if err := validate(lines); err != nil {
		return nil, err
	}

	values := make([]PlayerGameValue, len(lines))
	ratings := make([]Rating, len(lines))
	missing := make([]bool, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(lines) + e.workers - 1) / e.workers
	for start := 0; start < len(lines); start += chunk {
		end := min(start+chunk, len(lines))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				n := Normalize(lines[i])
				r := e.scorer.Rate(n)
				ratings[i] = r
				missing[i] = !n.MinutesKnown
				values[i] = newValue(n, r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to score lines: %w", err)
	}

	stats := RunStats{InputRows: len(lines), ValuedRows: len(values)}
	index := make(RatingIndex)
	for i, r := range ratings {
		index.Add(r)
		if missing[i] {
			stats.MissingMinutes++
		}
	}

	stats.UnresolvedOpponents = ResolveOpponentStrength(values)

	weight := e.scorer.Model().OpponentStrengthWeight
	for i := range values {
		v := &values[i]
		v.PlayerGameValue = v.Rating
		if v.OpponentStrength.Valid {
			v.PlayerGameValue += weight * v.OpponentStrength.Float64
		}
	}

	e.logger.WithFields(logrus.Fields{
		"rows":                 stats.ValuedRows,
		"missing_minutes":      stats.MissingMinutes,
		"unresolved_opponents": stats.UnresolvedOpponents,
	}).Info("✓ Valuated player games")

	return &Result{Values: values, Ratings: index, Stats: stats}, nil
}

func newValue(n NormalizedLine, r Rating) PlayerGameValue {
	v := PlayerGameValue{
		PlayerID:   n.PlayerID,
		PlayerName: n.PlayerName,
		Team:       n.TeamAbbreviation,
		GameID:     n.GameID,
		GameDate:   n.GameDate,
		IsHomeGame: n.HomeGame,
		WLNumeric:  n.WinNumeric,
		Minutes:    n.MinutesPlayed,
		Rating:     r.Composite,
	}
	if n.Opponent != "" {
		v.OpponentTeamAbbreviation = sql.NullString{String: n.Opponent, Valid: true}
	}
	return v
}

func validate(lines []GameStatLine) error {
	type key struct {
		playerID int64
		gameID   string
	}
	seen := make(map[key]struct{}, len(lines))

	for i, l := range lines {
		switch {
		case l.PlayerID == 0:
			return &ColumnError{Table: "game_stats", Column: "player_id", Row: i}
		case l.GameID == "":
			return &ColumnError{Table: "game_stats", Column: "game_id", Row: i}
		case l.TeamAbbreviation == "":
			return &ColumnError{Table: "game_stats", Column: "team_abbreviation", Row: i}
		}

		k := key{playerID: l.PlayerID, gameID: l.GameID}
		if _, dup := seen[k]; dup {
			return &DuplicateKeyError{PlayerID: l.PlayerID, GameID: l.GameID}
		}
		seen[k] = struct{}{}
	}
	return nil
}
