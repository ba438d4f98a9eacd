// Package efficiency turns per-game values and salaries into value-per-dollar
// and team-share features.
package efficiency

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/names"
	"github.com/fortuna/moneta/internal/teams"
	"github.com/fortuna/moneta/internal/valuation"
)

const dollarsPerMillion = 1_000_000

// Stats counts what the aggregator kept and dropped.
type Stats struct {
	PlayerTeams        int `json:"player_teams"`
	Matched            int `json:"matched"`
	UnmatchedSalary    int `json:"unmatched_salary"`
	MissingPosition    int `json:"missing_position"`
	UnknownSalaryTeams int `json:"unknown_salary_teams"`
	NameCollisions     int `json:"name_collisions"`
}

// Result is the output of Aggregate.
type Result struct {
	Features []PlayerFeature
	Stats    Stats
}

// Aggregator builds PlayerFeature rows.
type Aggregator struct {
	logger *logrus.Entry
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *logrus.Entry) *Aggregator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Aggregator{logger: logger.WithField("component", "efficiency")}
}

type playerTeam struct {
	playerID int64
	team     string
}

type valueGroup struct {
	key   playerTeam
	name  string
	sum   float64
	games int
}

type salaryKey struct {
	name string
	team string
}

type meanAccumulator struct {
	sum   float64
	count int
}

func (m meanAccumulator) mean() float64 {
	return safeDiv(m.sum, float64(m.count))
}

// Aggregate averages values per player and team, joins salaries on
// normalized name and team, and derives the efficiency ratios. Players with
// no salary match on their team are dropped.
func (a *Aggregator) Aggregate(values []valuation.PlayerGameValue, salaries []SalaryRecord) (*Result, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("player values: %w", valuation.ErrEmptyInput)
	}
	if len(salaries) == 0 {
		return nil, fmt.Errorf("salaries: %w", valuation.ErrEmptyInput)
	}

	var stats Stats

	groups := averageValues(values)
	stats.PlayerTeams = len(groups)

	salaryIndex, posSalary, err := a.indexSalaries(salaries, &stats)
	if err != nil {
		return nil, err
	}

	features := make([]PlayerFeature, 0, len(groups))
	for _, g := range groups {
		rec, ok := salaryIndex[salaryKey{name: names.Normalize(g.name), team: g.key.team}]
		if !ok {
			stats.UnmatchedSalary++
			continue
		}
		posAvg, ok := posSalary[rec.Position]
		if !ok {
			stats.MissingPosition++
			continue
		}
		features = append(features, PlayerFeature{
			PlayerID:         g.key.playerID,
			Player:           g.name,
			TeamAbbreviation: g.key.team,
			Games:            g.games,
			ValueAvg:         safeDiv(g.sum, float64(g.games)),
			Position:         rec.Position,
			Salary:           rec.CapHit.Float64,
			PosSalaryAvg:     posAvg.mean(),
		})
	}
	stats.Matched = len(features)

	derive(features)
	sortFeatures(features)

	a.logger.WithFields(logrus.Fields{
		"player_teams":     stats.PlayerTeams,
		"matched":          stats.Matched,
		"unmatched_salary": stats.UnmatchedSalary,
	}).Info("✓ Aggregated player features")

	return &Result{Features: features, Stats: stats}, nil
}

func averageValues(values []valuation.PlayerGameValue) []*valueGroup {
	byKey := make(map[playerTeam]*valueGroup)
	var ordered []*valueGroup
	for _, v := range values {
		key := playerTeam{playerID: v.PlayerID, team: teams.NormalizeAbbreviation(v.Team)}
		g, ok := byKey[key]
		if !ok {
			g = &valueGroup{key: key, name: v.PlayerName}
			byKey[key] = g
			ordered = append(ordered, g)
		}
		g.sum += v.PlayerGameValue
		g.games++
	}
	return ordered
}

// indexSalaries keys salaries by (normalized name, team abbreviation) and
// computes the league-wide mean cap hit per position.
func (a *Aggregator) indexSalaries(salaries []SalaryRecord, stats *Stats) (map[salaryKey]SalaryRecord, map[string]meanAccumulator, error) {
	index := make(map[salaryKey]SalaryRecord, len(salaries))
	posSalary := make(map[string]meanAccumulator)

	for i, s := range salaries {
		if s.Player == "" {
			return nil, nil, &valuation.ColumnError{Table: "nba_salaries", Column: "Player", Row: i}
		}

		if s.Position != "" && s.CapHit.Valid {
			acc := posSalary[s.Position]
			acc.sum += s.CapHit.Float64
			acc.count++
			posSalary[s.Position] = acc
		}

		abbr, ok := teams.AbbreviationForName(s.Team)
		if !ok {
			stats.UnknownSalaryTeams++
			continue
		}

		key := salaryKey{name: names.Normalize(s.Player), team: abbr}
		if prev, dup := index[key]; dup {
			stats.NameCollisions++
			a.logger.WithFields(logrus.Fields{
				"player": s.Player,
				"kept":   prev.Player,
				"team":   abbr,
			}).Warn("Salary name collision, keeping first record")
			continue
		}
		index[key] = s
	}
	return index, posSalary, nil
}

// derive fills the position, team and ratio columns over the joined rows.
func derive(features []PlayerFeature) {
	posValue := make(map[string]meanAccumulator)
	teamValue := make(map[string]float64)
	for _, f := range features {
		acc := posValue[f.Position]
		acc.sum += f.ValueAvg
		acc.count++
		posValue[f.Position] = acc
		teamValue[f.TeamAbbreviation] += f.ValueAvg
	}

	for i := range features {
		f := &features[i]
		f.PosValueAvg = posValue[f.Position].mean()
		f.ValuePerDollar = safeDiv(f.ValueAvg, f.Salary/dollarsPerMillion)
		f.ValuePerDollarPosAvg = safeDiv(f.PosValueAvg, f.PosSalaryAvg/dollarsPerMillion)
		f.TeamValueAvg = teamValue[f.TeamAbbreviation]
		f.ValuePctInTeam = 100 * safeDiv(f.ValueAvg, f.TeamValueAvg)
	}
}

func sortFeatures(features []PlayerFeature) {
	sort.SliceStable(features, func(i, j int) bool {
		a, b := features[i], features[j]
		if a.TeamAbbreviation != b.TeamAbbreviation {
			return a.TeamAbbreviation < b.TeamAbbreviation
		}
		if a.ValueAvg != b.ValueAvg {
			return a.ValueAvg > b.ValueAvg
		}
		return a.PlayerID < b.PlayerID
	})
}

// safeDiv returns 0 when the denominator is 0.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
