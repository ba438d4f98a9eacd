package valuation

import (
	"database/sql"
	"fmt"
)

// Term is one weighted statistic.
type Term struct {
	Stat   Stat
	Weight float64
}

// WeightTable is an ordered, immutable set of weighted statistics.
// Terms are summed in declaration order.
type WeightTable struct {
	terms []Term
}

// NewWeightTable builds a table from the given terms. A stat listed twice
// panics; tables are declared once at startup.
func NewWeightTable(name string, terms ...Term) WeightTable {
	seen := make(map[Stat]bool, len(terms))
	owned := make([]Term, len(terms))
	for i, t := range terms {
		if seen[t.Stat] {
			panic(fmt.Sprintf("weight table %s: duplicate stat %s", name, t.Stat))
		}
		seen[t.Stat] = true
		owned[i] = t
	}
	return WeightTable{terms: owned}
}

// Terms returns a copy of the table's terms.
func (w WeightTable) Terms() []Term {
	out := make([]Term, len(w.terms))
	copy(out, w.terms)
	return out
}

// Weight returns the weight for a stat.
func (w WeightTable) Weight(s Stat) (float64, bool) {
	for _, t := range w.terms {
		if t.Stat == s {
			return t.Weight, true
		}
	}
	return 0, false
}

// Apply returns the weighted sum over the line. Missing stats contribute 0.
func (w WeightTable) Apply(line NormalizedLine) float64 {
	var sum float64
	for _, t := range w.terms {
		if v, ok := line.Value(t.Stat); ok {
			sum += v * t.Weight
		}
	}
	return sum
}

// Model bundles the weight tables and constants used for scoring.
type Model struct {
	Offense  WeightTable
	Defense  WeightTable
	Advanced WeightTable

	// WinBonus is added to each rating component after a win.
	WinBonus float64
	// FullMinutes is the playing time at which no dampening applies.
	FullMinutes float64
	// OpponentStrengthWeight scales the opponent's mean composite.
	OpponentStrengthWeight float64
}

// DefaultModel returns the production weights.
func DefaultModel() Model {
	return Model{
		Offense: NewWeightTable("offense",
			Term{StatPoints, 0.033},
			Term{StatAssists, 0.07},
			Term{StatOffensiveRebounds, 0.05},
			Term{StatTurnovers, -0.07},
			Term{StatFieldGoalPct, 0.5},
			Term{StatThreePointPct, 0.4},
			Term{StatFreeThrowPct, 0.2},
			Term{StatMinutes, 0.0025},
			Term{StatPlusMinus, 0.04},
		),
		Defense: NewWeightTable("defense",
			Term{StatDefensiveRebounds, 0.1},
			Term{StatSteals, 0.15},
			Term{StatBlocks, 0.10},
			Term{StatPersonalFouls, -0.02},
			Term{StatMinutes, 0.0025},
		),
		Advanced: NewWeightTable("advanced",
			Term{StatOffensiveRating, 0.15},
			Term{StatDefensiveRating, -0.15},
			Term{StatNetRating, 0.0},
			Term{StatAssistPct, 0.12},
			Term{StatReboundPct, 0.10},
			Term{StatTrueShootingPct, 0.25},
			Term{StatUsagePct, 0.08},
			Term{StatPIE, 0.35},
			Term{StatMinutes, 0.0025},
		),
		WinBonus:               2.0,
		FullMinutes:            36,
		OpponentStrengthWeight: 0.15,
	}
}

// Value returns the line's value for a stat. Missing values report false.
func (l NormalizedLine) Value(s Stat) (float64, bool) {
	var v sql.NullFloat64
	switch s {
	case StatMinutes:
		return l.MinutesPlayed, l.MinutesKnown
	case StatPoints:
		v = l.Box.Points
	case StatAssists:
		v = l.Box.Assists
	case StatOffensiveRebounds:
		v = l.Box.OffensiveRebounds
	case StatDefensiveRebounds:
		v = l.Box.DefensiveRebounds
	case StatRebounds:
		v = l.Box.Rebounds
	case StatSteals:
		v = l.Box.Steals
	case StatBlocks:
		v = l.Box.Blocks
	case StatTurnovers:
		v = l.Box.Turnovers
	case StatPersonalFouls:
		v = l.Box.PersonalFouls
	case StatFieldGoalPct:
		v = l.Box.FieldGoalPct
	case StatThreePointPct:
		v = l.Box.ThreePointPct
	case StatFreeThrowPct:
		v = l.Box.FreeThrowPct
	case StatPlusMinus:
		v = l.Box.PlusMinus
	case StatOffensiveRating:
		v = l.Advanced.OffensiveRating
	case StatDefensiveRating:
		v = l.Advanced.DefensiveRating
	case StatNetRating:
		v = l.Advanced.NetRating
	case StatAssistPct:
		v = l.Advanced.AssistPct
	case StatReboundPct:
		v = l.Advanced.ReboundPct
	case StatTrueShootingPct:
		v = l.Advanced.TrueShootingPct
	case StatUsagePct:
		v = l.Advanced.UsagePct
	case StatPIE:
		v = l.Advanced.PIE
	default:
		return 0, false
	}
	return v.Float64, v.Valid
}
