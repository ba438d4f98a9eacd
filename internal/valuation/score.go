package valuation

import "math"

// Scorer computes per-game ratings from normalized stat lines.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	model Model
}

// NewScorer creates a scorer for the given model.
func NewScorer(model Model) *Scorer {
	return &Scorer{model: model}
}

// Model returns the scorer's model.
func (s *Scorer) Model() Model {
	return s.model
}

// Rate scores one line. Offensive and defensive ratings each carry the
// advanced sum and win bonus; the composite adds them once more and is
// then dampened by playing time.
func (s *Scorer) Rate(line NormalizedLine) Rating {
	offBox := s.model.Offense.Apply(line)
	defBox := s.model.Defense.Apply(line)
	adv := s.model.Advanced.Apply(line)

	var bonus float64
	if line.WinNumeric == 1 {
		bonus = s.model.WinBonus
	}

	offensive := offBox + adv + bonus
	defensive := defBox + adv + bonus
	composite := (offensive + defensive + adv + bonus) * s.DampeningFactor(line.MinutesPlayed)

	return Rating{
		PlayerID:  line.PlayerID,
		GameID:    line.GameID,
		Offensive: offensive,
		Defensive: defensive,
		Composite: composite,
	}
}

// DampeningFactor returns min(1, minutes/FullMinutes), floored at 0. A model
// with a non-positive FullMinutes does not dampen: any playing time gives 1.
func (s *Scorer) DampeningFactor(minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	if s.model.FullMinutes <= 0 {
		return 1
	}
	return math.Min(1, minutes/s.model.FullMinutes)
}
