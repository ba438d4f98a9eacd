package valuation

import (
	"database/sql"
	"math"
	"testing"
)

const epsilon = 1e-9

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func fullLine() GameStatLine {
	return GameStatLine{
		BoxScoreRow: BoxScoreRow{
			PlayerID:         1628369,
			PlayerName:       "Jayson Tatum",
			TeamAbbreviation: "BOS",
			GameID:           "0022400061",
			Matchup:          "BOS vs. NYK",
			WL:               "W",
			Minutes:          "30:45",
			Box: BoxScore{
				Points:            nf(25),
				Assists:           nf(6),
				OffensiveRebounds: nf(2),
				DefensiveRebounds: nf(5),
				Steals:            nf(1),
				Blocks:            nf(1),
				Turnovers:         nf(3),
				PersonalFouls:     nf(2),
				FieldGoalPct:      nf(0.5),
				ThreePointPct:     nf(0.4),
				FreeThrowPct:      nf(0.8),
				PlusMinus:         nf(10),
			},
		},
		Advanced: AdvancedMetrics{
			OffensiveRating: nf(115),
			DefensiveRating: nf(105),
			NetRating:       nf(10),
			AssistPct:       nf(0.25),
			ReboundPct:      nf(0.1),
			TrueShootingPct: nf(0.6),
			UsagePct:        nf(0.28),
			PIE:             nf(0.15),
		},
	}
}

func TestRateFullLine(t *testing.T) {
	s := NewScorer(DefaultModel())
	r := s.Rate(Normalize(fullLine()))

	if !approx(r.Offensive, 6.0199) {
		t.Errorf("Offensive = %v, want 6.0199", r.Offensive)
	}
	if !approx(r.Defensive, 4.6249) {
		t.Errorf("Defensive = %v, want 4.6249", r.Defensive)
	}
	if !approx(r.Composite, 12.070583333333333) {
		t.Errorf("Composite = %v, want 12.070583333333333", r.Composite)
	}
	if r.PlayerID != 1628369 || r.GameID != "0022400061" {
		t.Errorf("unexpected key: %d/%s", r.PlayerID, r.GameID)
	}
}

func TestRateMissingStatsContributeZero(t *testing.T) {
	line := GameStatLine{BoxScoreRow: BoxScoreRow{
		WL:      "L",
		Minutes: "18:00",
		Box: BoxScore{
			Points:            nf(10),
			Assists:           nf(2),
			DefensiveRebounds: nf(3),
		},
	}}

	r := NewScorer(DefaultModel()).Rate(Normalize(line))
	if !approx(r.Offensive, 0.56) {
		t.Errorf("Offensive = %v, want 0.56", r.Offensive)
	}
	if !approx(r.Defensive, 0.39) {
		t.Errorf("Defensive = %v, want 0.39", r.Defensive)
	}
	if !approx(r.Composite, 0.4975) {
		t.Errorf("Composite = %v, want 0.4975", r.Composite)
	}
}

func TestDampeningFactor(t *testing.T) {
	s := NewScorer(DefaultModel())

	tests := []struct {
		minutes float64
		want    float64
	}{
		{0, 0},
		{18, 0.5},
		{36, 1},
		{50, 1},
	}
	for _, tt := range tests {
		if got := s.DampeningFactor(tt.minutes); !approx(got, tt.want) {
			t.Errorf("DampeningFactor(%v) = %v, want %v", tt.minutes, got, tt.want)
		}
	}
}

func TestDampeningDisabledByNonPositiveFullMinutes(t *testing.T) {
	for _, full := range []float64{0, -10} {
		model := DefaultModel()
		model.FullMinutes = full
		s := NewScorer(model)

		if got := s.DampeningFactor(40); got != 1 {
			t.Errorf("FullMinutes %v: DampeningFactor(40) = %v, want 1", full, got)
		}
		if got := s.DampeningFactor(0); got != 0 {
			t.Errorf("FullMinutes %v: DampeningFactor(0) = %v, want 0", full, got)
		}
		if r := s.Rate(Normalize(fullLine())); r.Composite == 0 {
			t.Errorf("FullMinutes %v: composite zeroed", full)
		}
	}
}

func TestRateMissingMinutesZeroesComposite(t *testing.T) {
	line := fullLine()
	line.Minutes = ""

	r := NewScorer(DefaultModel()).Rate(Normalize(line))
	if r.Composite != 0 {
		t.Errorf("Composite = %v, want 0", r.Composite)
	}
	if r.Offensive == 0 {
		t.Error("offensive rating should not be dampened")
	}
}

func TestWeightTableTermsCopy(t *testing.T) {
	table := NewWeightTable("t", Term{StatPoints, 1})
	terms := table.Terms()
	terms[0].Weight = 99

	if w, _ := table.Weight(StatPoints); w != 1 {
		t.Errorf("weight mutated through Terms(): %v", w)
	}
}

func TestNewWeightTableDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate stat")
		}
	}()
	NewWeightTable("dup", Term{StatPoints, 1}, Term{StatPoints, 2})
}
