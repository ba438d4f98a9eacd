package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/valuation"
)

var gameDay = time.Date(2024, 11, 12, 0, 0, 0, 0, time.UTC)

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func boxRow(playerID, teamID int64, name, team, matchup, wl string, points float64) valuation.BoxScoreRow {
	return valuation.BoxScoreRow{
		SeasonYear:       "2024-25",
		PlayerID:         playerID,
		PlayerName:       name,
		TeamID:           teamID,
		TeamAbbreviation: team,
		GameID:           "0022400200",
		GameDate:         gameDay,
		Matchup:          matchup,
		WL:               wl,
		Minutes:          "36:00",
		Box:              valuation.BoxScore{Points: nf(points)},
	}
}

func advRow(b valuation.BoxScoreRow) valuation.AdvancedRow {
	return valuation.AdvancedRow{
		GameID:           b.GameID,
		PlayerID:         b.PlayerID,
		PlayerName:       b.PlayerName,
		TeamID:           b.TeamID,
		TeamAbbreviation: b.TeamAbbreviation,
	}
}

func fixture() ([]valuation.BoxScoreRow, []valuation.AdvancedRow, []efficiency.SalaryRecord) {
	box := []valuation.BoxScoreRow{
		boxRow(1, 1610612738, "Jayson Tatum", "BOS", "BOS vs. NYK", "L", 10),
		boxRow(2, 1610612752, "Jalen Brunson", "NYK", "NYK @ BOS", "L", 30),
	}
	// Preseason game outside the window.
	pre := boxRow(1, 1610612738, "Jayson Tatum", "BOS", "BOS vs. NYK", "L", 40)
	pre.GameID = "0012400001"
	pre.GameDate = time.Date(2024, 10, 4, 0, 0, 0, 0, time.UTC)
	box = append(box, pre)

	adv := []valuation.AdvancedRow{advRow(box[0]), advRow(box[1]), advRow(pre)}
	salaries := []efficiency.SalaryRecord{
		{Team: "Boston Celtics", Player: "Jayson Tatum", Position: "SF", CapHit: nf(34_848_340)},
		{Team: "New York Knicks", Player: "Jalen Brunson", Position: "PG", CapHit: nf(24_960_001)},
	}
	return box, adv, salaries
}

var regularSeason = WithSeasonWindow("2024-25", valuation.SeasonWindow{
	Start: time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC),
})

func newTestService() *ValuationService {
	engine := valuation.NewEngine(valuation.NewScorer(valuation.DefaultModel()))
	return NewValuationService(nil, nil, &memoryValues{}, &memoryFeatures{}, engine, efficiency.NewAggregator(nil), nil, regularSeason)
}

func TestEvaluateEndToEnd(t *testing.T) {
	box, adv, salaries := fixture()

	out, err := newTestService().Evaluate(context.Background(), "2024-25", box, adv, salaries)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if out.Counts.InputRows != 3 || out.Counts.JoinedRows != 2 || out.Counts.ValuedRows != 2 {
		t.Errorf("counts = %+v", out.Counts)
	}
	if len(out.Values) != 2 {
		t.Fatalf("got %d values, want 2", len(out.Values))
	}

	// Each line rates 0.033*points + 0.45 at full minutes.
	tatum, brunson := out.Values[0], out.Values[1]
	if math.Abs(tatum.PlayerGameValue-(0.78+0.15*1.44)) > 1e-6 {
		t.Errorf("tatum value = %v", tatum.PlayerGameValue)
	}
	if math.Abs(brunson.PlayerGameValue-(1.44+0.15*0.78)) > 1e-6 {
		t.Errorf("brunson value = %v", brunson.PlayerGameValue)
	}

	if len(out.Features) != 2 || out.Counts.PlayersValued != 2 {
		t.Fatalf("features = %+v", out.Features)
	}
	for _, f := range out.Features {
		if math.Abs(f.ValuePctInTeam-100) > 1e-9 {
			t.Errorf("%s share = %v, want 100", f.Player, f.ValuePctInTeam)
		}
	}
}

func TestEvaluateNoRowsInWindow(t *testing.T) {
	box, adv, salaries := fixture()
	box = box[2:]

	_, err := newTestService().Evaluate(context.Background(), "2024-25", box, adv, salaries)
	if !errors.Is(err, valuation.ErrEmptyInput) {
		t.Errorf("got %v, want ErrEmptyInput", err)
	}
}

type memoryValues struct {
	values []valuation.PlayerGameValue
}

func (m *memoryValues) Replace(_ context.Context, values []valuation.PlayerGameValue) error {
	m.values = append([]valuation.PlayerGameValue(nil), values...)
	return nil
}

func (m *memoryValues) ListByPlayer(_ context.Context, playerID int64) ([]valuation.PlayerGameValue, error) {
	var out []valuation.PlayerGameValue
	for _, v := range m.values {
		if v.PlayerID == playerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memoryValues) ListByGame(_ context.Context, gameID string) ([]valuation.PlayerGameValue, error) {
	var out []valuation.PlayerGameValue
	for _, v := range m.values {
		if v.GameID == gameID {
			out = append(out, v)
		}
	}
	return out, nil
}

type memoryFeatures struct {
	features []efficiency.PlayerFeature
	listed   int
}

func (m *memoryFeatures) Replace(_ context.Context, features []efficiency.PlayerFeature) error {
	m.features = append([]efficiency.PlayerFeature(nil), features...)
	return nil
}

func (m *memoryFeatures) List(_ context.Context, filter store.FeatureFilter) ([]efficiency.PlayerFeature, error) {
	m.listed++
	return filterFeatures(m.features, filter), nil
}

type memoryCache struct {
	features []efficiency.PlayerFeature
	set      bool
}

func (m *memoryCache) SetFeatures(_ context.Context, features []efficiency.PlayerFeature) error {
	m.features, m.set = features, true
	return nil
}

func (m *memoryCache) GetFeatures(context.Context) ([]efficiency.PlayerFeature, bool, error) {
	return m.features, m.set, nil
}

type memoryStats struct {
	box []valuation.BoxScoreRow
	adv []valuation.AdvancedRow
}

func (m memoryStats) LoadBoxScores(context.Context, string) ([]valuation.BoxScoreRow, error) {
	return m.box, nil
}

func (m memoryStats) LoadAdvanced(context.Context, string) ([]valuation.AdvancedRow, error) {
	return m.adv, nil
}

type memorySalaries []efficiency.SalaryRecord

func (m memorySalaries) LoadSeason(context.Context, string) ([]efficiency.SalaryRecord, error) {
	return m, nil
}

type stageRecorder []string

func (s *stageRecorder) OnStage(message string) { *s = append(*s, message) }

func TestRunPersistsAndCaches(t *testing.T) {
	box, adv, salaries := fixture()
	values := &memoryValues{}
	features := &memoryFeatures{}
	cache := &memoryCache{}

	engine := valuation.NewEngine(valuation.NewScorer(valuation.DefaultModel()))
	svc := NewValuationService(memoryStats{box: box, adv: adv}, memorySalaries(salaries), values, features,
		engine, efficiency.NewAggregator(nil), nil, WithCache(cache), regularSeason)

	var stages stageRecorder
	counts, err := svc.Run(context.Background(), &store.ValuationRun{RunID: "r1", Season: "2024-25"}, &stages)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if counts.ValuedRows != 2 || counts.PlayersValued != 2 {
		t.Errorf("counts = %+v", counts)
	}
	if len(values.values) != 2 || len(features.features) != 2 {
		t.Errorf("persisted %d values and %d features", len(values.values), len(features.features))
	}
	if !cache.set || len(cache.features) != 2 {
		t.Error("features were not cached")
	}
	if len(stages) == 0 {
		t.Error("no stages reported")
	}

	got, err := svc.Features(context.Background(), store.FeatureFilter{Team: "nyk"})
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if len(got) != 1 || got[0].Player != "Jalen Brunson" {
		t.Errorf("filtered features = %+v", got)
	}
	if features.listed != 0 {
		t.Error("Features should be served from cache")
	}

	report, err := svc.PlayerValues(context.Background(), 2)
	if err != nil || report == nil {
		t.Fatalf("PlayerValues = (%v, %v)", report, err)
	}
	if report.Summary.GamesPlayed != 1 || report.Summary.AwayValueAvg == 0 {
		t.Errorf("summary = %+v", report.Summary)
	}
}

func TestSummarizePlayer(t *testing.T) {
	values := []valuation.PlayerGameValue{
		{PlayerID: 7, PlayerName: "A", GameID: "G1", IsHomeGame: true, WLNumeric: 1, Minutes: 30, Rating: 10, PlayerGameValue: 12},
		{PlayerID: 7, PlayerName: "A", GameID: "G2", IsHomeGame: false, WLNumeric: 0, Minutes: 20, Rating: 4, PlayerGameValue: 5},
		{PlayerID: 7, PlayerName: "A", GameID: "G3", IsHomeGame: true, WLNumeric: 0, Minutes: 25, Rating: 6, PlayerGameValue: 7},
	}

	s := SummarizePlayer(values)
	if s.GamesPlayed != 3 || s.ValueAvg != 8 || s.HomeValueAvg != 9.5 || s.AwayValueAvg != 5 {
		t.Errorf("summary = %+v", s)
	}
	if s.WinValueAvg != 12 || s.LossValueAvg != 6 || s.BestGameID != "G1" || s.MinutesAvg != 25 {
		t.Errorf("summary = %+v", s)
	}
}
