package service

import (
	"sort"
	"strings"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/teams"
	"github.com/fortuna/moneta/internal/valuation"
)

// PlayerValueReport is a player's game log with summary figures.
type PlayerValueReport struct {
	Summary PlayerSummary               `json:"summary"`
	Games   []valuation.PlayerGameValue `json:"games"`
}

// PlayerSummary aggregates a player's game values.
type PlayerSummary struct {
	PlayerID      int64   `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	GamesPlayed   int     `json:"games_played"`
	ValueAvg      float64 `json:"value_avg"`
	RatingAvg     float64 `json:"rating_avg"`
	HomeValueAvg  float64 `json:"home_value_avg"`
	AwayValueAvg  float64 `json:"away_value_avg"`
	WinValueAvg   float64 `json:"win_value_avg"`
	LossValueAvg  float64 `json:"loss_value_avg"`
	BestGameID    string  `json:"best_game_id"`
	BestGameValue float64 `json:"best_game_value"`
	MinutesAvg    float64 `json:"minutes_avg"`
}

// SummarizePlayer averages values overall and by venue and result.
func SummarizePlayer(values []valuation.PlayerGameValue) PlayerSummary {
	if len(values) == 0 {
		return PlayerSummary{}
	}

	var (
		total, rating, minutes float64
		home, away, win, loss  float64
		nHome, nAway           int
		nWin, nLoss            int
	)
	best := values[0]
	for _, v := range values {
		total += v.PlayerGameValue
		rating += v.Rating
		minutes += v.Minutes
		if v.IsHomeGame {
			home += v.PlayerGameValue
			nHome++
		} else {
			away += v.PlayerGameValue
			nAway++
		}
		if v.WLNumeric == 1 {
			win += v.PlayerGameValue
			nWin++
		} else {
			loss += v.PlayerGameValue
			nLoss++
		}
		if v.PlayerGameValue > best.PlayerGameValue {
			best = v
		}
	}

	n := float64(len(values))
	return PlayerSummary{
		PlayerID:      values[0].PlayerID,
		PlayerName:    values[0].PlayerName,
		GamesPlayed:   len(values),
		ValueAvg:      efficiency.Round2(total / n),
		RatingAvg:     efficiency.Round2(rating / n),
		HomeValueAvg:  efficiency.Round2(safeDiv(home, float64(nHome))),
		AwayValueAvg:  efficiency.Round2(safeDiv(away, float64(nAway))),
		WinValueAvg:   efficiency.Round2(safeDiv(win, float64(nWin))),
		LossValueAvg:  efficiency.Round2(safeDiv(loss, float64(nLoss))),
		BestGameID:    best.GameID,
		BestGameValue: efficiency.Round2(best.PlayerGameValue),
		MinutesAvg:    efficiency.Round2(minutes / n),
	}
}

// filterFeatures applies a feature filter in memory, keeping the order of
// the repository query (best value per dollar first).
func filterFeatures(features []efficiency.PlayerFeature, filter store.FeatureFilter) []efficiency.PlayerFeature {
	team := ""
	if filter.Team != "" {
		team = teams.NormalizeAbbreviation(filter.Team)
	}
	position := strings.ToUpper(filter.Position)

	out := make([]efficiency.PlayerFeature, 0, len(features))
	for _, f := range features {
		if team != "" && f.TeamAbbreviation != team {
			continue
		}
		if position != "" && f.Position != position {
			continue
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ValuePerDollar != out[j].ValuePerDollar {
			return out[i].ValuePerDollar > out[j].ValuePerDollar
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// safeDiv returns 0 when the denominator is 0.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
