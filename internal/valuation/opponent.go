package valuation

import "database/sql"

type teamGame struct {
	gameID string
	team   string
}

type strengthAccumulator struct {
	sum   float64
	count int
}

// OpponentIndex holds the mean composite rating per (game, team).
type OpponentIndex struct {
	teams map[teamGame]strengthAccumulator
}

// NewOpponentIndex indexes the ratings of every value row. Rows must carry
// their final composite rating in Rating.
func NewOpponentIndex(values []PlayerGameValue) *OpponentIndex {
	idx := &OpponentIndex{teams: make(map[teamGame]strengthAccumulator)}
	for _, v := range values {
		key := teamGame{gameID: v.GameID, team: v.Team}
		acc := idx.teams[key]
		acc.sum += v.Rating
		acc.count++
		idx.teams[key] = acc
	}
	return idx
}

// Strength returns the mean composite of the team's players in the game.
func (idx *OpponentIndex) Strength(gameID, team string) (float64, bool) {
	acc, ok := idx.teams[teamGame{gameID: gameID, team: team}]
	if !ok || acc.count == 0 {
		return 0, false
	}
	return acc.sum / float64(acc.count), true
}

// ResolveOpponentStrength fills OpponentStrength on every row whose
// opponent played in the same game and returns the number of rows left
// unresolved.
func ResolveOpponentStrength(values []PlayerGameValue) int {
	idx := NewOpponentIndex(values)

	unresolved := 0
	for i := range values {
		v := &values[i]
		v.OpponentStrength = sql.NullFloat64{}
		if !v.OpponentTeamAbbreviation.Valid {
			unresolved++
			continue
		}
		strength, ok := idx.Strength(v.GameID, v.OpponentTeamAbbreviation.String)
		if !ok {
			unresolved++
			continue
		}
		v.OpponentStrength = sql.NullFloat64{Float64: strength, Valid: true}
	}
	return unresolved
}
