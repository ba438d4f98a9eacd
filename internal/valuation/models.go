package valuation

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Stat names a numeric column that a weight table can reference.
type Stat string

// Box-score statistics.
const (
	StatPoints            Stat = "pts"
	StatAssists           Stat = "ast"
	StatOffensiveRebounds Stat = "oreb"
	StatDefensiveRebounds Stat = "dreb"
	StatRebounds          Stat = "reb"
	StatSteals            Stat = "stl"
	StatBlocks            Stat = "blk"
	StatTurnovers         Stat = "tov"
	StatPersonalFouls     Stat = "pf"
	StatFieldGoalPct      Stat = "fg_pct"
	StatThreePointPct     Stat = "fg3_pct"
	StatFreeThrowPct      Stat = "ft_pct"
	StatPlusMinus         Stat = "plus_minus"
	StatMinutes           Stat = "min"
)

// Advanced metrics.
const (
	StatOffensiveRating Stat = "off_rating"
	StatDefensiveRating Stat = "def_rating"
	StatNetRating       Stat = "net_rating"
	StatAssistPct       Stat = "ast_pct"
	StatReboundPct      Stat = "reb_pct"
	StatTrueShootingPct Stat = "ts_pct"
	StatUsagePct        Stat = "usg_pct"
	StatPIE             Stat = "pie"
)

// BoxScore holds the counted statistics for one player in one game.
// Any field may be missing (Valid == false).
type BoxScore struct {
	Points              sql.NullFloat64 `json:"pts"`
	FieldGoalsMade      sql.NullFloat64 `json:"fgm"`
	FieldGoalsAttempted sql.NullFloat64 `json:"fga"`
	FieldGoalPct        sql.NullFloat64 `json:"fg_pct"`
	ThreesMade          sql.NullFloat64 `json:"fg3m"`
	ThreesAttempted     sql.NullFloat64 `json:"fg3a"`
	ThreePointPct       sql.NullFloat64 `json:"fg3_pct"`
	FreeThrowsMade      sql.NullFloat64 `json:"ftm"`
	FreeThrowsAttempted sql.NullFloat64 `json:"fta"`
	FreeThrowPct        sql.NullFloat64 `json:"ft_pct"`
	OffensiveRebounds   sql.NullFloat64 `json:"oreb"`
	DefensiveRebounds   sql.NullFloat64 `json:"dreb"`
	Rebounds            sql.NullFloat64 `json:"reb"`
	Assists             sql.NullFloat64 `json:"ast"`
	Turnovers           sql.NullFloat64 `json:"tov"`
	Steals              sql.NullFloat64 `json:"stl"`
	Blocks              sql.NullFloat64 `json:"blk"`
	PersonalFouls       sql.NullFloat64 `json:"pf"`
	PlusMinus           sql.NullFloat64 `json:"plus_minus"`
}

// AdvancedMetrics holds the provider-computed metrics for one player in one game.
type AdvancedMetrics struct {
	OffensiveRating     sql.NullFloat64 `json:"off_rating"`
	DefensiveRating     sql.NullFloat64 `json:"def_rating"`
	NetRating           sql.NullFloat64 `json:"net_rating"`
	AssistPct           sql.NullFloat64 `json:"ast_pct"`
	AssistRatio         sql.NullFloat64 `json:"ast_ratio"`
	OffensiveReboundPct sql.NullFloat64 `json:"oreb_pct"`
	DefensiveReboundPct sql.NullFloat64 `json:"dreb_pct"`
	ReboundPct          sql.NullFloat64 `json:"reb_pct"`
	EffectiveFGPct      sql.NullFloat64 `json:"efg_pct"`
	TrueShootingPct     sql.NullFloat64 `json:"ts_pct"`
	UsagePct            sql.NullFloat64 `json:"usg_pct"`
	PIE                 sql.NullFloat64 `json:"pie"`
}

// BoxScoreRow is one row of the raw game-player statistics table.
type BoxScoreRow struct {
	SeasonYear       string    `json:"season_year"`
	PlayerID         int64     `json:"player_id"`
	PlayerName       string    `json:"player_name"`
	TeamID           int64     `json:"team_id"`
	TeamAbbreviation string    `json:"team_abbreviation"`
	TeamName         string    `json:"team_name"`
	GameID           string    `json:"game_id"`
	GameDate         time.Time `json:"game_date"`
	Matchup          string    `json:"matchup"`
	WL               string    `json:"wl"`
	Minutes          string    `json:"min"` // "MM:SS" or whole minutes
	Box              BoxScore  `json:"box"`
}

// AdvancedRow is one row of the raw advanced-metrics table.
type AdvancedRow struct {
	GameID           string          `json:"game_id"`
	PlayerID         int64           `json:"player_id"`
	PlayerName       string          `json:"player_name"`
	TeamID           int64           `json:"team_id"`
	TeamAbbreviation string          `json:"team_abbreviation"`
	Minutes          string          `json:"min"`
	Metrics          AdvancedMetrics `json:"metrics"`
}

// GameStatLine is a box-score row joined with its advanced metrics.
// (PlayerID, GameID) is unique across a season's lines.
type GameStatLine struct {
	BoxScoreRow
	Advanced AdvancedMetrics `json:"advanced"`
}

// NormalizedLine is a GameStatLine with unit-normalized and derived fields.
type NormalizedLine struct {
	GameStatLine
	MinutesPlayed float64
	MinutesKnown  bool
	HomeGame      bool
	WinNumeric    int
	// Opponent is empty when the matchup string names no opponent.
	Opponent string
}

// Rating is the per-game rating triple for a player.
type Rating struct {
	PlayerID  int64   `json:"player_id"`
	GameID    string  `json:"game_id"`
	Offensive float64 `json:"offensive_rating"`
	Defensive float64 `json:"defensive_rating"`
	Composite float64 `json:"composite_rating"`
}

// RatingIndex maps player_id -> game_id -> rating.
type RatingIndex map[int64]map[string]Rating

// Add stores r under its player and game.
func (idx RatingIndex) Add(r Rating) {
	games, ok := idx[r.PlayerID]
	if !ok {
		games = make(map[string]Rating)
		idx[r.PlayerID] = games
	}
	games[r.GameID] = r
}

// Get returns the rating for a player in a game.
func (idx RatingIndex) Get(playerID int64, gameID string) (Rating, bool) {
	r, ok := idx[playerID][gameID]
	return r, ok
}

// PlayerGameValue is the durable, opponent-adjusted valuation of one
// player in one game.
type PlayerGameValue struct {
	PlayerID                 int64           `json:"player_id"`
	PlayerName               string          `json:"player_name"`
	Team                     string          `json:"team"`
	GameID                   string          `json:"game_id"`
	GameDate                 time.Time       `json:"game_date"`
	IsHomeGame               bool            `json:"is_home_game"`
	WLNumeric                int             `json:"wl_numeric"`
	Minutes                  float64         `json:"minutes"`
	Rating                   float64         `json:"rating"`
	OpponentTeamAbbreviation sql.NullString  `json:"opponent_team_abbreviation"`
	OpponentStrength         sql.NullFloat64 `json:"opponent_strength"`
	PlayerGameValue          float64         `json:"player_game_value"`
}

// MarshalJSON renders missing opponent fields as null.
func (v PlayerGameValue) MarshalJSON() ([]byte, error) {
	type alias PlayerGameValue
	out := struct {
		alias
		GameDate                 string   `json:"game_date"`
		OpponentTeamAbbreviation *string  `json:"opponent_team_abbreviation"`
		OpponentStrength         *float64 `json:"opponent_strength"`
	}{alias: alias(v)}

	if !v.GameDate.IsZero() {
		out.GameDate = v.GameDate.Format("2006-01-02")
	}
	if v.OpponentTeamAbbreviation.Valid {
		out.OpponentTeamAbbreviation = &v.OpponentTeamAbbreviation.String
	}
	if v.OpponentStrength.Valid {
		out.OpponentStrength = &v.OpponentStrength.Float64
	}
	return json.Marshal(out)
}
