package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/valuation"
)

// StatsRepository reads the raw game-player statistics tables
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// LoadBoxScores returns every box-score row for a season, ordered by game and player
func (r *StatsRepository) LoadBoxScores(ctx context.Context, season string) ([]valuation.BoxScoreRow, error) {
	query := `
		SELECT season_year, player_id, player_name, team_id, team_abbreviation, team_name,
			game_id, game_date, matchup, wl, min,
			pts, fgm, fga, fg_pct, fg3m, fg3a, fg3_pct, ftm, fta, ft_pct,
			oreb, dreb, reb, ast, tov, stl, blk, pf, plus_minus
		FROM nba_regular_season_player_stats
		WHERE season_year = $1
		ORDER BY game_id, player_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying box scores: %w", err)
	}
	defer rows.Close()

	var out []valuation.BoxScoreRow
	for rows.Next() {
		var (
			row                        valuation.BoxScoreRow
			seasonYear, name, teamName sql.NullString
			matchup, wl, minutes       sql.NullString
			gameDate                   sql.NullTime
		)
		b := &row.Box
		err := rows.Scan(
			&seasonYear, &row.PlayerID, &name, &row.TeamID, &row.TeamAbbreviation, &teamName,
			&row.GameID, &gameDate, &matchup, &wl, &minutes,
			&b.Points, &b.FieldGoalsMade, &b.FieldGoalsAttempted, &b.FieldGoalPct,
			&b.ThreesMade, &b.ThreesAttempted, &b.ThreePointPct,
			&b.FreeThrowsMade, &b.FreeThrowsAttempted, &b.FreeThrowPct,
			&b.OffensiveRebounds, &b.DefensiveRebounds, &b.Rebounds, &b.Assists,
			&b.Turnovers, &b.Steals, &b.Blocks, &b.PersonalFouls, &b.PlusMinus,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning box score: %w", err)
		}
		row.SeasonYear = seasonYear.String
		row.PlayerName = name.String
		row.TeamName = teamName.String
		row.GameDate = gameDate.Time
		row.Matchup = matchup.String
		row.WL = wl.String
		row.Minutes = minutes.String
		out = append(out, row)
	}

	return out, rows.Err()
}

// LoadAdvanced returns advanced rows for every game played in the season
func (r *StatsRepository) LoadAdvanced(ctx context.Context, season string) ([]valuation.AdvancedRow, error) {
	query := `
		SELECT a.game_id, a.player_id, a.player_name, a.team_id, a.team_abbreviation, a.min,
			a.off_rating, a.def_rating, a.net_rating, a.ast_pct, a.ast_ratio,
			a.oreb_pct, a.dreb_pct, a.reb_pct, a.efg_pct, a.ts_pct, a.usg_pct, a.pie
		FROM nba_advanced_player_stats a
		WHERE a.game_id IN (
			SELECT DISTINCT game_id FROM nba_regular_season_player_stats WHERE season_year = $1
		)
		ORDER BY a.game_id, a.player_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying advanced stats: %w", err)
	}
	defer rows.Close()

	var out []valuation.AdvancedRow
	for rows.Next() {
		var (
			row           valuation.AdvancedRow
			name, minutes sql.NullString
		)
		m := &row.Metrics
		err := rows.Scan(
			&row.GameID, &row.PlayerID, &name, &row.TeamID, &row.TeamAbbreviation, &minutes,
			&m.OffensiveRating, &m.DefensiveRating, &m.NetRating, &m.AssistPct, &m.AssistRatio,
			&m.OffensiveReboundPct, &m.DefensiveReboundPct, &m.ReboundPct,
			&m.EffectiveFGPct, &m.TrueShootingPct, &m.UsagePct, &m.PIE,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning advanced stats: %w", err)
		}
		row.PlayerName = name.String
		row.Minutes = minutes.String
		out = append(out, row)
	}

	return out, rows.Err()
}
