package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/valuation"
)

var valueColumns = []string{
	"player_id", "player_name", "team", "game_id", "game_date", "is_home_game",
	"wl_numeric", "minutes", "rating", "opponent_team_abbreviation",
	"opponent_strength", "player_game_value",
}

const selectValues = `
	SELECT player_id, player_name, team, game_id, game_date, is_home_game,
		wl_numeric, minutes, rating, opponent_team_abbreviation,
		opponent_strength, player_game_value
	FROM player_values
`

// ValueRepository handles the player_values snapshot table
type ValueRepository struct {
	db *store.Database
}

// NewValueRepository creates a new value repository
func NewValueRepository(db *store.Database) *ValueRepository {
	return &ValueRepository{db: db}
}

// Replace swaps the whole table for values in one transaction
func (r *ValueRepository) Replace(ctx context.Context, values []valuation.PlayerGameValue) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin value replace: %w", err)
	}
	defer tx.Rollback()

	rows := make([][]interface{}, 0, len(values))
	for _, v := range values {
		var gameDate sql.NullTime
		if !v.GameDate.IsZero() {
			gameDate = sql.NullTime{Time: v.GameDate, Valid: true}
		}
		rows = append(rows, []interface{}{
			v.PlayerID, v.PlayerName, v.Team, v.GameID, gameDate, v.IsHomeGame,
			v.WLNumeric, v.Minutes, v.Rating, v.OpponentTeamAbbreviation,
			v.OpponentStrength, v.PlayerGameValue,
		})
	}
	if err := replaceTable(ctx, tx, "player_values", valueColumns, rows); err != nil {
		return err
	}

	return tx.Commit()
}

// ListByPlayer returns a player's game values, oldest first
func (r *ValueRepository) ListByPlayer(ctx context.Context, playerID int64) ([]valuation.PlayerGameValue, error) {
	rows, err := r.db.DB().QueryContext(ctx, selectValues+`
		WHERE player_id = $1
		ORDER BY game_date, game_id
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying player values: %w", err)
	}
	defer rows.Close()

	return scanValues(rows)
}

// ListByGame returns every player value in a game, highest first
func (r *ValueRepository) ListByGame(ctx context.Context, gameID string) ([]valuation.PlayerGameValue, error) {
	rows, err := r.db.DB().QueryContext(ctx, selectValues+`
		WHERE game_id = $1
		ORDER BY team, player_game_value DESC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying game values: %w", err)
	}
	defer rows.Close()

	return scanValues(rows)
}

func scanValues(rows *sql.Rows) ([]valuation.PlayerGameValue, error) {
	var out []valuation.PlayerGameValue
	for rows.Next() {
		var (
			v        valuation.PlayerGameValue
			name     sql.NullString
			gameDate sql.NullTime
		)
		err := rows.Scan(
			&v.PlayerID, &name, &v.Team, &v.GameID, &gameDate, &v.IsHomeGame,
			&v.WLNumeric, &v.Minutes, &v.Rating, &v.OpponentTeamAbbreviation,
			&v.OpponentStrength, &v.PlayerGameValue,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning player value: %w", err)
		}
		v.PlayerName = name.String
		v.GameDate = gameDate.Time
		out = append(out, v)
	}
	return out, rows.Err()
}
