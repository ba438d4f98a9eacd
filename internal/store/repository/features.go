package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/teams"
)

var featureColumns = []string{
	"player_id", "player", "team_abbreviation", "games", "value_avg", "position",
	"salary", "pos_salary_avg", "pos_value_avg", "value_per_dollar",
	"value_per_dollar_pos_avg", "team_value_avg", "value_pct_in_team",
}

// FeatureRepository handles the player_features snapshot table
type FeatureRepository struct {
	db *store.Database
}

// NewFeatureRepository creates a new feature repository
func NewFeatureRepository(db *store.Database) *FeatureRepository {
	return &FeatureRepository{db: db}
}

// Replace swaps the whole table for features, stored with presentation rounding
func (r *FeatureRepository) Replace(ctx context.Context, features []efficiency.PlayerFeature) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feature replace: %w", err)
	}
	defer tx.Rollback()

	rows := make([][]interface{}, 0, len(features))
	for _, raw := range features {
		f := raw.Presented()
		rows = append(rows, []interface{}{
			f.PlayerID, f.Player, f.TeamAbbreviation, f.Games, f.ValueAvg, f.Position,
			f.Salary, f.PosSalaryAvg, f.PosValueAvg, f.ValuePerDollar,
			f.ValuePerDollarPosAvg, f.TeamValueAvg, f.ValuePctInTeam,
		})
	}
	if err := replaceTable(ctx, tx, "player_features", featureColumns, rows); err != nil {
		return err
	}

	return tx.Commit()
}

// List returns features matching the filter, best value per dollar first
func (r *FeatureRepository) List(ctx context.Context, filter store.FeatureFilter) ([]efficiency.PlayerFeature, error) {
	query := `
		SELECT player_id, player, team_abbreviation, games, value_avg, position,
			salary, pos_salary_avg, pos_value_avg, value_per_dollar,
			value_per_dollar_pos_avg, team_value_avg, value_pct_in_team
		FROM player_features
	`

	var (
		conds []string
		args  []interface{}
	)
	if filter.Team != "" {
		args = append(args, teams.NormalizeAbbreviation(filter.Team))
		conds = append(conds, fmt.Sprintf("team_abbreviation = $%d", len(args)))
	}
	if filter.Position != "" {
		args = append(args, strings.ToUpper(filter.Position))
		conds = append(conds, fmt.Sprintf("position = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY value_per_dollar DESC, player_id"

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying features: %w", err)
	}
	defer rows.Close()

	var out []efficiency.PlayerFeature
	for rows.Next() {
		var f efficiency.PlayerFeature
		err := rows.Scan(
			&f.PlayerID, &f.Player, &f.TeamAbbreviation, &f.Games, &f.ValueAvg, &f.Position,
			&f.Salary, &f.PosSalaryAvg, &f.PosValueAvg, &f.ValuePerDollar,
			&f.ValuePerDollarPosAvg, &f.TeamValueAvg, &f.ValuePctInTeam,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning feature: %w", err)
		}
		out = append(out, f)
	}

	return out, rows.Err()
}
