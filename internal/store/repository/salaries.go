package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/store"
)

var salaryColumns = []string{
	"season", "team", "player", "pos", "age", "cap_hit", "cap_hit_pct_league_cap",
	"apron_salary", "luxury_tax", "cash_total", "cash_guaranteed", "free_agent_year",
}

// SalaryRepository handles scraped salary data access
type SalaryRepository struct {
	db *store.Database
}

// NewSalaryRepository creates a new salary repository
func NewSalaryRepository(db *store.Database) *SalaryRepository {
	return &SalaryRepository{db: db}
}

// LoadSeason returns every salary record for a season
func (r *SalaryRepository) LoadSeason(ctx context.Context, season string) ([]efficiency.SalaryRecord, error) {
	query := `
		SELECT season, team, player, COALESCE(pos, ''), age, cap_hit, cap_hit_pct_league_cap,
			apron_salary, luxury_tax, cash_total, cash_guaranteed, free_agent_year
		FROM nba_salaries
		WHERE season = $1
		ORDER BY team, player
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying salaries: %w", err)
	}
	defer rows.Close()

	var out []efficiency.SalaryRecord
	for rows.Next() {
		var s efficiency.SalaryRecord
		err := rows.Scan(
			&s.Season, &s.Team, &s.Player, &s.Position, &s.Age, &s.CapHit, &s.CapHitPctLeagueCap,
			&s.ApronSalary, &s.LuxuryTax, &s.CashTotal, &s.CashGuaranteed, &s.FreeAgentYear,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning salary: %w", err)
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

// ReplaceSeason swaps a season's salary snapshot for records in one transaction
func (r *SalaryRepository) ReplaceSeason(ctx context.Context, season string, records []efficiency.SalaryRecord) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin salary replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nba_salaries WHERE season = $1`, season); err != nil {
		return fmt.Errorf("delete salaries: %w", err)
	}

	rows := make([][]interface{}, 0, len(records))
	for _, s := range records {
		rows = append(rows, []interface{}{
			season, s.Team, s.Player, nullString(s.Position), s.Age, s.CapHit, s.CapHitPctLeagueCap,
			s.ApronSalary, s.LuxuryTax, s.CashTotal, s.CashGuaranteed, s.FreeAgentYear,
		})
	}
	if err := copyRows(ctx, tx, "nba_salaries", salaryColumns, rows); err != nil {
		return err
	}

	return tx.Commit()
}
