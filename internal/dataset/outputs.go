package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/valuation"
)

// ValueColumns is the header of the player-game-value table.
var ValueColumns = []string{
	"player_id", "player_name", "team", "game_id", "game_date", "is_home_game",
	"wl_numeric", "minutes", "rating", "opponent_team_abbreviation",
	"opponent_strength", "player_game_value",
}

// FeatureColumns is the header of the player-feature table.
var FeatureColumns = []string{
	"player", "team_abbreviation", "value_avg", "position", "salary",
	"pos_salary_avg", "value_per_dollar", "value_per_dollar_pos_avg",
	"team_value_avg", "value_pct_in_team",
}

// WriteValues writes the player-game-value table.
func WriteValues(w io.Writer, values []valuation.PlayerGameValue) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ValueColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, v := range values {
		date := ""
		if !v.GameDate.IsZero() {
			date = v.GameDate.Format("2006-01-02")
		}
		row := []string{
			strconv.FormatInt(v.PlayerID, 10),
			v.PlayerName,
			v.Team,
			v.GameID,
			date,
			strconv.FormatBool(v.IsHomeGame),
			strconv.Itoa(v.WLNumeric),
			formatFloat(v.Minutes),
			formatFloat(v.Rating),
			v.OpponentTeamAbbreviation.String,
			formatNullFloat(v.OpponentStrength),
			formatFloat(v.PlayerGameValue),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write value row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFeatures writes the player-feature table with presentation rounding.
func WriteFeatures(w io.Writer, features []efficiency.PlayerFeature) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeatureColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, raw := range features {
		f := raw.Presented()
		row := []string{
			f.Player,
			f.TeamAbbreviation,
			formatFloat(f.ValueAvg),
			f.Position,
			formatFloat(f.Salary),
			formatFloat(f.PosSalaryAvg),
			formatFloat(f.ValuePerDollar),
			formatFloat(f.ValuePerDollarPosAvg),
			formatFloat(f.TeamValueAvg),
			formatFloat(f.ValuePctInTeam),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write feature row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSalaries writes scraped salary records with the site's headers.
func WriteSalaries(w io.Writer, records []efficiency.SalaryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SalaryColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range records {
		age := ""
		if s.Age.Valid {
			age = strconv.FormatInt(s.Age.Int64, 10)
		}
		row := []string{
			s.Team,
			s.Player,
			s.Position,
			age,
			formatNullFloat(s.CapHit),
			formatNullFloat(s.CapHitPctLeagueCap),
			formatNullFloat(s.ApronSalary),
			formatNullFloat(s.LuxuryTax),
			formatNullFloat(s.CashTotal),
			formatNullFloat(s.CashGuaranteed),
			s.FreeAgentYear.String,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write salary row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
