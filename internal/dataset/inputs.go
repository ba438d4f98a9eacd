package dataset

import (
	"database/sql"
	"io"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/valuation"
)

// Table names used in error reports.
const (
	BoxScoresTable = "nba_regular_season_player_stats"
	AdvancedTable  = "nba_advanced_player_stats"
	SalariesTable  = "nba_salaries"
)

// Salary table headers, as scraped.
const (
	ColTeam               = "Team"
	ColPlayer             = "Player"
	ColPos                = "Pos"
	ColAge                = "Age"
	ColCapHit             = "Cap Hit"
	ColCapHitPctLeagueCap = "Cap Hit Pct League Cap"
	ColApronSalary        = "Apron Salary"
	ColLuxuryTax          = "Luxury Tax"
	ColCashTotal          = "Cash Total"
	ColCashGuaranteed     = "Cash Guaranteed"
	ColFreeAgentYear      = "Free Agent Year"
)

// SalaryColumns lists the salary columns in output order.
var SalaryColumns = []string{
	ColTeam, ColPlayer, ColPos, ColAge, ColCapHit, ColCapHitPctLeagueCap,
	ColApronSalary, ColLuxuryTax, ColCashTotal, ColCashGuaranteed, ColFreeAgentYear,
}

// ReadBoxScores reads the game-player statistics table. Column names follow
// the stats provider (upper case).
func ReadBoxScores(r io.Reader) ([]valuation.BoxScoreRow, error) {
	t, err := readTable(r, BoxScoresTable, "PLAYER_ID", "PLAYER_NAME", "TEAM_ID", "TEAM_ABBREVIATION", "GAME_ID", "GAME_DATE", "MATCHUP", "WL", "MIN")
	if err != nil {
		return nil, err
	}

	rows := make([]valuation.BoxScoreRow, 0, len(t.rows))
	err = t.each(func(rec record) error {
		playerID, err := rec.requiredInt("PLAYER_ID")
		if err != nil {
			return err
		}
		teamID, err := rec.requiredInt("TEAM_ID")
		if err != nil {
			return err
		}
		gameID, err := rec.requiredStr("GAME_ID")
		if err != nil {
			return err
		}
		team, err := rec.requiredStr("TEAM_ABBREVIATION")
		if err != nil {
			return err
		}
		gameDate, err := rec.requiredDate("GAME_DATE")
		if err != nil {
			return err
		}

		rows = append(rows, valuation.BoxScoreRow{
			SeasonYear:       rec.str("SEASON_YEAR"),
			PlayerID:         playerID,
			PlayerName:       rec.str("PLAYER_NAME"),
			TeamID:           teamID,
			TeamAbbreviation: team,
			TeamName:         rec.str("TEAM_NAME"),
			GameID:           gameID,
			GameDate:         gameDate,
			Matchup:          rec.str("MATCHUP"),
			WL:               rec.str("WL"),
			Minutes:          rec.str("MIN"),
			Box: valuation.BoxScore{
				Points:              rec.float("PTS"),
				FieldGoalsMade:      rec.float("FGM"),
				FieldGoalsAttempted: rec.float("FGA"),
				FieldGoalPct:        rec.float("FG_PCT"),
				ThreesMade:          rec.float("FG3M"),
				ThreesAttempted:     rec.float("FG3A"),
				ThreePointPct:       rec.float("FG3_PCT"),
				FreeThrowsMade:      rec.float("FTM"),
				FreeThrowsAttempted: rec.float("FTA"),
				FreeThrowPct:        rec.float("FT_PCT"),
				OffensiveRebounds:   rec.float("OREB"),
				DefensiveRebounds:   rec.float("DREB"),
				Rebounds:            rec.float("REB"),
				Assists:             rec.float("AST"),
				Turnovers:           rec.float("TOV"),
				Steals:              rec.float("STL"),
				Blocks:              rec.float("BLK"),
				PersonalFouls:       rec.float("PF"),
				PlusMinus:           rec.float("PLUS_MINUS"),
			},
		})
		return nil
	})
	return rows, err
}

// ReadAdvanced reads the advanced-metrics table.
func ReadAdvanced(r io.Reader) ([]valuation.AdvancedRow, error) {
	t, err := readTable(r, AdvancedTable, "GAME_ID", "PLAYER_ID", "TEAM_ID", "TEAM_ABBREVIATION")
	if err != nil {
		return nil, err
	}

	rows := make([]valuation.AdvancedRow, 0, len(t.rows))
	err = t.each(func(rec record) error {
		playerID, err := rec.requiredInt("PLAYER_ID")
		if err != nil {
			return err
		}
		teamID, err := rec.requiredInt("TEAM_ID")
		if err != nil {
			return err
		}
		gameID, err := rec.requiredStr("GAME_ID")
		if err != nil {
			return err
		}
		team, err := rec.requiredStr("TEAM_ABBREVIATION")
		if err != nil {
			return err
		}

		rows = append(rows, valuation.AdvancedRow{
			GameID:           gameID,
			PlayerID:         playerID,
			PlayerName:       rec.str("PLAYER_NAME"),
			TeamID:           teamID,
			TeamAbbreviation: team,
			Minutes:          rec.str("MIN"),
			Metrics: valuation.AdvancedMetrics{
				OffensiveRating:     rec.float("OFF_RATING"),
				DefensiveRating:     rec.float("DEF_RATING"),
				NetRating:           rec.float("NET_RATING"),
				AssistPct:           rec.float("AST_PCT"),
				AssistRatio:         rec.float("AST_RATIO"),
				OffensiveReboundPct: rec.float("OREB_PCT"),
				DefensiveReboundPct: rec.float("DREB_PCT"),
				ReboundPct:          rec.float("REB_PCT"),
				EffectiveFGPct:      rec.float("EFG_PCT"),
				TrueShootingPct:     rec.float("TS_PCT"),
				UsagePct:            rec.float("USG_PCT"),
				PIE:                 rec.float("PIE"),
			},
		})
		return nil
	})
	return rows, err
}

// ReadSalaries reads the scraped salary table.
func ReadSalaries(r io.Reader) ([]efficiency.SalaryRecord, error) {
	t, err := readTable(r, SalariesTable, ColTeam, ColPlayer, ColPos, ColCapHit)
	if err != nil {
		return nil, err
	}

	rows := make([]efficiency.SalaryRecord, 0, len(t.rows))
	err = t.each(func(rec record) error {
		player, err := rec.requiredStr(ColPlayer)
		if err != nil {
			return err
		}

		s := efficiency.SalaryRecord{
			Team:               rec.str(ColTeam),
			Player:             player,
			Position:           rec.str(ColPos),
			Age:                rec.int(ColAge),
			CapHit:             rec.float(ColCapHit),
			CapHitPctLeagueCap: rec.float(ColCapHitPctLeagueCap),
			ApronSalary:        rec.float(ColApronSalary),
			LuxuryTax:          rec.float(ColLuxuryTax),
			CashTotal:          rec.float(ColCashTotal),
			CashGuaranteed:     rec.float(ColCashGuaranteed),
		}
		if fa := rec.str(ColFreeAgentYear); fa != "" {
			s.FreeAgentYear = sql.NullString{String: fa, Valid: true}
		}
		rows = append(rows, s)
		return nil
	})
	return rows, err
}
