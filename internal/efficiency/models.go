package efficiency

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// SalaryRecord is one player's contract row for a season as scraped from
// the salary site. Team is the franchise full name.
type SalaryRecord struct {
	Season             string          `json:"season"`
	Team               string          `json:"team"`
	Player             string          `json:"player"`
	Position           string          `json:"pos"`
	Age                sql.NullInt64   `json:"age"`
	CapHit             sql.NullFloat64 `json:"cap_hit"`
	CapHitPctLeagueCap sql.NullFloat64 `json:"cap_hit_pct_league_cap"`
	ApronSalary        sql.NullFloat64 `json:"apron_salary"`
	LuxuryTax          sql.NullFloat64 `json:"luxury_tax"`
	CashTotal          sql.NullFloat64 `json:"cash_total"`
	CashGuaranteed     sql.NullFloat64 `json:"cash_guaranteed"`
	FreeAgentYear      sql.NullString  `json:"free_agent_year"`
}

// PlayerFeature is the per-(player, team) efficiency row. Values are kept
// at full precision; Presented rounds them for display.
type PlayerFeature struct {
	PlayerID             int64   `json:"player_id"`
	Player               string  `json:"player"`
	TeamAbbreviation     string  `json:"team_abbreviation"`
	Games                int     `json:"games"`
	ValueAvg             float64 `json:"value_avg"`
	Position             string  `json:"position"`
	Salary               float64 `json:"salary"`
	PosSalaryAvg         float64 `json:"pos_salary_avg"`
	PosValueAvg          float64 `json:"pos_value_avg"`
	ValuePerDollar       float64 `json:"value_per_dollar"`
	ValuePerDollarPosAvg float64 `json:"value_per_dollar_pos_avg"`
	TeamValueAvg         float64 `json:"team_value_avg"`
	ValuePctInTeam       float64 `json:"value_pct_in_team"`
}

// Presented returns a copy with every derived figure rounded to two places.
func (f PlayerFeature) Presented() PlayerFeature {
	f.ValueAvg = Round2(f.ValueAvg)
	f.Salary = Round2(f.Salary)
	f.PosSalaryAvg = Round2(f.PosSalaryAvg)
	f.PosValueAvg = Round2(f.PosValueAvg)
	f.ValuePerDollar = Round2(f.ValuePerDollar)
	f.ValuePerDollarPosAvg = Round2(f.ValuePerDollarPosAvg)
	f.TeamValueAvg = Round2(f.TeamValueAvg)
	f.ValuePctInTeam = Round2(f.ValuePctInTeam)
	return f
}

// Round2 rounds half away from zero on the shortest decimal form of v,
// so 10.005 becomes 10.01.
func Round2(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}
