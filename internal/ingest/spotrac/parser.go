package spotrac

import (
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/moneta/internal/dataset"
	"github.com/fortuna/moneta/internal/efficiency"
)

// ErrNoSalaryTable is returned when a page has no table headed by "Player".
var ErrNoSalaryTable = errors.New("no salary table found")

var jerseyPrefix = regexp.MustCompile(`^\d+\s+`)

// ParseTeamSalaries extracts the active roster contract rows from a team
// overview page. team is the franchise full name stored on every record.
func ParseTeamSalaries(doc *goquery.Document, team, season string) ([]efficiency.SalaryRecord, error) {
	table := findSalaryTable(doc)
	if table == nil {
		return nil, ErrNoSalaryTable
	}

	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, headerName(th.Text()))
	})

	rows := table.Find("tr")
	if rows.First().Find("th").Length() > 0 {
		rows = rows.Slice(1, goquery.ToEnd)
	}

	var records []efficiency.SalaryRecord
	rows.Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 3 {
			return
		}

		values := make(map[string]string, len(headers))
		cells.Each(func(i int, td *goquery.Selection) {
			if i >= len(headers) {
				return
			}
			header := headers[i]
			value := strings.TrimSpace(td.Text())
			if header == dataset.ColPlayer {
				value = CleanPlayerName(value)
			}
			values[header] = value
		})

		if values[dataset.ColPlayer] == "" {
			return
		}
		records = append(records, toRecord(values, team, season))
	})

	return records, nil
}

// findSalaryTable returns the first table whose first non-empty header
// mentions "Player".
func findSalaryTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		first := ""
		table.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
			first = strings.TrimSpace(th.Text())
			return first == ""
		})
		if strings.Contains(first, "Player") {
			found = table
			return false
		}
		return true
	})
	return found
}

func headerName(text string) string {
	name := strings.Join(strings.Fields(text), " ")
	if strings.HasPrefix(name, "Player") {
		return dataset.ColPlayer
	}
	return name
}

// CleanPlayerName keeps the last line of a multi-line cell, otherwise drops
// a leading jersey number.
func CleanPlayerName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "\n"); i >= 0 {
		return strings.TrimSpace(name[i+1:])
	}
	return strings.TrimSpace(jerseyPrefix.ReplaceAllString(name, ""))
}

func toRecord(values map[string]string, team, season string) efficiency.SalaryRecord {
	rec := efficiency.SalaryRecord{
		Season:             season,
		Team:               team,
		Player:             values[dataset.ColPlayer],
		Position:           values[dataset.ColPos],
		CapHit:             amount(values[dataset.ColCapHit]),
		CapHitPctLeagueCap: amount(values[dataset.ColCapHitPctLeagueCap]),
		ApronSalary:        amount(values[dataset.ColApronSalary]),
		LuxuryTax:          amount(values[dataset.ColLuxuryTax]),
		CashTotal:          amount(values[dataset.ColCashTotal]),
		CashGuaranteed:     amount(values[dataset.ColCashGuaranteed]),
	}
	if age := amount(values[dataset.ColAge]); age.Valid {
		rec.Age = sql.NullInt64{Int64: int64(age.Float64), Valid: true}
	}
	if fa := values[dataset.ColFreeAgentYear]; fa != "" && fa != "-" {
		rec.FreeAgentYear = sql.NullString{String: fa, Valid: true}
	}
	return rec
}

// amount parses "$12,345,678" and "9.87%" style cells. Anything else that
// is not a number, such as "-", is missing.
func amount(v string) sql.NullFloat64 {
	v = strings.NewReplacer("$", "", ",", "", "%", "").Replace(strings.TrimSpace(v))
	if v == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
