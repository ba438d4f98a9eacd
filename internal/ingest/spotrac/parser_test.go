package spotrac

import (
	"context"
	"errors"
	"testing"

	"github.com/fortuna/moneta/internal/efficiency"
)

const teamPage = `<html><body>
<table><thead><tr><th>Rank</th><th>Team</th></tr></thead>
<tbody><tr><td>1</td><td>x</td><td>y</td></tr></tbody></table>
<table>
<thead><tr>
<th>Player (15)</th><th>Pos</th><th>Age</th><th>Cap Hit</th><th>Cap Hit Pct
League Cap</th><th>Apron Salary</th><th>Luxury Tax</th><th>Cash Total</th><th>Cash Guaranteed</th><th>Free Agent Year</th>
</tr></thead>
<tbody>
<tr><td>Jokić
Nikola Jokić</td><td>C</td><td>29</td><td>$51,415,938</td><td>36.33%</td><td>$51,415,938</td><td>$51,415,938</td><td>$51,415,938</td><td>$51,415,938</td><td>2028</td></tr>
<tr><td>27 Jamal Murray</td><td>PG</td><td>27</td><td>$36,016,200</td><td>25.45%</td><td>-</td><td>-</td><td>$36,016,200</td><td>$36,016,200</td><td>-</td></tr>
<tr><td colspan="2">Active Roster Total</td></tr>
</tbody>
</table>
</body></html>`

func TestParseTeamSalaries(t *testing.T) {
	doc, err := ParseHTML(teamPage)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}

	got, err := ParseTeamSalaries(doc, "Denver Nuggets", "2024-25")
	if err != nil {
		t.Fatalf("ParseTeamSalaries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(got), got)
	}

	jokic := got[0]
	if jokic.Player != "Nikola Jokić" || jokic.Team != "Denver Nuggets" || jokic.Season != "2024-25" {
		t.Errorf("unexpected identity: %+v", jokic)
	}
	if jokic.Position != "C" || !jokic.Age.Valid || jokic.Age.Int64 != 29 {
		t.Errorf("unexpected pos/age: %+v", jokic)
	}
	if !jokic.CapHit.Valid || jokic.CapHit.Float64 != 51415938 {
		t.Errorf("cap hit = %+v", jokic.CapHit)
	}
	if !jokic.CapHitPctLeagueCap.Valid || jokic.CapHitPctLeagueCap.Float64 != 36.33 {
		t.Errorf("cap hit pct = %+v", jokic.CapHitPctLeagueCap)
	}
	if !jokic.FreeAgentYear.Valid || jokic.FreeAgentYear.String != "2028" {
		t.Errorf("free agent year = %+v", jokic.FreeAgentYear)
	}

	murray := got[1]
	if murray.Player != "Jamal Murray" {
		t.Errorf("jersey number not stripped: %q", murray.Player)
	}
	if murray.ApronSalary.Valid || murray.FreeAgentYear.Valid {
		t.Errorf("dash cells should be missing: %+v", murray)
	}
}

func TestParseTeamSalariesNoTable(t *testing.T) {
	doc, err := ParseHTML(`<html><body><table><tr><th>Team</th></tr></table></body></html>`)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if _, err := ParseTeamSalaries(doc, "Boston Celtics", "2024-25"); !errors.Is(err, ErrNoSalaryTable) {
		t.Fatalf("expected ErrNoSalaryTable, got %v", err)
	}
}

func TestCleanPlayerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tatum\nJayson Tatum", "Jayson Tatum"},
		{"0 Jayson Tatum", "Jayson Tatum"},
		{"  Jrue Holiday ", "Jrue Holiday"},
		{"76ers Fan", "76ers Fan"},
	}
	for _, tt := range tests {
		if got := CleanPlayerName(tt.in); got != tt.want {
			t.Errorf("CleanPlayerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type pageFetcher struct {
	pages map[string]string
	calls int
}

func (f *pageFetcher) FetchTeamPage(_ context.Context, slug string, _ int) (string, error) {
	f.calls++
	if html, ok := f.pages[slug]; ok {
		return html, nil
	}
	return "", errors.New("404")
}

type recordingWriter struct {
	season  string
	records []efficiency.SalaryRecord
}

func (w *recordingWriter) ReplaceSeason(_ context.Context, season string, records []efficiency.SalaryRecord) error {
	w.season = season
	w.records = records
	return nil
}

func TestIngestSkipsFailedTeams(t *testing.T) {
	fetcher := &pageFetcher{pages: map[string]string{"denver-nuggets": teamPage}}
	writer := &recordingWriter{}
	ing := NewIngester(fetcher, writer, nil)
	pauses := 0
	ing.pause = func(context.Context) error { pauses++; return nil }

	summary, err := ing.Ingest(context.Background(), "2024-25", 2024)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if fetcher.calls != 30 || pauses != 29 {
		t.Errorf("calls = %d, pauses = %d", fetcher.calls, pauses)
	}
	if summary.TeamsScraped != 1 || len(summary.Failed) != 29 || summary.Players != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if writer.season != "2024-25" || len(writer.records) != 2 {
		t.Errorf("writer got season %q with %d records", writer.season, len(writer.records))
	}
}

func TestIngestNothingScraped(t *testing.T) {
	writer := &recordingWriter{}
	ing := NewIngester(&pageFetcher{}, writer, nil)
	ing.pause = func(context.Context) error { return nil }

	if _, err := ing.Ingest(context.Background(), "2024-25", 2024); err == nil {
		t.Fatal("expected error when no team was scraped")
	}
	if writer.records != nil {
		t.Error("snapshot must not be replaced when nothing was scraped")
	}
}

func TestTeamURL(t *testing.T) {
	want := "https://www.spotrac.com/nba/la-clippers/overview/_/year/2024"
	if got := TeamURL("la-clippers", 2024); got != want {
		t.Errorf("TeamURL = %q, want %q", got, want)
	}
}
