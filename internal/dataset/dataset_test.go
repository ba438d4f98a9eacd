package dataset

import (
	"bytes"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/valuation"
)

const boxCSV = `SEASON_YEAR,PLAYER_ID,PLAYER_NAME,TEAM_ID,TEAM_ABBREVIATION,TEAM_NAME,GAME_ID,GAME_DATE,MATCHUP,WL,MIN,PTS,AST,FG_PCT,PLUS_MINUS
2024-25,1628369,Jayson Tatum,1610612738,BOS,Boston Celtics,0022400061,2024-10-22T00:00:00,BOS vs. NYK,W,30:45,37,10,0.571,
2024-25,1629029,Luka Dončić,1610612742,DAL,Dallas Mavericks,0022400062,2024-10-24,DAL vs. SAS,W,35,28,,0.5,12
`

func TestReadBoxScores(t *testing.T) {
	rows, err := ReadBoxScores(strings.NewReader(boxCSV))
	if err != nil {
		t.Fatalf("ReadBoxScores: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	tatum := rows[0]
	if tatum.PlayerID != 1628369 || tatum.TeamID != 1610612738 || tatum.GameID != "0022400061" {
		t.Errorf("ids = %+v", tatum)
	}
	if !tatum.GameDate.Equal(time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("GameDate = %v", tatum.GameDate)
	}
	if tatum.Minutes != "30:45" || tatum.Box.Points.Float64 != 37 {
		t.Errorf("stats = %+v", tatum.Box)
	}
	if tatum.Box.PlusMinus.Valid {
		t.Error("blank PLUS_MINUS should be missing")
	}
	if rows[1].Box.Assists.Valid {
		t.Error("blank AST should be missing")
	}
	if rows[1].PlayerName != "Luka Dončić" {
		t.Errorf("PlayerName = %q", rows[1].PlayerName)
	}
}

func TestReadBoxScoresMissingHeader(t *testing.T) {
	in := "PLAYER_ID,GAME_ID\n1,G1\n"

	_, err := ReadBoxScores(strings.NewReader(in))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("got %v, want ErrMissingColumn", err)
	}
	var colErr *valuation.ColumnError
	if !errors.As(err, &colErr) || colErr.Row != -1 {
		t.Errorf("column error = %+v", colErr)
	}
}

func TestReadBoxScoresBlankKey(t *testing.T) {
	in := "PLAYER_ID,PLAYER_NAME,TEAM_ID,TEAM_ABBREVIATION,GAME_ID,GAME_DATE,MATCHUP,WL,MIN\n" +
		"1,A,10,AAA,G1,2024-11-01,AAA vs. BBB,W,20\n" +
		"2,B,10,AAA,,2024-11-01,AAA vs. BBB,W,20\n"

	_, err := ReadBoxScores(strings.NewReader(in))
	var colErr *valuation.ColumnError
	if !errors.As(err, &colErr) {
		t.Fatalf("got %v, want ColumnError", err)
	}
	if colErr.Column != "GAME_ID" || colErr.Row != 1 {
		t.Errorf("column error = %+v", colErr)
	}
}

func TestReadBoxScoresBadGameDate(t *testing.T) {
	header := "PLAYER_ID,PLAYER_NAME,TEAM_ID,TEAM_ABBREVIATION,GAME_ID,GAME_DATE,MATCHUP,WL,MIN\n"
	tests := []struct {
		name string
		date string
	}{
		{"slashes", "2024/11/05"},
		{"blank", ""},
		{"garbage", "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := header +
				"1,A,10,NYK,G1,2024-11-05,NYK vs. BOS,W,20\n" +
				"2,B,20,BOS,G1," + tt.date + ",BOS @ NYK,L,20\n"

			_, err := ReadBoxScores(strings.NewReader(in))
			var colErr *valuation.ColumnError
			if !errors.As(err, &colErr) {
				t.Fatalf("got %v, want ColumnError", err)
			}
			if colErr.Table != BoxScoresTable || colErr.Column != "GAME_DATE" || colErr.Row != 1 {
				t.Errorf("column error = %+v", colErr)
			}
		})
	}
}

func TestReadEmptyTable(t *testing.T) {
	if _, err := ReadAdvanced(strings.NewReader("")); !errors.Is(err, valuation.ErrEmptyInput) {
		t.Errorf("no header: got %v", err)
	}
	if _, err := ReadAdvanced(strings.NewReader("GAME_ID,PLAYER_ID,TEAM_ID,TEAM_ABBREVIATION\n")); !errors.Is(err, valuation.ErrEmptyInput) {
		t.Errorf("header only: got %v", err)
	}
}

func TestReadSalaries(t *testing.T) {
	in := `Team,Player,Pos,Age,Cap Hit,Cap Hit Pct League Cap,Free Agent Year
Denver Nuggets,Nikola Jokic,C,29,"$51,415,938",36.36%,2028 / UFA
Denver Nuggets,Jamal Murray,PG,,"$36,016,200",,
`
	rows, err := ReadSalaries(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadSalaries: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].CapHit.Float64 != 51415938 || rows[0].CapHitPctLeagueCap.Float64 != 36.36 {
		t.Errorf("numbers = %+v", rows[0])
	}
	if rows[0].Age.Int64 != 29 || rows[0].FreeAgentYear.String != "2028 / UFA" {
		t.Errorf("age/fa = %+v", rows[0])
	}
	if rows[1].Age.Valid || rows[1].FreeAgentYear.Valid {
		t.Errorf("blank fields should be missing: %+v", rows[1])
	}
}

func TestWriteValues(t *testing.T) {
	values := []valuation.PlayerGameValue{
		{
			PlayerID:                 1,
			PlayerName:               "A",
			Team:                     "AAA",
			GameID:                   "G1",
			GameDate:                 time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
			IsHomeGame:               true,
			WLNumeric:                1,
			Minutes:                  30,
			Rating:                   1.5,
			OpponentTeamAbbreviation: sql.NullString{String: "BBB", Valid: true},
			OpponentStrength:         sql.NullFloat64{Float64: 2, Valid: true},
			PlayerGameValue:          1.8,
		},
		{PlayerID: 2, PlayerName: "B", Team: "CCC", GameID: "G2", Rating: 1, PlayerGameValue: 1},
	}

	var buf bytes.Buffer
	if err := WriteValues(&buf, values); err != nil {
		t.Fatalf("WriteValues: %v", err)
	}

	want := strings.Join(ValueColumns, ",") + "\n" +
		"1,A,AAA,G1,2024-11-01,true,1,30,1.5,BBB,2,1.8\n" +
		"2,B,CCC,G2,,false,0,0,1,,,1\n"
	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteFeaturesRounds(t *testing.T) {
	features := []efficiency.PlayerFeature{{
		Player:           "Role Player",
		TeamAbbreviation: "BOS",
		ValueAvg:         10.005,
		Position:         "SF",
		Salary:           1_000_000,
		ValuePerDollar:   10.005,
	}}

	var buf bytes.Buffer
	if err := WriteFeatures(&buf, features); err != nil {
		t.Fatalf("WriteFeatures: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[1] != "Role Player,BOS,10.01,SF,1000000,0,10.01,0,0,0" {
		t.Errorf("row = %q", lines[1])
	}
}
