package valuation

import "testing"

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"34:27", 34, true},
		{"0:59", 0, true},
		{"12", 12, true},
		{"31.5", 31.5, true},
		{" 28:00 ", 28, true},
		{"", 0, false},
		{"DNP", 0, false},
		{"ab:12", 0, false},
		{"-3", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseMinutes(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseMinutes(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestOpponentAbbreviation(t *testing.T) {
	tests := []struct {
		matchup string
		want    string
		wantOK  bool
	}{
		{"LAL @ BOS", "BOS", true},
		{"BOS vs. LAL", "LAL", true},
		{"LAL-BOS", "", false},
		{"", "", false},
		{"LAL @ ", "", false},
	}

	for _, tt := range tests {
		got, ok := OpponentAbbreviation(tt.matchup)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("OpponentAbbreviation(%q) = (%q, %v), want (%q, %v)", tt.matchup, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNormalizeDerivedFields(t *testing.T) {
	line := GameStatLine{BoxScoreRow: BoxScoreRow{
		Matchup: "BOS vs. LAL",
		WL:      "W",
		Minutes: "30:45",
	}}

	n := Normalize(line)
	if !n.HomeGame {
		t.Error("expected home game")
	}
	if n.WinNumeric != 1 {
		t.Errorf("WinNumeric = %d, want 1", n.WinNumeric)
	}
	if n.MinutesPlayed != 30 || !n.MinutesKnown {
		t.Errorf("minutes = (%v, %v), want (30, true)", n.MinutesPlayed, n.MinutesKnown)
	}
	if n.Opponent != "LAL" {
		t.Errorf("Opponent = %q, want LAL", n.Opponent)
	}

	away := Normalize(GameStatLine{BoxScoreRow: BoxScoreRow{Matchup: "LAL @ BOS", WL: "L"}})
	if away.HomeGame || away.WinNumeric != 0 || away.MinutesKnown {
		t.Errorf("unexpected away line: %+v", away)
	}
}
