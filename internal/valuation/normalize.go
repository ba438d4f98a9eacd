package valuation

import (
	"strconv"
	"strings"
)

const (
	awaySeparator = " @ "
	homeSeparator = " vs. "
)

// Normalize derives minutes, venue, result and opponent for a stat line.
func Normalize(line GameStatLine) NormalizedLine {
	minutes, ok := ParseMinutes(line.Minutes)
	opponent, _ := OpponentAbbreviation(line.Matchup)

	return NormalizedLine{
		GameStatLine:  line,
		MinutesPlayed: minutes,
		MinutesKnown:  ok,
		HomeGame:      IsHomeGame(line.Matchup),
		WinNumeric:    WinIndicator(line.WL),
		Opponent:      opponent,
	}
}

// ParseMinutes converts "MM:SS" to whole minutes (seconds truncated) and
// plain numbers to float minutes. Empty or unparseable input reports false.
func ParseMinutes(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if mm, _, found := strings.Cut(raw, ":"); found {
		m, err := strconv.Atoi(strings.TrimSpace(mm))
		if err != nil || m < 0 {
			return 0, false
		}
		return float64(m), true
	}

	m, err := strconv.ParseFloat(raw, 64)
	if err != nil || m < 0 {
		return 0, false
	}
	return m, true
}

// IsHomeGame reports whether the matchup marks a home game ("vs.").
func IsHomeGame(matchup string) bool {
	return strings.Contains(matchup, "vs.")
}

// WinIndicator returns 1 for a win and 0 otherwise.
func WinIndicator(wl string) int {
	if strings.TrimSpace(wl) == "W" {
		return 1
	}
	return 0
}

// OpponentAbbreviation extracts the opponent from "TEAM @ OPP" or
// "TEAM vs. OPP". Any other shape reports false.
func OpponentAbbreviation(matchup string) (string, bool) {
	for _, sep := range []string{awaySeparator, homeSeparator} {
		if _, opp, found := strings.Cut(matchup, sep); found {
			opp = strings.TrimSpace(opp)
			if opp == "" {
				return "", false
			}
			return opp, true
		}
	}
	return "", false
}
