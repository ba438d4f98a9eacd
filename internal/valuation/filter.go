package valuation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/moneta/internal/teams"
)

// SeasonWindow bounds the regular season. Both ends are exclusive.
type SeasonWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls strictly inside the window.
// A zero bound is open.
func (w SeasonWindow) Contains(d time.Time) bool {
	if !w.Start.IsZero() && !d.After(w.Start) {
		return false
	}
	if !w.End.IsZero() && !d.Before(w.End) {
		return false
	}
	return true
}

// SeasonWindowFor returns a broad window for a season id such as "2024-25":
// October 1 of the first year up to, not including, July 1 of the next.
func SeasonWindowFor(season string) (SeasonWindow, error) {
	first, _, _ := strings.Cut(strings.TrimSpace(season), "-")
	year, err := strconv.Atoi(first)
	if err != nil || year < 1946 {
		return SeasonWindow{}, fmt.Errorf("invalid season %q", season)
	}
	return SeasonWindow{
		Start: time.Date(year, time.September, 30, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+1, time.July, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

// FilterRegularSeason keeps rows inside the window whose team is one of
// the league's franchises. Exhibition opponents and all-star rosters are
// dropped by the team check.
func FilterRegularSeason(rows []BoxScoreRow, window SeasonWindow) []BoxScoreRow {
	out := make([]BoxScoreRow, 0, len(rows))
	for _, r := range rows {
		if !window.Contains(r.GameDate) {
			continue
		}
		if !teams.IsLeagueTeam(r.TeamAbbreviation) {
			continue
		}
		out = append(out, r)
	}
	return out
}
