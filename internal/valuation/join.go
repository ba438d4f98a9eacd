package valuation

import "fmt"

type joinKey struct {
	gameID   string
	playerID int64
	teamID   int64
	team     string
}

// JoinAdvanced inner-joins box-score rows with advanced rows on
// (game, player, team id, team abbreviation). Output follows box order;
// box rows with no advanced partner are dropped.
func JoinAdvanced(box []BoxScoreRow, advanced []AdvancedRow) ([]GameStatLine, error) {
	if len(box) == 0 {
		return nil, fmt.Errorf("box scores: %w", ErrEmptyInput)
	}
	if len(advanced) == 0 {
		return nil, fmt.Errorf("advanced metrics: %w", ErrEmptyInput)
	}

	byKey := make(map[joinKey]AdvancedMetrics, len(advanced))
	for _, a := range advanced {
		key := joinKey{gameID: a.GameID, playerID: a.PlayerID, teamID: a.TeamID, team: a.TeamAbbreviation}
		if _, dup := byKey[key]; dup {
			return nil, &DuplicateKeyError{PlayerID: a.PlayerID, GameID: a.GameID}
		}
		byKey[key] = a.Metrics
	}

	lines := make([]GameStatLine, 0, len(box))
	for _, b := range box {
		key := joinKey{gameID: b.GameID, playerID: b.PlayerID, teamID: b.TeamID, team: b.TeamAbbreviation}
		metrics, ok := byKey[key]
		if !ok {
			continue
		}
		lines = append(lines, GameStatLine{BoxScoreRow: b, Advanced: metrics})
	}
	return lines, nil
}
