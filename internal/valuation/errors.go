package valuation

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a required input table has no rows.
var ErrEmptyInput = errors.New("input table is empty")

// ColumnError reports a required column missing or blank in an input row.
// Row is the zero-based data row, or -1 when the column is absent from the
// table header.
type ColumnError struct {
	Table  string
	Column string
	Row    int
}

func (e *ColumnError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: required column %q not present", e.Table, e.Column)
	}
	return fmt.Sprintf("%s: required column %q missing at row %d", e.Table, e.Column, e.Row)
}

// DuplicateKeyError reports two stat lines for the same player and game.
type DuplicateKeyError struct {
	PlayerID int64
	GameID   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate stat line for player %d in game %s", e.PlayerID, e.GameID)
}
