package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/teams"
)

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetAll returns all NBA teams
func (r *TeamRepository) GetAll(ctx context.Context) ([]*store.Team, error) {
	query := `
		SELECT abbreviation, full_name, spotrac_slug
		FROM teams
		ORDER BY abbreviation
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var out []*store.Team
	for rows.Next() {
		team := &store.Team{}
		if err := rows.Scan(&team.Abbreviation, &team.FullName, &team.SpotracSlug); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		out = append(out, team)
	}

	return out, rows.Err()
}

// GetByAbbreviation finds a team by abbreviation (e.g., "LAL", "BOS"). Provider
// aliases such as "GS" resolve to the canonical code.
func (r *TeamRepository) GetByAbbreviation(ctx context.Context, abbr string) (*store.Team, error) {
	query := `
		SELECT abbreviation, full_name, spotrac_slug
		FROM teams
		WHERE abbreviation = $1
	`

	team := &store.Team{}
	err := r.db.DB().QueryRowContext(ctx, query, teams.NormalizeAbbreviation(abbr)).Scan(
		&team.Abbreviation, &team.FullName, &team.SpotracSlug,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return team, nil
}
