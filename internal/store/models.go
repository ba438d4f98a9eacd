package store

import (
	"database/sql"
	"time"
)

// RunStatus represents the lifecycle state of a valuation run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunTrigger records what started a run.
type RunTrigger string

const (
	RunTriggerManual    RunTrigger = "manual"
	RunTriggerScheduled RunTrigger = "scheduled"
	RunTriggerCLI       RunTrigger = "cli"
)

// ValuationRun is one execution of the valuation pipeline for a season.
type ValuationRun struct {
	RunID               string         `json:"run_id" db:"run_id"`
	Season              string         `json:"season" db:"season"`
	Trigger             RunTrigger     `json:"trigger" db:"trigger"`
	Status              RunStatus      `json:"status" db:"status"`
	StatusMessage       sql.NullString `json:"status_message,omitempty" db:"status_message"`
	InputRows           int            `json:"input_rows" db:"input_rows"`
	JoinedRows          int            `json:"joined_rows" db:"joined_rows"`
	ValuedRows          int            `json:"valued_rows" db:"valued_rows"`
	UnresolvedOpponents int            `json:"unresolved_opponents" db:"unresolved_opponents"`
	PlayersValued       int            `json:"players_valued" db:"players_valued"`
	UnmatchedSalary     int            `json:"unmatched_salary" db:"unmatched_salary"`
	LastError           sql.NullString `json:"last_error,omitempty" db:"last_error"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
	StartedAt           sql.NullTime   `json:"started_at,omitempty" db:"started_at"`
	CompletedAt         sql.NullTime   `json:"completed_at,omitempty" db:"completed_at"`
}

// Copy returns a shallow copy to prevent external mutation.
func (r *ValuationRun) Copy() *ValuationRun {
	if r == nil {
		return nil
	}
	cpy := *r
	return &cpy
}

// RunCounts are the statistics recorded when a run completes.
type RunCounts struct {
	InputRows           int `json:"input_rows"`
	JoinedRows          int `json:"joined_rows"`
	ValuedRows          int `json:"valued_rows"`
	UnresolvedOpponents int `json:"unresolved_opponents"`
	PlayersValued       int `json:"players_valued"`
	UnmatchedSalary     int `json:"unmatched_salary"`
}

// Team is a row of the teams table.
type Team struct {
	Abbreviation string `json:"abbreviation" db:"abbreviation"`
	FullName     string `json:"full_name" db:"full_name"`
	SpotracSlug  string `json:"spotrac_slug" db:"spotrac_slug"`
}

// FeatureFilter narrows a player-feature query. Empty fields match all.
type FeatureFilter struct {
	Team     string
	Position string
}
