package runs

import (
	"context"

	"github.com/fortuna/moneta/internal/store"
)

// Store persists valuation runs.
type Store interface {
	Create(ctx context.Context, season string, trigger store.RunTrigger) (*store.ValuationRun, error)
	UpdateStatus(ctx context.Context, runID string, status store.RunStatus, message string, lastErr error) error
	RecordCounts(ctx context.Context, runID string, counts store.RunCounts) error
	ResetStuckRuns(ctx context.Context) error
	ClaimNext(ctx context.Context) (*store.ValuationRun, error)
	Get(ctx context.Context, runID string) (*store.ValuationRun, error)
	ListRecent(ctx context.Context, limit int) ([]*store.ValuationRun, error)
}

// Runner executes one valuation run.
type Runner interface {
	Run(ctx context.Context, run *store.ValuationRun, reporter Reporter) (store.RunCounts, error)
}

// Reporter receives progress callbacks from the runner.
type Reporter interface {
	OnStage(message string)
}

// Listener is told about every run that finishes, successfully or not.
type Listener interface {
	RunFinished(ctx context.Context, run *store.ValuationRun)
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	ActiveRun *store.ValuationRun   `json:"active_run,omitempty"`
	History   []*store.ValuationRun `json:"recent_runs,omitempty"`
}
