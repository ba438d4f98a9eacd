package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortuna/moneta/internal/ingest/spotrac"
	"github.com/fortuna/moneta/internal/store"
)

type fakeEnqueuer struct {
	failures int
	calls    int
	seasons  []string
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, season string, trigger store.RunTrigger) (*store.ValuationRun, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("database unavailable")
	}
	f.seasons = append(f.seasons, season)
	return &store.ValuationRun{RunID: "run-1", Season: season, Trigger: trigger, Status: store.RunStatusQueued}, nil
}

type fakeSalaries struct {
	err   error
	calls int
}

func (f *fakeSalaries) Ingest(context.Context, string, int) (spotrac.Summary, error) {
	f.calls++
	return spotrac.Summary{TeamsScraped: 30, Players: 450}, f.err
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Season = "2024-25"
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestNextRun(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{"before hour", time.Date(2025, 1, 10, 4, 30, 0, 0, loc), 6, time.Date(2025, 1, 10, 6, 0, 0, 0, loc)},
		{"after hour", time.Date(2025, 1, 10, 7, 0, 0, 0, loc), 6, time.Date(2025, 1, 11, 6, 0, 0, 0, loc)},
		{"exactly on hour", time.Date(2025, 1, 10, 6, 0, 0, 0, loc), 6, time.Date(2025, 1, 11, 6, 0, 0, 0, loc)},
		{"month end", time.Date(2025, 1, 31, 23, 0, 0, 0, loc), 3, time.Date(2025, 2, 1, 3, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextRun(tt.now, tt.hour); !got.Equal(tt.want) {
				t.Errorf("NextRun = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunDailyTaskRetriesEnqueue(t *testing.T) {
	runs := &fakeEnqueuer{failures: 2}
	o := NewOrchestrator(runs, nil, testConfig(), nil)

	if err := o.RunDailyTask(context.Background()); err != nil {
		t.Fatalf("RunDailyTask: %v", err)
	}
	if runs.calls != 3 {
		t.Errorf("expected 3 enqueue attempts, got %d", runs.calls)
	}
	if len(runs.seasons) != 1 || runs.seasons[0] != "2024-25" {
		t.Errorf("unexpected queued seasons %v", runs.seasons)
	}
	if got := o.GetStatus()["last_run_id"]; got != "run-1" {
		t.Errorf("last_run_id = %v", got)
	}
}

func TestRunDailyTaskGivesUp(t *testing.T) {
	runs := &fakeEnqueuer{failures: 10}
	o := NewOrchestrator(runs, nil, testConfig(), nil)

	if err := o.RunDailyTask(context.Background()); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if runs.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", runs.calls)
	}
}

func TestRunDailyTaskSalaryFailureStillQueues(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshSalaries = true
	runs := &fakeEnqueuer{}
	salaries := &fakeSalaries{err: errors.New("blocked")}
	o := NewOrchestrator(runs, salaries, cfg, nil)

	if err := o.RunDailyTask(context.Background()); err != nil {
		t.Fatalf("RunDailyTask: %v", err)
	}
	if salaries.calls != cfg.MaxRetries {
		t.Errorf("expected %d salary attempts, got %d", cfg.MaxRetries, salaries.calls)
	}
	if runs.calls != 1 {
		t.Errorf("expected run to be queued once, got %d", runs.calls)
	}
}

func TestRunDailyTaskSkipsSalariesWhenDisabled(t *testing.T) {
	salaries := &fakeSalaries{}
	o := NewOrchestrator(&fakeEnqueuer{}, salaries, testConfig(), nil)

	if err := o.RunDailyTask(context.Background()); err != nil {
		t.Fatalf("RunDailyTask: %v", err)
	}
	if salaries.calls != 0 {
		t.Errorf("salary refresh should be off by default, got %d calls", salaries.calls)
	}
}
