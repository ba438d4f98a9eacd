package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/config"
	"github.com/fortuna/moneta/internal/dataset"
	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/logging"
	"github.com/fortuna/moneta/internal/runs"
	"github.com/fortuna/moneta/internal/service"
	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/store/repository"
	"github.com/fortuna/moneta/internal/valuation"
)

const (
	appName    = "moneta-valuate"
	appVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component(logger, "valuate")
	log.Infof("=== %s v%s ===", appName, appVersion)

	var (
		source    = flag.String("source", "db", "Input source: db or csv")
		dsn       = flag.String("dsn", cfg.AtlasDSN, "Atlas DSN")
		season    = flag.String("season", cfg.Season, "Season to value (e.g., 2024-25)")
		boxPath   = flag.String("box", "", "Box score CSV (source=csv)")
		advPath   = flag.String("advanced", "", "Advanced metrics CSV (source=csv)")
		salPath   = flag.String("salaries", "", "Salary CSV (source=csv)")
		outDir    = flag.String("out", ".", "Directory for player_values.csv and player_features.csv")
		writeCSV  = flag.Bool("csv", true, "Write CSV outputs")
		persist   = flag.Bool("persist", false, "Replace the Postgres snapshot tables")
		workers   = flag.Int("workers", cfg.ScoringWorkers, "Scoring goroutines (0 = GOMAXPROCS)")
		startDate = flag.String("start", cfg.SeasonStart, "Regular season start, exclusive (YYYY-MM-DD)")
		endDate   = flag.String("end", cfg.SeasonEnd, "Regular season end, exclusive (YYYY-MM-DD)")
	)
	flag.Parse()

	if *source != "db" && *source != "csv" {
		log.Fatalf("--source must be db or csv, got %q", *source)
	}
	if *source == "csv" && (*boxPath == "" || *advPath == "" || *salPath == "") {
		log.Fatalf("--source=csv needs --box, --advanced and --salaries")
	}

	cfg.Season, cfg.SeasonStart, cfg.SeasonEnd = *season, *startDate, *endDate
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	var opts []service.Option
	if window, ok, _ := cfg.SeasonWindow(); ok {
		opts = append(opts, service.WithSeasonWindow(*season, window))
	}

	engine := valuation.NewEngine(
		valuation.NewScorer(valuation.DefaultModel()),
		valuation.WithWorkers(*workers),
		valuation.WithLogger(logger.WithField("season", *season)),
	)
	aggregator := efficiency.NewAggregator(logging.Component(logger, "efficiency"))

	ctx := context.Background()
	reporter := &consoleReporter{log: log}

	var (
		db  *store.Database
		svc *service.ValuationService
	)
	if *source == "db" || *persist {
		db, err = store.NewDatabase(*dsn, logging.Component(logger, "store"))
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			log.Fatalf("migrations: %v", err)
		}

		svc = service.NewValuationService(
			repository.NewStatsRepository(db),
			repository.NewSalaryRepository(db),
			repository.NewValueRepository(db),
			repository.NewFeatureRepository(db),
			engine, aggregator, logging.Component(logger, "service"), opts...,
		)
	} else {
		svc = service.NewValuationService(nil, nil, nil, nil, engine, aggregator, logging.Component(logger, "service"), opts...)
	}

	// Record CLI runs in the run history when a database is attached
	var runRepo *repository.RunRepository
	var run *store.ValuationRun
	if db != nil {
		runRepo = repository.NewRunRepository(db)
		if run, err = runRepo.Create(ctx, *season, store.RunTriggerCLI); err != nil {
			log.Warnf("⚠️  Could not record run: %v", err)
		} else if err := runRepo.UpdateStatus(ctx, run.RunID, store.RunStatusRunning, "Started from CLI", nil); err != nil {
			log.Warnf("⚠️  Could not update run status: %v", err)
		}
	}

	start := time.Now()
	out, err := compute(ctx, svc, *source, *season, *boxPath, *advPath, *salPath, reporter)
	if err == nil && *persist {
		reporter.OnStage("Writing snapshots")
		err = svc.Persist(ctx, out)
	}
	if err == nil && *writeCSV {
		reporter.OnStage("Writing CSV outputs")
		err = writeOutputs(*outDir, out)
	}

	if run != nil {
		finish(ctx, runRepo, run, out, err, log)
	}
	if err != nil {
		log.Fatalf("valuation failed: %v", err)
	}

	log.WithFields(logrus.Fields{
		"input_rows":           out.Counts.InputRows,
		"joined_rows":          out.Counts.JoinedRows,
		"valued_rows":          out.Counts.ValuedRows,
		"unresolved_opponents": out.Counts.UnresolvedOpponents,
		"players_valued":       out.Counts.PlayersValued,
		"unmatched_salary":     out.Counts.UnmatchedSalary,
		"duration":             time.Since(start).Round(time.Millisecond).String(),
	}).Info("✓ Valuation completed successfully")
}

func compute(ctx context.Context, svc *service.ValuationService, source, season, boxPath, advPath, salPath string, reporter runs.Reporter) (*service.Outcome, error) {
	if source == "db" {
		return svc.Compute(ctx, season, reporter)
	}

	reporter.OnStage("Reading box scores")
	box, err := readFile(boxPath, dataset.ReadBoxScores)
	if err != nil {
		return nil, err
	}
	reporter.OnStage("Reading advanced metrics")
	adv, err := readFile(advPath, dataset.ReadAdvanced)
	if err != nil {
		return nil, err
	}
	reporter.OnStage("Reading salaries")
	salaries, err := readFile(salPath, dataset.ReadSalaries)
	if err != nil {
		return nil, err
	}

	reporter.OnStage("Scoring player games")
	return svc.Evaluate(ctx, season, box, adv, salaries)
}

func readFile[T any](path string, read func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func writeOutputs(dir string, out *service.Outcome) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeFile(filepath.Join(dir, "player_values.csv"), func(f *os.File) error {
		return dataset.WriteValues(f, out.Values)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "player_features.csv"), func(f *os.File) error {
		return dataset.WriteFeatures(f, out.Features)
	})
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func finish(ctx context.Context, repo *repository.RunRepository, run *store.ValuationRun, out *service.Outcome, runErr error, log *logrus.Entry) {
	if out != nil {
		if err := repo.RecordCounts(ctx, run.RunID, out.Counts); err != nil {
			log.Warnf("⚠️  Could not record run counts: %v", err)
		}
	}

	status, message := store.RunStatusCompleted, "Completed from CLI"
	if runErr != nil {
		status, message = store.RunStatusFailed, "Failed"
	}
	if err := repo.UpdateStatus(ctx, run.RunID, status, message, runErr); err != nil {
		log.Warnf("⚠️  Could not update run status: %v", err)
	}
}

type consoleReporter struct {
	log *logrus.Entry
}

func (c *consoleReporter) OnStage(message string) {
	c.log.Info(message)
}
