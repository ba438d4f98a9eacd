package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/config"
	"github.com/fortuna/moneta/internal/dataset"
	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/ingest/spotrac"
	"github.com/fortuna/moneta/internal/logging"
	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/store/repository"
)

const (
	appName    = "moneta-salaries"
	appVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component(logger, "salaries")
	log.Infof("=== %s v%s ===", appName, appVersion)

	var (
		dsn     = flag.String("dsn", cfg.AtlasDSN, "Atlas DSN")
		year    = flag.Int("year", cfg.SpotracYear, "Spotrac contract year (e.g., 2024)")
		season  = flag.String("season", "", "Season id stored on rows (default: derived from --year)")
		csvPath = flag.String("csv", "", "Also write the scraped table to this CSV file")
		dryRun  = flag.Bool("dry-run", false, "Dry run (do not write to DB)")
	)
	flag.Parse()

	if *season == "" {
		*season = seasonForYear(*year)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var writer spotrac.SalaryWriter
	if !*dryRun {
		db, err := store.NewDatabase(*dsn, logging.Component(logger, "store"))
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		writer = repository.NewSalaryRepository(db)
	}

	client := spotrac.NewClient(logging.Component(logger, "spotrac"))
	defer client.Close()

	ingester := spotrac.NewIngester(client, nil, logging.Component(logger, "ingest"))
	log.WithFields(logrus.Fields{"season": *season, "year": *year, "dry_run": *dryRun}).Info("Scraping team salary pages")

	records, summary, err := ingester.Scrape(ctx, *season, *year)
	if err != nil {
		log.Fatalf("scrape failed: %v", err)
	}
	if len(summary.Failed) > 0 {
		log.Warnf("⚠️  %d teams failed: %s", len(summary.Failed), strings.Join(summary.Failed, ", "))
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, records); err != nil {
			log.Fatalf("write csv: %v", err)
		}
		log.Infof("✓ Wrote %s", *csvPath)
	}

	if writer != nil {
		if err := writer.ReplaceSeason(ctx, *season, records); err != nil {
			log.Fatalf("store salaries: %v", err)
		}
	}

	log.WithFields(logrus.Fields{
		"teams":   fmt.Sprintf("%d/%d", summary.TeamsScraped, summary.Teams),
		"players": summary.Players,
	}).Info("✓ Salary scrape completed successfully")
}

// seasonForYear maps contract year 2024 to season id "2024-25".
func seasonForYear(year int) string {
	next := strconv.Itoa((year + 1) % 100)
	if len(next) == 1 {
		next = "0" + next
	}
	return fmt.Sprintf("%d-%s", year, next)
}

func writeCSV(path string, records []efficiency.SalaryRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteSalaries(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
