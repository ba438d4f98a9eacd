package spotrac

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/teams"
	"github.com/sirupsen/logrus"
)

// Fetcher loads the rendered HTML of a team overview page.
type Fetcher interface {
	FetchTeamPage(ctx context.Context, slug string, year int) (string, error)
}

// SalaryWriter stores a season's salary snapshot.
type SalaryWriter interface {
	ReplaceSeason(ctx context.Context, season string, records []efficiency.SalaryRecord) error
}

// Summary reports the outcome of a scrape.
type Summary struct {
	Teams        int
	TeamsScraped int
	Players      int
	Failed       []string
}

// Ingester scrapes every franchise page and replaces the salary table
type Ingester struct {
	fetcher Fetcher
	writer  SalaryWriter
	logger  *logrus.Entry

	// pause waits between two team pages
	pause func(ctx context.Context) error
}

// NewIngester creates a salary ingester. A nil writer only scrapes.
func NewIngester(fetcher Fetcher, writer SalaryWriter, logger *logrus.Entry) *Ingester {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Ingester{
		fetcher: fetcher,
		writer:  writer,
		logger:  logger.WithField("component", "salary_ingester"),
		pause:   randomPause(2*time.Second, 4*time.Second),
	}
}

// Scrape fetches and parses the salary table of every team for a contract
// year. Teams that fail are logged and skipped.
func (i *Ingester) Scrape(ctx context.Context, season string, year int) ([]efficiency.SalaryRecord, Summary, error) {
	league := teams.All()
	summary := Summary{Teams: len(league)}

	var records []efficiency.SalaryRecord
	for n, team := range league {
		log := i.logger.WithFields(logrus.Fields{
			"team":     team.Abbreviation,
			"progress": fmt.Sprintf("%d/%d", n+1, len(league)),
		})

		teamRecords, err := i.scrapeTeam(ctx, team, season, year)
		if err != nil {
			if ctx.Err() != nil {
				return nil, summary, ctx.Err()
			}
			log.WithError(err).Warn("Salary scrape failed")
			summary.Failed = append(summary.Failed, team.Abbreviation)
		} else {
			log.WithField("players", len(teamRecords)).Info("✓ Scraped team salaries")
			records = append(records, teamRecords...)
			summary.TeamsScraped++
		}

		if n < len(league)-1 {
			if err := i.pause(ctx); err != nil {
				return nil, summary, err
			}
		}
	}

	summary.Players = len(records)
	if len(records) == 0 {
		return nil, summary, errors.New("no salary rows scraped")
	}
	return records, summary, nil
}

// Ingest scrapes all teams and replaces the season snapshot
func (i *Ingester) Ingest(ctx context.Context, season string, year int) (Summary, error) {
	records, summary, err := i.Scrape(ctx, season, year)
	if err != nil {
		return summary, err
	}

	if i.writer != nil {
		if err := i.writer.ReplaceSeason(ctx, season, records); err != nil {
			return summary, fmt.Errorf("storing salaries: %w", err)
		}
	}

	i.logger.WithFields(logrus.Fields{
		"season":  season,
		"teams":   summary.TeamsScraped,
		"players": summary.Players,
	}).Info("✓ Salary snapshot replaced")
	return summary, nil
}

func (i *Ingester) scrapeTeam(ctx context.Context, team teams.Team, season string, year int) ([]efficiency.SalaryRecord, error) {
	html, err := i.fetcher.FetchTeamPage(ctx, team.SpotracSlug, year)
	if err != nil {
		return nil, err
	}
	doc, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}
	return ParseTeamSalaries(doc, team.FullName, season)
}

func randomPause(lo, hi time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		d := lo + time.Duration(rand.Int63n(int64(hi-lo)))
		select {
		case <-time.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
