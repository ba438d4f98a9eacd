package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/teams"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Database represents the Atlas PostgreSQL database connection
type Database struct {
	conn   *sql.DB
	dsn    string
	logger *logrus.Entry
}

// NewDatabase creates a new database connection to Atlas
func NewDatabase(dsn string, logger *logrus.Entry) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Database{
		conn:   db,
		dsn:    dsn,
		logger: logger.WithField("component", "store"),
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

// RunMigrations applies every embedded migration not yet recorded, in name order.
func (db *Database) RunMigrations(ctx context.Context) error {
	db.logger.Info("Running database migrations...")

	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(migrations)

	for _, migration := range migrations {
		if err := db.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration, err)
		}
	}

	db.logger.Info("✓ All migrations completed successfully")
	return nil
}

func (db *Database) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.ExecContext(ctx, query)
	return err
}

// runMigration runs a single migration file if it hasn't been applied yet
func (db *Database) runMigration(ctx context.Context, path string) error {
	version := path[len("migrations/"):]

	var exists bool
	err := db.conn.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		db.logger.Debugf("  ⊘ Skipping %s (already applied)", version)
		return nil
	}

	content, err := migrationFiles.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	db.logger.Infof("  ✓ Applied %s", version)
	return nil
}

// SeedTeams upserts the league's franchises into the teams table.
func (db *Database) SeedTeams(ctx context.Context) error {
	query := `
		INSERT INTO teams (abbreviation, full_name, spotrac_slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (abbreviation) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			spotrac_slug = EXCLUDED.spotrac_slug
	`

	for _, t := range teams.All() {
		if _, err := db.conn.ExecContext(ctx, query, t.Abbreviation, t.FullName, t.SpotracSlug); err != nil {
			return fmt.Errorf("failed to seed team %s: %w", t.Abbreviation, err)
		}
	}

	db.logger.Infof("✓ Seeded %d teams", len(teams.All()))
	return nil
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
