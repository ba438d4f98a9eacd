package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// replaceTable truncates table and bulk-loads rows with COPY inside tx.
func replaceTable(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]interface{}) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", pq.QuoteIdentifier(table))); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return copyRows(ctx, tx, table, columns, rows)
}

func copyRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]interface{}) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("prepare copy into %s: %w", table, err)
	}

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			stmt.Close()
			return fmt.Errorf("copy row into %s: %w", table, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush copy into %s: %w", table, err)
	}
	return stmt.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
