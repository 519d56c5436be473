// Package sqlite provides a SQLite-backed implementation of the import ledger port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/ports"
)

// timeLayout is fixed width so stored timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Adapter records bulk import runs in SQLite.
type Adapter struct {
	db *sql.DB
}

// compile-time interface assertion
var _ ports.ImportLedger = (*Adapter)(nil)

// NewAdapter opens the database at storagePath and runs the schema migration.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: open %s: %w", storagePath, err)
	}
	// A single connection keeps ":memory:" databases alive across calls and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite adapter: ping: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite adapter: migrate: %w", err)
	}

	return adapter, nil
}

// Close closes the database.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// StartRun inserts a new run.
func (a *Adapter) StartRun(ctx context.Context, run domain.ImportRun) error {
	if run.ID == "" {
		return domain.Invalid("run.id", "must not be empty")
	}
	status := run.Status
	if status == "" {
		status = domain.RunRunning
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, source, index_name, started_at, status)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.Index, run.StartedAt.UTC().Format(timeLayout), status)
	if err != nil {
		return fmt.Errorf("sqlite adapter: start run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stores the final counters and status of a run started earlier.
func (a *Adapter) FinishRun(ctx context.Context, run domain.ImportRun) error {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	res, err := a.db.ExecContext(ctx, `
		UPDATE import_runs
		SET finished_at = ?, read_count = ?, indexed_count = ?, skipped_count = ?,
			failed_count = ?, status = ?, error = ?
		WHERE id = ?
	`,
		finished.UTC().Format(timeLayout),
		run.Read, run.Indexed, run.Skipped, run.Failed,
		run.Status, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite adapter: finish run %s: %w", run.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite adapter: finish run %s: %w", run.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite adapter: run %s: %w", run.ID, domain.ErrNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (a *Adapter) ListRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, source, index_name, started_at, finished_at,
			read_count, indexed_count, skipped_count, failed_count,
			status, IFNULL(error, '')
		FROM import_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: list runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.ImportRun{}
	for rows.Next() {
		var run domain.ImportRun
		var started string
		var finished sql.NullString
		if err := rows.Scan(
			&run.ID,
			&run.Source,
			&run.Index,
			&started,
			&finished,
			&run.Read,
			&run.Indexed,
			&run.Skipped,
			&run.Failed,
			&run.Status,
			&run.Error,
		); err != nil {
			return nil, fmt.Errorf("sqlite adapter: scan run: %w", err)
		}

		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("sqlite adapter: run %s started_at: %w", run.ID, err)
		}
		if finished.Valid && finished.String != "" {
			if run.FinishedAt, err = time.Parse(timeLayout, finished.String); err != nil {
				return nil, fmt.Errorf("sqlite adapter: run %s finished_at: %w", run.ID, err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite adapter: iterate runs: %w", err)
	}

	return runs, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		index_name TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		read_count INTEGER NOT NULL DEFAULT 0,
		indexed_count INTEGER NOT NULL DEFAULT 0,
		skipped_count INTEGER NOT NULL DEFAULT 0,
		failed_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	_, err := a.db.Exec("CREATE INDEX IF NOT EXISTS import_runs_started_at ON import_runs (started_at)")
	return err
}

