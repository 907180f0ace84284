// Package archive exports finished runs into a SQLite database for analysis
// across splits files. The JSON splits file stays the source of truth; the
// archive is a disposable read model.
package archive

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/df5602/srt-igt-splits/internal/splits"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the archive database. Uses modernc.org/sqlite (pure Go, no
// CGO).
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer; a single connection
	// serializes all access through Go's connection pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Store{db: db}, nil
}

// Migrate runs all embedded SQL migration files in order.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ArchiveTracker archives every finished run of the tracker together with its
// recorded checkpoint times. Re-archiving the same run overwrites its rows,
// so the operation is idempotent. Returns the number of runs archived.
func (s *Store) ArchiveTracker(ctx context.Context, t *splits.Tracker) (int, error) {
	archived := 0
	for _, run := range t.Runs() {
		if run.FinalTime == nil {
			continue
		}
		if err := s.archiveRun(ctx, run, t.Splits()); err != nil {
			return archived, err
		}
		archived++
	}
	return archived, nil
}

func (s *Store) archiveRun(ctx context.Context, run splits.RunSummary, list []splits.Split) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var endedAt any
	if run.EndTime != nil {
		endedAt = run.EndTime.UTC()
	}
	var finalSeconds any
	if run.FinalTime != nil {
		finalSeconds = int64(*run.FinalTime / time.Second)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, ended_at, final_seconds) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET started_at=excluded.started_at, ended_at=excluded.ended_at, final_seconds=excluded.final_seconds`,
		run.ID.String(), run.StartTime.UTC(), endedAt, finalSeconds,
	)
	if err != nil {
		return fmt.Errorf("archive run %s: %w", run.ID, err)
	}

	for _, split := range list {
		for _, hs := range split.History {
			if hs.RunID != run.ID {
				continue
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO split_times (run_id, percent, name, seconds) VALUES (?, ?, ?, ?)
				ON CONFLICT(run_id, percent) DO UPDATE SET name=excluded.name, seconds=excluded.seconds`,
				run.ID.String(), split.Percent, split.Name, int64(hs.Duration/time.Second),
			)
			if err != nil {
				return fmt.Errorf("archive split time %s/%d: %w", run.ID, split.Percent, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// RunStats summarizes the archived runs.
type RunStats struct {
	Total        int
	BestSeconds  *int64
	MeanSeconds  *float64
	WorstSeconds *int64
}

// SplitStat summarizes one checkpoint across all archived runs.
type SplitStat struct {
	Percent     uint32
	Name        string
	Attempts    int
	BestSeconds int64
	MeanSeconds float64
}

// RunStats returns aggregate statistics over all archived runs.
func (s *Store) RunStats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(final_seconds), AVG(final_seconds), MAX(final_seconds) FROM runs`,
	).Scan(&stats.Total, &stats.BestSeconds, &stats.MeanSeconds, &stats.WorstSeconds)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	return stats, nil
}

// SplitStats returns per-checkpoint statistics ordered by percent.
func (s *Store) SplitStats(ctx context.Context) ([]SplitStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT percent, name, COUNT(*), MIN(seconds), AVG(seconds)
		FROM split_times GROUP BY percent ORDER BY percent`,
	)
	if err != nil {
		return nil, fmt.Errorf("split stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []SplitStat
	for rows.Next() {
		var st SplitStat
		if err := rows.Scan(&st.Percent, &st.Name, &st.Attempts, &st.BestSeconds, &st.MeanSeconds); err != nil {
			return nil, fmt.Errorf("scan split stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
