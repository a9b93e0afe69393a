package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/okian/matchscout/internal/adapters/repository/migrations"
	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/pkg/metrics"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const entryColumns = `id, season, auto_points, teleop_points, endgame_points, total_points, record, violations, scored_at`

// SQLiteStore persists scored entries in a SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the
// embedded migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Workers write concurrently; a single connection serializes them
	// instead of surfacing SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	files, err := fs.Glob(migrationFS, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := sqlDB.Exec(string(content)); err != nil {
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
	}
	return nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put upserts e.
func (s *SQLiteStore) Put(ctx context.Context, e model.ScoredEntry) error { //nolint:gocritic // hugeParam: value semantics
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkEntry(e); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordStoreWriteLatency(DriverSQLite, sinceMillis(start)) }()

	record, err := json.Marshal(e.Record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	violations := e.Violations
	if violations == nil {
		violations = []model.Violation{}
	}
	encodedViolations, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("encode violations: %w", err)
	}
	scoredAt := e.ScoredAt
	if scoredAt.IsZero() {
		scoredAt = time.Now()
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO scored_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   season = excluded.season,
		   auto_points = excluded.auto_points,
		   teleop_points = excluded.teleop_points,
		   endgame_points = excluded.endgame_points,
		   total_points = excluded.total_points,
		   record = excluded.record,
		   violations = excluded.violations,
		   scored_at = excluded.scored_at`,
		e.ID,
		e.Season,
		e.Points.Auto,
		e.Points.Teleop,
		e.Points.Endgame,
		e.Points.Total,
		string(record),
		string(encodedViolations),
		scoredAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put scored entry: %w", err)
	}
	if count, err := s.Count(ctx); err == nil {
		metrics.UpdateStoreRecords(count)
	}
	return nil
}

// Get returns the entry with id and its competition rank.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Ranked, error) {
	if err := ctx.Err(); err != nil {
		return Ranked{}, err
	}
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(DriverSQLite, sinceMillis(start)) }()

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+entryColumns+`,
		   (SELECT COUNT(*) FROM scored_entries AS above WHERE above.total_points > e.total_points)
		 FROM scored_entries AS e WHERE e.id = ?`, id)

	var above int
	entry, err := scanEntry(row, &above)
	if errors.Is(err, sql.ErrNoRows) {
		return Ranked{}, ErrNotFound
	}
	if err != nil {
		return Ranked{}, fmt.Errorf("get scored entry: %w", err)
	}
	return Ranked{Rank: above + 1, Entry: entry}, nil
}

// TopN returns the best n entries.
func (s *SQLiteStore) TopN(ctx context.Context, n int) ([]Ranked, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(DriverSQLite, sinceMillis(start)) }()

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM scored_entries
		 ORDER BY total_points DESC, id ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("top entries: %w", err)
	}
	defer rows.Close()

	out := make([]Ranked, 0, n)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scored entry: %w", err)
		}
		out = append(out, Ranked{Entry: entry})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scored entries: %w", err)
	}
	assignRanksWithTies(out, 1)
	return out, nil
}

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM scored_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count scored entries: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner, extra ...any) (model.ScoredEntry, error) {
	var (
		e          model.ScoredEntry
		season     string
		record     string
		violations string
		scoredAt   int64
	)
	dest := []any{&e.ID, &season, &e.Points.Auto, &e.Points.Teleop, &e.Points.Endgame, &e.Points.Total, &record, &violations, &scoredAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.ScoredEntry{}, err
	}
	e.Season = season
	if err := json.Unmarshal([]byte(record), &e.Record); err != nil {
		return model.ScoredEntry{}, fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal([]byte(violations), &e.Violations); err != nil {
		return model.ScoredEntry{}, fmt.Errorf("decode violations: %w", err)
	}
	if len(e.Violations) == 0 {
		e.Violations = nil
	}
	e.ScoredAt = time.UnixMilli(scoredAt).UTC()
	return e, nil
}

