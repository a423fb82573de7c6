// Package episodedb indexes finished episodes in a SQLite database so runs
// can be ranked and filtered without reading every episode file.
package episodedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/piwi3910/BinPack3D/internal/model"
)

var (
	// ErrEmptyPath is returned by Open for an empty database path.
	ErrEmptyPath = errors.New("empty db path")

	// ErrDuplicateID is returned by Insert when the episode ID is already
	// indexed. The stored row is left untouched.
	ErrDuplicateID = errors.New("episode already indexed")
)

// DB is a SQLite-backed episode index. Its methods are safe for concurrent
// use.
type DB struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens or creates the index at path.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			generator TEXT NOT NULL,
			policy TEXT NOT NULL,
			seed INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			reward REAL NOT NULL,
			fill REAL NOT NULL,
			end_reason TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			packing_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS episodes_scenario ON episodes(scenario);`,
		`CREATE INDEX IF NOT EXISTS episodes_fill ON episodes(fill DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Close()
}

// Insert stores rec. An ID that is already indexed yields ErrDuplicateID.
func (d *DB) Insert(ctx context.Context, rec model.EpisodeRecord) error {
	packing, err := json.Marshal(rec.Packing)
	if err != nil {
		return fmt.Errorf("failed to marshal packing: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	res, err := d.db.ExecContext(ctx, `INSERT INTO episodes
		(id, scenario, generator, policy, seed, steps, reward, fill, end_reason, started_at, finished_at, packing_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		rec.ID, rec.Scenario, string(rec.Generator), rec.Policy, rec.Seed, rec.Steps, rec.Reward,
		rec.FillRatio(), rec.EndReason, rec.StartedAt, rec.FinishedAt, string(packing))
	if err != nil {
		return fmt.Errorf("failed to insert episode %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert episode %s: %w", rec.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	return nil
}

// Best returns up to limit episodes with the highest fill ratio.
func (d *DB) Best(ctx context.Context, limit int) ([]model.EpisodeRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return d.query(ctx, `SELECT id, scenario, generator, policy, seed, steps, reward, end_reason, started_at, finished_at, packing_json
		FROM episodes ORDER BY fill DESC, steps DESC, id LIMIT ?`, limit)
}

// ByScenario returns the episodes of one scenario, oldest first.
func (d *DB) ByScenario(ctx context.Context, scenario string) ([]model.EpisodeRecord, error) {
	return d.query(ctx, `SELECT id, scenario, generator, policy, seed, steps, reward, end_reason, started_at, finished_at, packing_json
		FROM episodes WHERE scenario = ? ORDER BY started_at, id`, scenario)
}

// Count returns the number of indexed episodes.
func (d *DB) Count(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (d *DB) query(ctx context.Context, q string, args ...any) ([]model.EpisodeRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var out []model.EpisodeRecord
	for rows.Next() {
		var (
			rec     model.EpisodeRecord
			gen     string
			packing string
		)
		if err := rows.Scan(&rec.ID, &rec.Scenario, &gen, &rec.Policy, &rec.Seed, &rec.Steps, &rec.Reward,
			&rec.EndReason, &rec.StartedAt, &rec.FinishedAt, &packing); err != nil {
			return nil, err
		}
		rec.Generator = model.GeneratorKind(gen)
		if err := json.Unmarshal([]byte(packing), &rec.Packing); err != nil {
			return nil, fmt.Errorf("failed to decode packing of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
