package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"sync"

	_ "modernc.org/sqlite"

	"MetricRecipes/internal/model"
)

// SQLiteRecorder persists evaluation runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while runs are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			date_key    TEXT NOT NULL,
			trigger_type TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			numbers     INTEGER,
			no_values   INTEGER,
			unknowns    INTEGER,
			failures    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS evaluations (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL REFERENCES runs(id),
			recipe   TEXT NOT NULL,
			date_key TEXT NOT NULL,
			kind     TEXT NOT NULL,
			value    REAL,
			error    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_recipe ON evaluations(recipe, id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run and each of its results in one transaction.
func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	counts := run.Counts()
	if _, err := tx.Exec(`INSERT INTO runs
		(id, date_key, trigger_type, started_at, finished_at, numbers, no_values, unknowns, failures)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.ID, run.DateKey, run.Trigger, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		counts[model.KindNumber], counts[model.KindNoValue],
		counts[model.KindUnknown], counts[model.KindFailed],
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, res := range run.Results {
		// SQLite has no representation for NaN or infinities; store them as NULL
		// and keep the kind.
		var value sql.NullFloat64
		if res.Kind == model.KindNumber && !math.IsNaN(res.Value) && !math.IsInf(res.Value, 0) {
			value = sql.NullFloat64{Float64: res.Value, Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO evaluations
			(run_id, recipe, date_key, kind, value, error)
			VALUES (?,?,?,?,?,?)`,
			run.ID, res.Recipe, res.DateKey, string(res.Kind), value, res.Error,
		); err != nil {
			return fmt.Errorf("insert evaluation %s: %w", res.Recipe, err)
		}
	}
	return tx.Commit()
}

// History returns the most recent results for a recipe, newest first.
func (r *SQLiteRecorder) History(recipe string, limit int) ([]model.RecipeResult, error) {
	rows, err := r.db.Query(`SELECT recipe, date_key, kind, value, error
		FROM evaluations WHERE recipe = ? ORDER BY id DESC LIMIT ?`, recipe, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.RecipeResult
	for rows.Next() {
		var (
			res   model.RecipeResult
			kind  string
			value sql.NullFloat64
			msg   sql.NullString
		)
		if err := rows.Scan(&res.Recipe, &res.DateKey, &kind, &value, &msg); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		res.Kind = model.OutcomeKind(kind)
		res.Value = value.Float64
		res.Error = msg.String
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
