package pantry

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"MetricRecipes/internal/model"
)

const upsertReading = `INSERT INTO readings (ingredient, date_key, value)
	VALUES (?,?,?)
	ON CONFLICT(ingredient, date_key) DO UPDATE SET value = excluded.value`

// SQLiteSource stores ingredient readings in a SQLite database. A NULL value
// is a date recorded without a reading.
type SQLiteSource struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteSource opens (or creates) the SQLite database and runs migrations.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteSource{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[INFO] sqlite ingredient source opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteSource) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS readings (
		ingredient TEXT NOT NULL,
		date_key   TEXT NOT NULL,
		value      REAL,
		PRIMARY KEY (ingredient, date_key)
	)`)
	return err
}

func (s *SQLiteSource) Name() string { return "sqlite" }

func (s *SQLiteSource) FetchSeries(ctx context.Context, name string) (model.Series, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date_key, value FROM readings WHERE ingredient = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	series := model.Series{}
	for rows.Next() {
		var dateKey string
		var value sql.NullFloat64
		if err := rows.Scan(&dateKey, &value); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if value.Valid {
			series[dateKey] = model.Reading(value.Float64)
		} else {
			series[dateKey] = nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read readings: %w", err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return series, nil
}

// Put records a reading, replacing any existing one for the same date. A nil
// value records the date without a reading.
func (s *SQLiteSource) Put(ctx context.Context, name, dateKey string, value *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v sql.NullFloat64
	if value != nil {
		v = sql.NullFloat64{Float64: *value, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, upsertReading, name, dateKey, v)
	return err
}

// Import writes every reading of the given ingredients in one transaction and
// returns the number of readings written.
func (s *SQLiteSource) Import(ctx context.Context, ingredients []model.Ingredient) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertReading)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, ing := range ingredients {
		for dateKey, value := range ing.Values {
			var v sql.NullFloat64
			if value != nil {
				v = sql.NullFloat64{Float64: *value, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, ing.Name, dateKey, v); err != nil {
				return 0, fmt.Errorf("import %s@%s: %w", ing.Name, dateKey, err)
			}
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return n, nil
}

func (s *SQLiteSource) Close() error {
	log.Println("[INFO] closing sqlite ingredient source")
	return s.db.Close()
}
