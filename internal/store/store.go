// Package store archives readings in a local SQLite database so that
// history survives restarts and power loss.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sweeney/weather-station/internal/obs"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-latest-readings.sql
var getLatestReadingsSQL string

//go:embed sql/get-readings-between.sql
var getReadingsBetweenSQL string

// Store persists readings to a file-backed SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("store open: %w", err)
	}

	// SQLite writes are serialised anyway; a single connection avoids
	// SQLITE_BUSY between the insert path and web queries.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store ping: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store schema: %w", err)
	}
	return &Store{db: db}, nil
}

func buildDSN(path string) string {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&")
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&"))
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InsertReading appends one reading. Missing sensor values are stored
// as NULL.
func (s *Store) InsertReading(r obs.Reading) error {
	var temp, hum interface{}
	if r.TemperatureC != nil {
		temp = *r.TemperatureC
	}
	if r.HumidityPct != nil {
		hum = *r.HumidityPct
	}
	ts := r.Time.UTC().Format(time.RFC3339Nano)
	if _, err := s.db.Exec(insertReadingSQL, ts, temp, hum, r.RainTodayMm, r.TipsToday); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// LatestReadings returns up to limit readings, newest first.
func (s *Store) LatestReadings(limit int) ([]obs.Reading, error) {
	rows, err := s.db.Query(getLatestReadingsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

// ReadingsBetween returns readings with from <= ts < to, oldest first.
func (s *Store) ReadingsBetween(from, to time.Time) ([]obs.Reading, error) {
	fromStr := from.UTC().Format(time.RFC3339Nano)
	toStr := to.UTC().Format(time.RFC3339Nano)
	rows, err := s.db.Query(getReadingsBetweenSQL, fromStr, toStr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]obs.Reading, error) {
	var out []obs.Reading
	for rows.Next() {
		var (
			r    obs.Reading
			ts   string
			temp sql.NullFloat64
			hum  sql.NullFloat64
		)
		if err := rows.Scan(&ts, &temp, &hum, &r.RainTodayMm, &r.TipsToday); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		r.Time = t
		if temp.Valid {
			v := temp.Float64
			r.TemperatureC = &v
		}
		if hum.Valid {
			v := hum.Float64
			r.HumidityPct = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
