// Package logbook appends readings to daily CSV files on the removable
// card, one file per calendar day. The format matches what the original
// sketch wrote to its SD log, so existing tooling keeps working.
package logbook

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sweeney/weather-station/internal/obs"
)

var header = []string{"timestamp", "temp_c", "humidity_pct", "rain_today_mm", "tips_today"}

// Book appends readings to per-day CSV files under a directory.
// Not safe for concurrent use — the run loop is the only caller.
type Book struct {
	dir string
}

// New creates a Book writing under dir, creating it if needed.
func New(dir string) (*Book, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	return &Book{dir: dir}, nil
}

// Append writes one reading to the CSV file for the reading's day,
// creating the file with a header row if it does not exist yet. The file
// is opened and closed per append so a yanked card loses at most one row.
func (b *Book) Append(r obs.Reading) error {
	path := b.pathFor(r.Time)

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(record(r)); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Sync()
}

// Path returns the CSV file path a reading at the given time lands in.
func (b *Book) Path(t time.Time) string {
	return b.pathFor(t)
}

func (b *Book) pathFor(t time.Time) string {
	return filepath.Join(b.dir, t.Format("2006-01-02")+".csv")
}

func record(r obs.Reading) []string {
	rec := []string{
		r.Time.UTC().Format(time.RFC3339),
		"",
		"",
		strconv.FormatFloat(r.RainTodayMm, 'f', 4, 64),
		strconv.FormatUint(r.TipsToday, 10),
	}
	if r.TemperatureC != nil {
		rec[1] = strconv.FormatFloat(*r.TemperatureC, 'f', 2, 64)
	}
	if r.HumidityPct != nil {
		rec[2] = strconv.FormatFloat(*r.HumidityPct, 'f', 2, 64)
	}
	return rec
}
