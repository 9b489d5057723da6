package logbook

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/weather-station/internal/obs"
)

func f64(v float64) *float64 { return &v }

func TestAppendCreatesFileWithHeader(t *testing.T) {
	b, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r := obs.Reading{
		Time:         time.Date(2026, 4, 12, 6, 30, 0, 0, time.UTC),
		TemperatureC: f64(14.25),
		HumidityPct:  f64(81.5),
		RainTodayMm:  3.6068,
		TipsToday:    13,
	}
	if err := b.Append(r); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows := readCSV(t, b.Path(r.Time))
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][3] != "rain_today_mm" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	row := rows[1]
	if row[0] != "2026-04-12T06:30:00Z" {
		t.Errorf("timestamp: got %q", row[0])
	}
	if row[1] != "14.25" {
		t.Errorf("temp_c: got %q", row[1])
	}
	if row[2] != "81.50" {
		t.Errorf("humidity_pct: got %q", row[2])
	}
	if row[3] != "3.6068" {
		t.Errorf("rain_today_mm: got %q", row[3])
	}
	if row[4] != "13" {
		t.Errorf("tips_today: got %q", row[4])
	}
}

func TestAppendWritesHeaderOnlyOnce(t *testing.T) {
	b, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	day := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := obs.Reading{
			Time:        day.Add(time.Duration(i) * time.Hour),
			RainTodayMm: float64(i),
		}
		if err := b.Append(r); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	rows := readCSV(t, b.Path(day))
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
}

func TestAppendMissingSensorLeavesFieldsEmpty(t *testing.T) {
	b, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r := obs.Reading{
		Time:        time.Date(2026, 4, 12, 6, 30, 0, 0, time.UTC),
		RainTodayMm: 0.2794,
		TipsToday:   1,
	}
	if err := b.Append(r); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows := readCSV(t, b.Path(r.Time))
	row := rows[1]
	if row[1] != "" || row[2] != "" {
		t.Errorf("expected empty sensor fields, got %q %q", row[1], row[2])
	}
}

func TestAppendSplitsAcrossDays(t *testing.T) {
	b, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	day1 := time.Date(2026, 4, 12, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 4, 13, 0, 1, 0, 0, time.UTC)
	b.Append(obs.Reading{Time: day1, RainTodayMm: 5})
	b.Append(obs.Reading{Time: day2, RainTodayMm: 0})

	p1 := b.Path(day1)
	p2 := b.Path(day2)
	if p1 == p2 {
		t.Fatalf("expected different files for different days, both %s", p1)
	}
	if filepath.Base(p1) != "2026-04-12.csv" {
		t.Errorf("day 1 file: got %s", filepath.Base(p1))
	}
	if filepath.Base(p2) != "2026-04-13.csv" {
		t.Errorf("day 2 file: got %s", filepath.Base(p2))
	}
	if len(readCSV(t, p1)) != 2 || len(readCSV(t, p2)) != 2 {
		t.Error("each day file should contain header + 1 row")
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "card", "weather")
	if _, err := New(dir); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected directory to exist: %v", err)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}
