package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"memescout/internal/model"
)

func TestWriteCSVDefaultFilename(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	results := []model.AccountResult{{
		Account: model.Account{Handle: "memelord", FollowersCount: 10000},
		Summary: model.EngagementSummary{EngagementRate: 20, AvgLikes: 20, AvgReposts: 0},
	}}

	path, err := WriteCSV(results, at, dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "top_memers_20250102_150405.csv" {
		t.Fatalf("unexpected filename: %s", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "handle" || rows[1][0] != "memelord" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[1][2] != "20" {
		t.Fatalf("engagement rate cell: %q", rows[1][2])
	}
}

func TestWriteCSVExplicitFilename(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteCSV(nil, time.Now().UTC(), dir, "custom.csv")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "custom.csv" {
		t.Fatalf("explicit filename not honored: %s", path)
	}
}
