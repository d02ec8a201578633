package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"memescout/internal/model"
)

// WriteCSV writes one row per ranked account and returns the file path.
// When filename is empty the file is named top_memers_<timestamp>.csv.
func WriteCSV(results []model.AccountResult, capturedAt time.Time, dir, filename string) (string, error) {
	if filename == "" {
		filename = "top_memers_" + capturedAt.Format("20060102_150405") + ".csv"
	}
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	w := csv.NewWriter(f)
	rows := [][]string{{"handle", "follower_count", "engagement_rate", "avg_likes", "avg_reposts", "captured_at"}}
	for _, r := range results {
		rows = append(rows, []string{
			r.Account.Handle,
			strconv.Itoa(r.Account.FollowersCount),
			strconv.FormatFloat(r.Summary.EngagementRate, 'f', -1, 64),
			strconv.FormatFloat(r.Summary.AvgLikes, 'f', -1, 64),
			strconv.FormatFloat(r.Summary.AvgReposts, 'f', -1, 64),
			capturedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
