package rank

import (
	"sort"

	"memescout/internal/model"
)

// Rank deduplicates results by account id, keeping the first occurrence, and
// orders them by engagement rate descending. Ties fall back to total
// engagement descending, then account id ascending, so output order is
// deterministic for equal rates.
func Rank(results []model.AccountResult) []model.AccountResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]model.AccountResult, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.Account.ID]; ok {
			continue
		}
		seen[r.Account.ID] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Summary.EngagementRate != b.Summary.EngagementRate {
			return a.Summary.EngagementRate > b.Summary.EngagementRate
		}
		if a.Summary.TotalEngagement != b.Summary.TotalEngagement {
			return a.Summary.TotalEngagement > b.Summary.TotalEngagement
		}
		return a.Account.ID < b.Account.ID
	})
	return out
}
