package analyze

import (
	"errors"

	"memescout/internal/model"
)

// ErrNoData marks an account with zero analyzable posts. Callers skip such
// accounts rather than persisting a fabricated zero summary.
var ErrNoData = errors.New("no analyzable posts")

// Summarize folds per-post engagement counters into a single summary.
// Averages are per analyzed post; the engagement rate is the total of all
// four counters divided by the number of posts.
func Summarize(posts []model.Post) (model.EngagementSummary, error) {
	if len(posts) == 0 {
		return model.EngagementSummary{}, ErrNoData
	}
	var likes, reposts, replies, quotes int
	for _, p := range posts {
		likes += p.LikeCount
		reposts += p.RepostCount
		replies += p.ReplyCount
		quotes += p.QuoteCount
	}
	n := len(posts)
	total := likes + reposts + replies + quotes
	return model.EngagementSummary{
		PostsAnalyzed:   n,
		AvgLikes:        float64(likes) / float64(n),
		AvgReposts:      float64(reposts) / float64(n),
		AvgReplies:      float64(replies) / float64(n),
		AvgQuotes:       float64(quotes) / float64(n),
		TotalEngagement: total,
		EngagementRate:  float64(total) / float64(n),
	}, nil
}
