package analyze

import (
	"errors"
	"math"
	"testing"

	"memescout/internal/model"
)

func TestSummarizeAverages(t *testing.T) {
	posts := []model.Post{
		{LikeCount: 10},
		{LikeCount: 20},
		{LikeCount: 30},
	}
	sum, err := Summarize(posts)
	if err != nil {
		t.Fatal(err)
	}
	if sum.PostsAnalyzed != 3 {
		t.Fatalf("posts analyzed: %d", sum.PostsAnalyzed)
	}
	if sum.AvgLikes != 20 {
		t.Fatalf("avg likes: %f", sum.AvgLikes)
	}
	if sum.TotalEngagement != 60 {
		t.Fatalf("total engagement: %d", sum.TotalEngagement)
	}
	if sum.EngagementRate != 20 {
		t.Fatalf("engagement rate: %f", sum.EngagementRate)
	}
}

func TestSummarizeRateConsistency(t *testing.T) {
	posts := []model.Post{
		{LikeCount: 7, RepostCount: 3, ReplyCount: 2, QuoteCount: 1},
		{LikeCount: 1, RepostCount: 0, ReplyCount: 5, QuoteCount: 4},
		{LikeCount: 12, RepostCount: 9, ReplyCount: 0, QuoteCount: 0},
		{LikeCount: 0, RepostCount: 0, ReplyCount: 0, QuoteCount: 0},
	}
	sum, err := Summarize(posts)
	if err != nil {
		t.Fatal(err)
	}
	n := float64(sum.PostsAnalyzed)
	fromAvgs := (sum.AvgLikes + sum.AvgReposts + sum.AvgReplies + sum.AvgQuotes) * n
	if math.Abs(fromAvgs-float64(sum.TotalEngagement)) > 1e-9 {
		t.Fatalf("total %d does not match averages * n = %f", sum.TotalEngagement, fromAvgs)
	}
	if math.Abs(sum.EngagementRate-float64(sum.TotalEngagement)/n) > 1e-9 {
		t.Fatalf("rate %f inconsistent with total/posts", sum.EngagementRate)
	}
}

func TestSummarizeEmptyIsNoData(t *testing.T) {
	_, err := Summarize(nil)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
