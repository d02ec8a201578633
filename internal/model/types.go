package model

import "time"

// Account is the identity and latest known profile of a discovered creator.
type Account struct {
	ID             string
	Handle         string
	Bio            string
	FollowersCount int
	FollowingCount int
	FirstSeenAt    time.Time
	LastUpdatedAt  time.Time
}

// PostRef points at a post returned by candidate search.
type PostRef struct {
	PostID    string
	AuthorID  string
	CreatedAt time.Time
}

// Post carries the public engagement counters of a single original post.
type Post struct {
	ID          string
	AuthorID    string
	CreatedAt   time.Time
	LikeCount   int
	RepostCount int
	ReplyCount  int
	QuoteCount  int
}

// EngagementSummary aggregates the counters of one account's recent posts
// into per-post averages and an overall engagement rate.
type EngagementSummary struct {
	PostsAnalyzed   int
	AvgLikes        float64
	AvgReposts      float64
	AvgReplies      float64
	AvgQuotes       float64
	TotalEngagement int
	EngagementRate  float64
}

// AccountResult pairs a profile with its engagement summary for one run.
type AccountResult struct {
	Account Account
	Summary EngagementSummary
}
