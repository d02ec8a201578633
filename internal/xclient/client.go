package xclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"memescout/internal/metrics"
	"memescout/internal/model"
)

// Client defines the platform operations the discovery pipeline consumes.
type Client interface {
	SearchRecent(ctx context.Context, query string, limit int) ([]model.PostRef, error)
	GetUserProfile(ctx context.Context, accountID string) (model.Account, error)
	GetUserPosts(ctx context.Context, accountID string, limit int) ([]model.Post, error)
	GetUsername(ctx context.Context, accountID string) (string, error)
}

// HTTPClient is a bearer-token client for the X API v2. All calls wait on a
// shared token-bucket limiter before going out and retry on 429/5xx honoring
// Retry-After, so callers see either a result or a terminal error.
type HTTPClient struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(bearerToken string) *HTTPClient {
	t := tuningFromEnv()
	return &HTTPClient{
		baseURL:     "https://api.twitter.com/2",
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: t.Timeout},
		limiter:     newLimiter(t),
		maxAttempts: t.MaxAttempts,
		baseBackoff: t.BaseBackoff,
	}
}

func (c *HTTPClient) auth(req *http.Request) {
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	req.Header.Set("Accept", "application/json")
}

// SearchRecent returns references to recent posts matching query. An empty
// result set is not an error.
func (c *HTTPClient) SearchRecent(ctx context.Context, query string, limit int) ([]model.PostRef, error) {
	const endpoint = "search_recent"
	u := fmt.Sprintf("%s/tweets/search/recent?max_results=%d&tweet.fields=created_at,author_id&query=%s",
		c.baseURL, clamp(limit, 10, 100), url.QueryEscape(query))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode}
	}
	var raw struct {
		Data []struct {
			ID        string    `json:"id"`
			AuthorID  string    `json:"author_id"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, Err: err}
	}
	out := make([]model.PostRef, 0, len(raw.Data))
	for _, d := range raw.Data {
		out = append(out, model.PostRef{PostID: d.ID, AuthorID: d.AuthorID, CreatedAt: d.CreatedAt})
	}
	return out, nil
}

// GetUserProfile fetches an account's bio and public metrics. Deleted or
// suspended accounts surface as ErrNotFound.
func (c *HTTPClient) GetUserProfile(ctx context.Context, accountID string) (model.Account, error) {
	const endpoint = "user_profile"
	var out model.Account
	if accountID == "" {
		return out, errors.New("empty account id")
	}
	u := fmt.Sprintf("%s/users/%s?user.fields=description,public_metrics", c.baseURL, url.PathEscape(accountID))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return out, err
	}
	resp, err := c.doWithRetry(ctx, req, endpoint)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return out, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return out, &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode}
	}
	var raw struct {
		Data struct {
			ID            string `json:"id"`
			Username      string `json:"username"`
			Description   string `json:"description"`
			PublicMetrics struct {
				FollowersCount int `json:"followers_count"`
				FollowingCount int `json:"following_count"`
			} `json:"public_metrics"`
		} `json:"data"`
		Errors []struct {
			Title string `json:"title"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return out, &UpstreamError{Endpoint: endpoint, Err: err}
	}
	// The API answers 200 with an errors array for suspended accounts.
	if raw.Data.ID == "" {
		return out, ErrNotFound
	}
	out = model.Account{
		ID:             raw.Data.ID,
		Handle:         raw.Data.Username,
		Bio:            raw.Data.Description,
		FollowersCount: raw.Data.PublicMetrics.FollowersCount,
		FollowingCount: raw.Data.PublicMetrics.FollowingCount,
	}
	return out, nil
}

// GetUserPosts returns an account's recent original posts, excluding reposts
// and replies.
func (c *HTTPClient) GetUserPosts(ctx context.Context, accountID string, limit int) ([]model.Post, error) {
	const endpoint = "user_posts"
	u := fmt.Sprintf("%s/users/%s/tweets?max_results=%d&tweet.fields=created_at,public_metrics&exclude=retweets,replies",
		c.baseURL, url.PathEscape(accountID), clamp(limit, 5, 100))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode}
	}
	var raw struct {
		Data []struct {
			ID            string    `json:"id"`
			CreatedAt     time.Time `json:"created_at"`
			PublicMetrics struct {
				LikeCount    int `json:"like_count"`
				RetweetCount int `json:"retweet_count"`
				ReplyCount   int `json:"reply_count"`
				QuoteCount   int `json:"quote_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, Err: err}
	}
	out := make([]model.Post, 0, len(raw.Data))
	for _, d := range raw.Data {
		out = append(out, model.Post{
			ID:          d.ID,
			AuthorID:    accountID,
			CreatedAt:   d.CreatedAt,
			LikeCount:   d.PublicMetrics.LikeCount,
			RepostCount: d.PublicMetrics.RetweetCount,
			ReplyCount:  d.PublicMetrics.ReplyCount,
			QuoteCount:  d.PublicMetrics.QuoteCount,
		})
	}
	return out, nil
}

// GetUsername resolves the display handle for an account id.
func (c *HTTPClient) GetUsername(ctx context.Context, accountID string) (string, error) {
	const endpoint = "username"
	u := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(accountID))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := c.doWithRetry(ctx, req, endpoint)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return "", &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode}
	}
	var raw struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", &UpstreamError{Endpoint: endpoint, Err: err}
	}
	if raw.Data.Username == "" {
		return "", ErrNotFound
	}
	return raw.Data.Username, nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request, endpoint string) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				metrics.IncAPIRetry(endpoint)
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 {
							wait = d
						}
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		metrics.IncAPIRetry(endpoint)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("request failed after %d attempts: %v", c.maxAttempts, lastErr)}
}
