package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"memescout/internal/analyze"
	"memescout/internal/filter"
	"memescout/internal/metrics"
	"memescout/internal/model"
	"memescout/internal/util"
	"memescout/internal/xclient"
)

// Params bounds a discovery run.
type Params struct {
	SearchTerms     []string
	MinFollowers    int
	MaxPerTerm      int
	PostsPerAccount int
}

// Pipeline turns search terms into analyzed meme-creator results. Terms are
// processed in order with a cooldown between them; candidates within a term
// go through a bounded worker pool that shares the client's rate limiter.
type Pipeline struct {
	client   xclient.Client
	log      zerolog.Logger
	workers  int
	cooldown time.Duration
}

func New(client xclient.Client, log zerolog.Logger, workers int, cooldown time.Duration) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{client: client, log: log, workers: workers, cooldown: cooldown}
}

// Discover runs candidate search term by term and returns one result per
// qualifying, successfully analyzed account. Per-candidate and per-term
// failures are skipped, never fatal. Cancellation is observed at term
// boundaries; results gathered before it are returned alongside ctx.Err so
// the caller can still persist them.
func (p *Pipeline) Discover(ctx context.Context, params Params) ([]model.AccountResult, error) {
	log := p.log.With().Str("run_id", uuid.NewString()).Logger()
	start := time.Now()
	metrics.DiscoveryRuns.Inc()

	// Accounts analyzed earlier in the run are never fetched again.
	seen := make(map[string]struct{})
	var (
		mu      sync.Mutex
		results []model.AccountResult
	)

	for i, term := range params.SearchTerms {
		if i > 0 {
			select {
			case <-time.After(p.cooldown):
			case <-ctx.Done():
				log.Warn().Str("term", term).Int("results", len(results)).Msg("discovery aborted between terms")
				return results, ctx.Err()
			}
		}
		refs, err := p.client.SearchRecent(ctx, term, params.MaxPerTerm)
		if err != nil {
			metrics.IncSkip("search_error")
			log.Warn().Err(err).Str("term", term).Msg("search failed, skipping term")
			continue
		}
		if len(refs) == 0 {
			log.Debug().Str("term", term).Msg("no hits")
			continue
		}

		var authors []string
		for _, r := range refs {
			if r.AuthorID == "" {
				continue
			}
			if _, ok := seen[r.AuthorID]; ok {
				continue
			}
			seen[r.AuthorID] = struct{}{}
			authors = append(authors, r.AuthorID)
		}

		jobs := make(chan string)
		var wg sync.WaitGroup
		for w := 0; w < p.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for id := range jobs {
					res, ok := p.analyzeAuthor(ctx, log, id, params)
					if !ok {
						continue
					}
					mu.Lock()
					results = append(results, res)
					mu.Unlock()
				}
			}()
		}
		for _, id := range authors {
			jobs <- id
		}
		close(jobs)
		wg.Wait()
		log.Info().Str("term", term).Int("candidates", len(authors)).Msg("term done")
	}

	metrics.ObserveDiscoveryDuration(start)
	log.Info().Int("results", len(results)).Msg("discovery complete")
	return results, nil
}

// analyzeAuthor resolves one candidate's profile, applies the filter, and
// aggregates its recent posts. Any failure or rejection is a skip.
func (p *Pipeline) analyzeAuthor(ctx context.Context, log zerolog.Logger, accountID string, params Params) (model.AccountResult, bool) {
	var zero model.AccountResult
	prof, err := p.client.GetUserProfile(ctx, accountID)
	if err != nil {
		if errors.Is(err, xclient.ErrNotFound) {
			metrics.IncSkip("profile_gone")
			log.Debug().Str("account", accountID).Msg("profile gone, skipping")
		} else {
			metrics.IncSkip("profile_error")
			log.Warn().Err(err).Str("account", accountID).Msg("profile fetch failed, skipping")
		}
		return zero, false
	}
	prof.Bio = util.NormalizeWhitespace(prof.Bio)
	if !filter.Qualifies(prof, params.MinFollowers) {
		metrics.IncSkip("not_qualifying")
		return zero, false
	}
	if prof.Handle == "" {
		if h, err := p.client.GetUsername(ctx, accountID); err == nil {
			prof.Handle = h
		}
	}
	posts, err := p.client.GetUserPosts(ctx, accountID, params.PostsPerAccount)
	if err != nil {
		metrics.IncSkip("posts_error")
		log.Warn().Err(err).Str("account", accountID).Msg("post fetch failed, skipping")
		return zero, false
	}
	sum, err := analyze.Summarize(posts)
	if err != nil {
		metrics.IncSkip("no_data")
		log.Debug().Str("account", accountID).Msg("no analyzable posts, skipping")
		return zero, false
	}
	log.Debug().Str("account", accountID).Str("handle", prof.Handle).Float64("rate", sum.EngagementRate).Msg("analyzed")
	return model.AccountResult{Account: prof, Summary: sum}, true
}
