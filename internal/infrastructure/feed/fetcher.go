package feed

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// FetchResult pairs a feed URI with its download outcome and owning source.
type FetchResult struct {
	Source domain.FeedSource
	URL    string
	Result domain.DownloadResult
}

// Fetcher downloads many feeds concurrently through the shared download
// manager; the per-host politeness window still applies underneath, so
// only requests to distinct hosts actually overlap.
type Fetcher struct {
	fetcher     ports.ResourceFetcher
	concurrency int
	logger      *slog.Logger
}

// NewFetcher bounds the worker pool; concurrency defaults to 5.
func NewFetcher(fetcher ports.ResourceFetcher, concurrency int, logger *slog.Logger) *Fetcher {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Fetcher{fetcher: fetcher, concurrency: concurrency, logger: logger}
}

// FetchAll downloads every feed URI of every source. Individual failures
// are captured in the results, never returned as errors; only context
// cancellation stops the pass early.
func (f *Fetcher) FetchAll(ctx context.Context, sources []domain.FeedSource) []FetchResult {
	var (
		mu      sync.Mutex
		results []FetchResult
	)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(f.concurrency)

	for _, source := range sources {
		for _, feedURL := range source.URLs {
			if ctx.Err() != nil {
				break
			}
			source, feedURL := source, feedURL

			group.Go(func() error {
				res := f.fetcher.Fetch(ctx, feedURL)
				if !res.OK() && f.logger != nil {
					f.logger.Warn("feed download failed",
						"source", source.Name, "url", feedURL, "error", res.Err, "status", res.StatusCode)
				}

				mu.Lock()
				results = append(results, FetchResult{Source: source, URL: feedURL, Result: res})
				mu.Unlock()
				return nil
			})
		}
	}

	_ = group.Wait()
	return results
}
