// Package fetch retrieves recent content from configured sources and
// normalizes it into articles. One fetch contract, one strategy per fetch
// method; a failing source contributes zero articles and never aborts a run.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultFetchTimeout bounds one source fetch
	DefaultFetchTimeout = 30 * time.Second
	// DefaultMaxItems caps articles taken from a single source
	DefaultMaxItems = 10
	// DefaultConcurrency is the fetch worker pool size
	DefaultConcurrency = 5

	userAgent = "seo-intel/1.0 (+https://github.com/agencyops/seo-intel)"
)

// Article is one normalized content item, the shared output shape of all
// strategies. IDs are assigned when the orchestrator persists it.
type Article struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Strategy fetches recent articles for one source
type Strategy interface {
	Fetch(ctx context.Context, source *models.Source) ([]Article, error)
}

// SourceResult pairs a source with whatever its fetch produced. Err is kept
// for reporting; the orchestrator treats it as zero articles.
type SourceResult struct {
	Source   *models.Source
	Articles []Article
	Err      error
}

// Options tunes a Fetcher
type Options struct {
	Timeout     time.Duration
	MaxItems    int
	Concurrency int
	// Seen filters out articles ingested by earlier digests. Nil disables
	// the filter.
	Seen SeenStore
}

// Fetcher dispatches sources to the strategy matching their fetch method
// and runs them through a bounded worker pool.
type Fetcher struct {
	strategies  map[models.FetchMethod]Strategy
	seen        SeenStore
	timeout     time.Duration
	maxItems    int
	concurrency int
	logger      *zap.Logger
}

// NewFetcher creates a fetcher with the standard strategy set
func NewFetcher(logger *zap.Logger, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	client := &http.Client{Timeout: opts.Timeout}

	return &Fetcher{
		strategies: map[models.FetchMethod]Strategy{
			models.FetchMethodRSS:     newRSSStrategy(client, opts.MaxItems),
			models.FetchMethodYouTube: newYouTubeStrategy(client, opts.MaxItems, opts.Timeout),
			models.FetchMethodReddit:  newRedditStrategy(client, opts.MaxItems),
			models.FetchMethodWebpage: newWebpageStrategy(opts.Timeout),
		},
		seen:        opts.Seen,
		timeout:     opts.Timeout,
		maxItems:    opts.MaxItems,
		concurrency: opts.Concurrency,
		logger:      logger,
	}
}

// FetchSource fetches one source with the strategy for its method. Used
// directly by the source test operation; nothing is persisted or marked seen.
func (f *Fetcher) FetchSource(ctx context.Context, source *models.Source) ([]Article, error) {
	strategy, ok := f.strategies[source.Method]
	if !ok {
		return nil, fmt.Errorf("no fetch strategy for method %q", source.Method)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	articles, err := strategy.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source %s: %w", source.Name, err)
	}

	return articles, nil
}

// FetchAll fetches every source concurrently through a worker pool. Sources
// are independent, so order does not matter; per-source failures are logged
// and surface as an empty article list. Results come back in input order.
func (f *Fetcher) FetchAll(ctx context.Context, sources []*models.Source) []SourceResult {
	results := make([]SourceResult, len(sources))

	var wg sync.WaitGroup
	jobs := make(chan int, len(sources))

	for w := 0; w < f.concurrency; w++ {
		go func() {
			for i := range jobs {
				results[i] = f.fetchOne(ctx, sources[i])
				wg.Done()
			}
		}()
	}

	for i := range sources {
		wg.Add(1)
		jobs <- i
	}
	wg.Wait()
	close(jobs)

	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, source *models.Source) SourceResult {
	articles, err := f.FetchSource(ctx, source)
	if err != nil {
		f.logger.Warn("source_fetch_failed",
			zap.String("source", source.Name),
			zap.String("method", string(source.Method)),
			zap.Error(err),
		)
		return SourceResult{Source: source, Err: err}
	}

	if f.seen != nil {
		articles = f.filterSeen(ctx, source, articles)
	}

	f.logger.Info("source_fetched",
		zap.String("source", source.Name),
		zap.String("method", string(source.Method)),
		zap.Int("articles", len(articles)),
	)

	return SourceResult{Source: source, Articles: articles}
}

// filterSeen drops articles whose URL was ingested by an earlier digest.
// Seen-store failures fail open: better a duplicate article than a lost one.
func (f *Fetcher) filterSeen(ctx context.Context, source *models.Source, articles []Article) []Article {
	fresh := make([]Article, 0, len(articles))
	for _, article := range articles {
		seen, err := f.seen.Seen(ctx, article.URL)
		if err != nil {
			f.logger.Warn("seen_store_check_failed",
				zap.String("source", source.Name),
				zap.Error(err),
			)
			fresh = append(fresh, article)
			continue
		}
		if !seen {
			fresh = append(fresh, article)
		}
	}
	return fresh
}

// MarkIngested records article URLs so later digests skip them
func (f *Fetcher) MarkIngested(ctx context.Context, urls []string) {
	if f.seen == nil || len(urls) == 0 {
		return
	}
	if err := f.seen.MarkSeen(ctx, urls); err != nil {
		f.logger.Warn("seen_store_mark_failed", zap.Error(err))
	}
}
