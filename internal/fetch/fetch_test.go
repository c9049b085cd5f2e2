package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>SEO Blog</title>
    <item>
      <title>Core Update Rolling Out</title>
      <link>https://blog.example.com/core-update</link>
      <description>The update targets thin content.</description>
    </item>
    <item>
      <title>Empty Item</title>
      <link>https://blog.example.com/empty</link>
      <description>  </description>
    </item>
    <item>
      <title>Crawl Budget Notes</title>
      <link>https://blog.example.com/crawl-budget</link>
      <description>Crawl budget guidance changed.</description>
    </item>
  </channel>
</rss>`

func rssSource(url string) *models.Source {
	return &models.Source{
		ID:     uuid.New(),
		Name:   "SEO Blog",
		URL:    url,
		Tier:   models.SourceTierExpert,
		Method: models.FetchMethodRSS,
		Active: true,
	}
}

func TestRSSStrategy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	f := NewFetcher(zap.NewNop(), Options{Timeout: 5 * time.Second, MaxItems: 10})

	articles, err := f.FetchSource(context.Background(), rssSource(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The item without content is skipped.
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Core Update Rolling Out" {
		t.Errorf("unexpected first title %q", articles[0].Title)
	}
	if articles[0].URL != "https://blog.example.com/core-update" {
		t.Errorf("unexpected first URL %q", articles[0].URL)
	}
	if articles[0].Content != "The update targets thin content." {
		t.Errorf("unexpected content %q", articles[0].Content)
	}
}

func TestRSSStrategyMaxItems(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	f := NewFetcher(zap.NewNop(), Options{Timeout: 5 * time.Second, MaxItems: 1})

	articles, err := f.FetchSource(context.Background(), rssSource(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article with MaxItems=1, got %d", len(articles))
	}
}

const redditFixture = `{
  "data": {
    "children": [
      {"data": {"title": "Pinned rules", "selftext": "Read before posting", "stickied": true, "permalink": "/r/seo/rules"}},
      {"data": {"title": "Rankings dropped", "selftext": "Anyone else seeing drops since Tuesday?", "permalink": "/r/seo/comments/abc"}},
      {"data": {"title": "Useful tool", "selftext": "", "url": "https://tool.example.com", "permalink": "/r/seo/comments/def"}}
    ]
  }
}`

func TestRedditStrategy(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(redditFixture))
	}))
	defer srv.Close()

	f := NewFetcher(zap.NewNop(), Options{Timeout: 5 * time.Second, MaxItems: 10})
	source := &models.Source{
		ID:     uuid.New(),
		Name:   "r/SEO",
		URL:    srv.URL + "/r/seo",
		Method: models.FetchMethodReddit,
	}

	articles, err := f.FetchSource(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/r/seo/new.json?limit=10" {
		t.Errorf("unexpected listing path %q", gotPath)
	}

	// The stickied post is skipped.
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Rankings dropped" {
		t.Errorf("unexpected first title %q", articles[0].Title)
	}
	if articles[0].URL != "https://www.reddit.com/r/seo/comments/abc" {
		t.Errorf("expected permalink URL, got %q", articles[0].URL)
	}
	// Link posts fall back to the outbound URL as content.
	if articles[1].Content != "https://tool.example.com" {
		t.Errorf("unexpected link-post content %q", articles[1].Content)
	}
}

func TestListingURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		url   string
		limit int
		want  string
	}{
		{"plain subreddit", "https://www.reddit.com/r/seo", 10, "https://www.reddit.com/r/seo/new.json?limit=10"},
		{"trailing slash", "https://www.reddit.com/r/seo/", 5, "https://www.reddit.com/r/seo/new.json?limit=5"},
		{"already json", "https://www.reddit.com/r/seo/top.json?t=day", 10, "https://www.reddit.com/r/seo/top.json?t=day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listingURL(tt.url, tt.limit); got != tt.want {
				t.Errorf("listingURL(%q, %d) = %q, want %q", tt.url, tt.limit, got, tt.want)
			}
		})
	}
}

func TestFetchSourceUnknownMethod(t *testing.T) {
	t.Parallel()

	f := NewFetcher(zap.NewNop(), Options{})
	source := &models.Source{ID: uuid.New(), Name: "odd", Method: "carrier-pigeon"}

	if _, err := f.FetchSource(context.Background(), source); err == nil {
		t.Fatal("expected error for unknown fetch method")
	}
}

// fakeStrategy lets FetchAll tests run without network
type fakeStrategy struct {
	articles map[uuid.UUID][]Article
	errs     map[uuid.UUID]error
}

func (s *fakeStrategy) Fetch(ctx context.Context, source *models.Source) ([]Article, error) {
	if err := s.errs[source.ID]; err != nil {
		return nil, err
	}
	return s.articles[source.ID], nil
}

func TestFetchAll(t *testing.T) {
	t.Parallel()

	good := &models.Source{ID: uuid.New(), Name: "good", Method: models.FetchMethodRSS}
	bad := &models.Source{ID: uuid.New(), Name: "bad", Method: models.FetchMethodRSS}
	sources := []*models.Source{good, bad}

	f := NewFetcher(zap.NewNop(), Options{Concurrency: 2})
	f.strategies[models.FetchMethodRSS] = &fakeStrategy{
		articles: map[uuid.UUID][]Article{
			good.ID: {{URL: "https://example.com/a", Title: "A", Content: "body"}},
		},
		errs: map[uuid.UUID]error{bad.ID: errors.New("boom")},
	}

	results := f.FetchAll(context.Background(), sources)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Results come back in input order.
	if results[0].Source.ID != good.ID || results[1].Source.ID != bad.ID {
		t.Fatal("results out of input order")
	}
	if results[0].Err != nil || len(results[0].Articles) != 1 {
		t.Error("good source should yield its article")
	}
	if results[1].Err == nil || len(results[1].Articles) != 0 {
		t.Error("bad source should yield an error and no articles")
	}
}

// fakeSeenStore marks specific URLs as seen; Fail makes every check error
type fakeSeenStore struct {
	seen   map[string]bool
	fail   bool
	marked []string
}

func (s *fakeSeenStore) Seen(ctx context.Context, url string) (bool, error) {
	if s.fail {
		return false, errors.New("redis down")
	}
	return s.seen[url], nil
}

func (s *fakeSeenStore) MarkSeen(ctx context.Context, urls []string) error {
	s.marked = append(s.marked, urls...)
	return nil
}

func (s *fakeSeenStore) Close() error { return nil }

func TestSeenFilter(t *testing.T) {
	t.Parallel()

	source := &models.Source{ID: uuid.New(), Name: "feed", Method: models.FetchMethodRSS}
	articles := []Article{
		{URL: "https://example.com/old", Title: "Old"},
		{URL: "https://example.com/new", Title: "New"},
	}

	t.Run("seen articles filtered", func(t *testing.T) {
		t.Parallel()

		store := &fakeSeenStore{seen: map[string]bool{"https://example.com/old": true}}
		f := NewFetcher(zap.NewNop(), Options{Seen: store})
		f.strategies[models.FetchMethodRSS] = &fakeStrategy{
			articles: map[uuid.UUID][]Article{source.ID: articles},
		}

		results := f.FetchAll(context.Background(), []*models.Source{source})
		if len(results[0].Articles) != 1 || results[0].Articles[0].URL != "https://example.com/new" {
			t.Errorf("expected only the unseen article, got %v", results[0].Articles)
		}
	})

	t.Run("store failure fails open", func(t *testing.T) {
		t.Parallel()

		store := &fakeSeenStore{fail: true}
		f := NewFetcher(zap.NewNop(), Options{Seen: store})
		f.strategies[models.FetchMethodRSS] = &fakeStrategy{
			articles: map[uuid.UUID][]Article{source.ID: articles},
		}

		results := f.FetchAll(context.Background(), []*models.Source{source})
		if len(results[0].Articles) != 2 {
			t.Errorf("expected all articles on store failure, got %d", len(results[0].Articles))
		}
	})

	t.Run("mark ingested", func(t *testing.T) {
		t.Parallel()

		store := &fakeSeenStore{}
		f := NewFetcher(zap.NewNop(), Options{Seen: store})

		f.MarkIngested(context.Background(), []string{"https://example.com/a", "https://example.com/b"})
		if len(store.marked) != 2 {
			t.Errorf("expected 2 URLs marked, got %d", len(store.marked))
		}

		f.MarkIngested(context.Background(), nil)
		if len(store.marked) != 2 {
			t.Error("empty mark should be a no-op")
		}
	})
}
