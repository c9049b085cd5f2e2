package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/agencyops/seo-intel/internal/database"
	"github.com/agencyops/seo-intel/internal/drafts"
	"github.com/agencyops/seo-intel/internal/fetch"
	"github.com/agencyops/seo-intel/internal/models"
	"github.com/agencyops/seo-intel/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memDigestRepo struct {
	byPeriod map[string]*models.Digest
}

func newMemDigestRepo() *memDigestRepo {
	return &memDigestRepo{byPeriod: make(map[string]*models.Digest)}
}

func (m *memDigestRepo) Create(ctx context.Context, digest *models.Digest) error {
	if _, ok := m.byPeriod[digest.Period]; ok {
		return database.ErrDuplicateRun
	}
	for _, d := range m.byPeriod {
		if d.Status == models.DigestStatusStarted {
			return database.ErrDuplicateRun
		}
	}
	digest.Status = models.DigestStatusStarted
	digest.StartedAt = time.Now()
	m.byPeriod[digest.Period] = digest
	return nil
}

func (m *memDigestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Digest, error) {
	for _, d := range m.byPeriod {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memDigestRepo) GetByPeriod(ctx context.Context, period string) (*models.Digest, error) {
	if d, ok := m.byPeriod[period]; ok {
		return d, nil
	}
	return nil, database.ErrNotFound
}

func (m *memDigestRepo) List(ctx context.Context, limit int) ([]*models.Digest, error) {
	return nil, nil
}

func (m *memDigestRepo) Complete(ctx context.Context, id uuid.UUID, counts models.Digest) error {
	d, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d.Status != models.DigestStatusStarted {
		return database.ErrConflict
	}
	d.Status = models.DigestStatusCompleted
	d.SourcesFetched = counts.SourcesFetched
	d.RecommendationsGenerated = counts.RecommendationsGenerated
	d.TaskDraftsCreated = counts.TaskDraftsCreated
	d.SopDraftsCreated = counts.SopDraftsCreated
	now := time.Now()
	d.CompletedAt = &now
	return nil
}

func (m *memDigestRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	d, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d.Status != models.DigestStatusStarted {
		return database.ErrConflict
	}
	d.Status = models.DigestStatusFailed
	d.ErrorMessage = &errorMessage
	now := time.Now()
	d.CompletedAt = &now
	return nil
}

type memSourceRepo struct {
	sources []*models.Source
}

func (m *memSourceRepo) Create(ctx context.Context, source *models.Source) error { return nil }
func (m *memSourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Source, error) {
	return nil, database.ErrNotFound
}
func (m *memSourceRepo) List(ctx context.Context, activeOnly bool) ([]*models.Source, error) {
	return m.sources, nil
}
func (m *memSourceRepo) Update(ctx context.Context, source *models.Source) error { return nil }
func (m *memSourceRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }

type memFetchResultRepo struct {
	results []*models.FetchResult
	failOn  int // fail the nth create (1-based); 0 disables
}

func (m *memFetchResultRepo) Create(ctx context.Context, result *models.FetchResult) error {
	if m.failOn > 0 && len(m.results)+1 == m.failOn {
		return errors.New("insert failed")
	}
	m.results = append(m.results, result)
	return nil
}

func (m *memFetchResultRepo) ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.FetchResult, error) {
	return m.results, nil
}

func (m *memFetchResultRepo) CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error) {
	return len(m.results), nil
}

type memRecRepo struct {
	recs []*models.Recommendation
}

func (m *memRecRepo) Create(ctx context.Context, rec *models.Recommendation) error {
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memRecRepo) ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.Recommendation, error) {
	return m.recs, nil
}

func (m *memRecRepo) CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error) {
	return len(m.recs), nil
}

type memTaskDraftRepo struct {
	drafts []*models.TaskDraft
}

func (m *memTaskDraftRepo) Create(ctx context.Context, draft *models.TaskDraft) error {
	m.drafts = append(m.drafts, draft)
	return nil
}
func (m *memTaskDraftRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TaskDraft, error) {
	return nil, database.ErrNotFound
}
func (m *memTaskDraftRepo) ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.TaskDraft, error) {
	return m.drafts, nil
}
func (m *memTaskDraftRepo) TransitionStatus(ctx context.Context, id uuid.UUID, to models.DraftStatus) error {
	return nil
}
func (m *memTaskDraftRepo) ResetToPending(ctx context.Context, id uuid.UUID) error { return nil }
func (m *memTaskDraftRepo) CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error) {
	return len(m.drafts), nil
}

type memSopDraftRepo struct {
	drafts []*models.SopDraft
}

func (m *memSopDraftRepo) Create(ctx context.Context, draft *models.SopDraft) error {
	m.drafts = append(m.drafts, draft)
	return nil
}
func (m *memSopDraftRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SopDraft, error) {
	return nil, database.ErrNotFound
}
func (m *memSopDraftRepo) ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.SopDraft, error) {
	return m.drafts, nil
}
func (m *memSopDraftRepo) TransitionStatus(ctx context.Context, id uuid.UUID, to models.DraftStatus) error {
	return nil
}
func (m *memSopDraftRepo) ResetToPending(ctx context.Context, id uuid.UUID) error { return nil }
func (m *memSopDraftRepo) UpdateAfterContent(ctx context.Context, id uuid.UUID, afterContent string) error {
	return nil
}
func (m *memSopDraftRepo) CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error) {
	return len(m.drafts), nil
}

// stubFetcher returns canned per-source results and records ingested URLs
type stubFetcher struct {
	articles map[uuid.UUID][]fetch.Article
	failing  map[uuid.UUID]error
	marked   []string
}

func (s *stubFetcher) FetchAll(ctx context.Context, sources []*models.Source) []fetch.SourceResult {
	results := make([]fetch.SourceResult, len(sources))
	for i, source := range sources {
		if err, ok := s.failing[source.ID]; ok {
			results[i] = fetch.SourceResult{Source: source, Err: err}
			continue
		}
		results[i] = fetch.SourceResult{Source: source, Articles: s.articles[source.ID]}
	}
	return results
}

func (s *stubFetcher) MarkIngested(ctx context.Context, urls []string) {
	s.marked = append(s.marked, urls...)
}

// stubProvider records the batches it sees and derives one recommendation
// per batch citing every article in it
type stubProvider struct {
	batches [][]ai.BatchArticle
	err     error
}

func (s *stubProvider) Analyze(ctx context.Context, articles []ai.BatchArticle) ([]ai.ParsedRecommendation, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, articles)

	citations := make([]models.Citation, len(articles))
	for i, a := range articles {
		citations[i] = models.Citation{
			FetchResultID: a.Result.ID,
			SourceID:      a.Source.ID,
			SourceName:    a.Source.Name,
			URL:           a.Result.URL,
			Excerpt:       "quoted",
		}
	}

	return []ai.ParsedRecommendation{
		{
			Category:  "technical-seo",
			Title:     fmt.Sprintf("Finding from batch %d", len(s.batches)),
			Summary:   "Something changed.",
			Impact:    models.ImpactHigh,
			Citations: citations,
		},
	}, nil
}

type env struct {
	digests      *memDigestRepo
	fetchResults *memFetchResultRepo
	recs         *memRecRepo
	taskDrafts   *memTaskDraftRepo
	sopDrafts    *memSopDraftRepo
	fetcher      *stubFetcher
	provider     *stubProvider
	orchestrator *Orchestrator
}

func newEnv(t *testing.T, sources []*models.Source, fetcher *stubFetcher, provider *stubProvider, opts Options) *env {
	t.Helper()

	e := &env{
		digests:      newMemDigestRepo(),
		fetchResults: &memFetchResultRepo{},
		recs:         &memRecRepo{},
		taskDrafts:   &memTaskDraftRepo{},
		sopDrafts:    &memSopDraftRepo{},
		fetcher:      fetcher,
		provider:     provider,
	}

	e.orchestrator = NewOrchestrator(
		e.digests,
		&memSourceRepo{sources: sources},
		e.fetchResults,
		e.recs,
		e.taskDrafts,
		e.sopDrafts,
		fetcher,
		provider,
		drafts.NewGenerator(nil, zap.NewNop()),
		opts,
		zap.NewNop(),
	)
	return e
}

func makeSource(name string) *models.Source {
	return &models.Source{
		ID:       uuid.New(),
		Name:     name,
		URL:      "https://" + name + ".example.com/feed",
		Tier:     models.SourceTierExpert,
		Category: "seo",
		Method:   models.FetchMethodRSS,
		Active:   true,
	}
}

func makeArticles(n int, prefix string) []fetch.Article {
	articles := make([]fetch.Article, n)
	for i := range articles {
		articles[i] = fetch.Article{
			URL:       fmt.Sprintf("https://example.com/%s-%d", prefix, i),
			Title:     fmt.Sprintf("%s %d", prefix, i),
			Content:   "body text",
			FetchedAt: time.Now(),
		}
	}
	return articles
}

func TestRunPipeline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("successful run", func(t *testing.T) {
		t.Parallel()

		s1, s2 := makeSource("alpha"), makeSource("beta")
		fetcher := &stubFetcher{articles: map[uuid.UUID][]fetch.Article{
			s1.ID: makeArticles(2, "alpha"),
			s2.ID: makeArticles(1, "beta"),
		}}
		provider := &stubProvider{}
		e := newEnv(t, []*models.Source{s1, s2}, fetcher, provider, Options{BatchSize: 20, MaxArticleChars: 8000})

		if err := e.orchestrator.RunPipeline(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		period := time.Now().UTC().Format(PeriodFormat)
		d, err := e.digests.GetByPeriod(ctx, period)
		if err != nil {
			t.Fatalf("digest not found: %v", err)
		}

		if d.Status != models.DigestStatusCompleted {
			t.Fatalf("status = %q, want completed", d.Status)
		}
		if d.SourcesFetched != len(e.fetchResults.results) {
			t.Errorf("SourcesFetched = %d, want %d persisted articles", d.SourcesFetched, len(e.fetchResults.results))
		}
		if d.RecommendationsGenerated != len(e.recs.recs) {
			t.Errorf("RecommendationsGenerated = %d, want %d", d.RecommendationsGenerated, len(e.recs.recs))
		}
		if d.TaskDraftsCreated != len(e.taskDrafts.drafts) {
			t.Errorf("TaskDraftsCreated = %d, want %d", d.TaskDraftsCreated, len(e.taskDrafts.drafts))
		}
		if d.SopDraftsCreated != len(e.sopDrafts.drafts) {
			t.Errorf("SopDraftsCreated = %d, want %d", d.SopDraftsCreated, len(e.sopDrafts.drafts))
		}
		if len(e.fetchResults.results) != 3 {
			t.Errorf("expected 3 fetch results, got %d", len(e.fetchResults.results))
		}
		if len(fetcher.marked) != 3 {
			t.Errorf("expected 3 URLs marked ingested, got %d", len(fetcher.marked))
		}

		// All citations resolve to persisted fetch results.
		persisted := make(map[uuid.UUID]bool)
		for _, fr := range e.fetchResults.results {
			persisted[fr.ID] = true
		}
		for _, rec := range e.recs.recs {
			if len(rec.Citations) == 0 {
				t.Error("persisted recommendation without citations")
			}
			for _, c := range rec.Citations {
				if !persisted[c.FetchResultID] {
					t.Error("citation references an unpersisted fetch result")
				}
			}
		}
	})

	t.Run("duplicate run is a no-op", func(t *testing.T) {
		t.Parallel()

		s := makeSource("alpha")
		fetcher := &stubFetcher{articles: map[uuid.UUID][]fetch.Article{s.ID: makeArticles(1, "alpha")}}
		provider := &stubProvider{}
		e := newEnv(t, []*models.Source{s}, fetcher, provider, Options{})

		if err := e.orchestrator.RunPipeline(ctx); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		firstResults := len(e.fetchResults.results)

		if err := e.orchestrator.RunPipeline(ctx); err != nil {
			t.Fatalf("second run should be a silent no-op, got %v", err)
		}
		if len(e.fetchResults.results) != firstResults {
			t.Error("second run in the same period must not fetch anything")
		}
		if len(e.digests.byPeriod) != 1 {
			t.Errorf("expected 1 digest, got %d", len(e.digests.byPeriod))
		}
	})

	t.Run("prior run still in flight is a no-op", func(t *testing.T) {
		t.Parallel()

		s := makeSource("alpha")
		fetcher := &stubFetcher{articles: map[uuid.UUID][]fetch.Article{s.ID: makeArticles(1, "alpha")}}
		e := newEnv(t, []*models.Source{s}, fetcher, &stubProvider{}, Options{})

		yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(PeriodFormat)
		stale := &models.Digest{ID: uuid.New(), Period: yesterday}
		if err := e.digests.Create(ctx, stale); err != nil {
			t.Fatalf("seeding in-flight digest: %v", err)
		}

		if err := e.orchestrator.RunPipeline(ctx); err != nil {
			t.Fatalf("expected a silent no-op while a run is in flight, got %v", err)
		}

		if len(e.digests.byPeriod) != 1 {
			t.Errorf("expected only the in-flight digest, got %d", len(e.digests.byPeriod))
		}
		if len(e.fetchResults.results) != 0 {
			t.Error("nothing should be fetched while a prior run is in flight")
		}
		if d, _ := e.digests.GetByPeriod(ctx, yesterday); d.Status != models.DigestStatusStarted {
			t.Errorf("in-flight digest status = %q, want started", d.Status)
		}
	})

	t.Run("failed source does not fail the run", func(t *testing.T) {
		t.Parallel()

		good, bad := makeSource("good"), makeSource("bad")
		fetcher := &stubFetcher{
			articles: map[uuid.UUID][]fetch.Article{good.ID: makeArticles(2, "good")},
			failing:  map[uuid.UUID]error{bad.ID: errors.New("connection refused")},
		}
		provider := &stubProvider{}
		e := newEnv(t, []*models.Source{good, bad}, fetcher, provider, Options{})

		if err := e.orchestrator.RunPipeline(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		period := time.Now().UTC().Format(PeriodFormat)
		d, _ := e.digests.GetByPeriod(ctx, period)
		if d.Status != models.DigestStatusCompleted {
			t.Fatalf("status = %q, want completed despite source failure", d.Status)
		}
		if len(e.fetchResults.results) != 2 {
			t.Errorf("expected the good source's 2 articles, got %d", len(e.fetchResults.results))
		}
	})

	t.Run("provider failure marks the digest failed", func(t *testing.T) {
		t.Parallel()

		s := makeSource("alpha")
		fetcher := &stubFetcher{articles: map[uuid.UUID][]fetch.Article{s.ID: makeArticles(1, "alpha")}}
		provider := &stubProvider{err: errors.New("rate limited")}
		e := newEnv(t, []*models.Source{s}, fetcher, provider, Options{})

		err := e.orchestrator.RunPipeline(ctx)
		if err == nil {
			t.Fatal("expected the run to fail")
		}

		period := time.Now().UTC().Format(PeriodFormat)
		d, _ := e.digests.GetByPeriod(ctx, period)
		if d.Status != models.DigestStatusFailed {
			t.Fatalf("status = %q, want failed", d.Status)
		}
		if d.ErrorMessage == nil || !strings.Contains(*d.ErrorMessage, "rate limited") {
			t.Error("digest should record the failure cause")
		}
		// Fetched articles stay persisted for inspection.
		if len(e.fetchResults.results) != 1 {
			t.Errorf("expected fetch results preserved, got %d", len(e.fetchResults.results))
		}
		// The seen-set is untouched; the next run must see these URLs again
		// since nothing was analyzed.
		if len(fetcher.marked) != 0 {
			t.Errorf("failed run marked %d URLs ingested, want 0", len(fetcher.marked))
		}
	})

	t.Run("batching and index continuity", func(t *testing.T) {
		t.Parallel()

		s := makeSource("alpha")
		fetcher := &stubFetcher{articles: map[uuid.UUID][]fetch.Article{s.ID: makeArticles(5, "alpha")}}
		provider := &stubProvider{}
		e := newEnv(t, []*models.Source{s}, fetcher, provider, Options{BatchSize: 2})

		if err := e.orchestrator.RunPipeline(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(provider.batches) != 3 {
			t.Fatalf("expected 3 batches for 5 articles at size 2, got %d", len(provider.batches))
		}
		for i, want := range []int{2, 2, 1} {
			if got := len(provider.batches[i]); got != want {
				t.Errorf("batch %d size = %d, want %d", i+1, got, want)
			}
		}

		for i, rec := range e.recs.recs {
			if rec.Index != i {
				t.Errorf("recommendation %d has index %d; indices must be continuous across batches", i, rec.Index)
			}
		}
	})

	t.Run("content truncated for analysis but persisted in full", func(t *testing.T) {
		t.Parallel()

		s := makeSource("alpha")
		long := strings.Repeat("word ", 500)
		fetcher := &stubFetcher{articles: map[uuid.UUID][]fetch.Article{s.ID: {
			{URL: "https://example.com/long", Title: "Long", Content: long, FetchedAt: time.Now()},
		}}}
		provider := &stubProvider{}
		e := newEnv(t, []*models.Source{s}, fetcher, provider, Options{BatchSize: 20, MaxArticleChars: 100})

		if err := e.orchestrator.RunPipeline(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := e.fetchResults.results[0].Content; got != long {
			t.Error("persisted fetch result should keep the full content")
		}
		if got := len(provider.batches[0][0].Result.Content); got > 100 {
			t.Errorf("provider saw %d chars, want at most 100", got)
		}
	})

	t.Run("persistence failure fails the fetch stage", func(t *testing.T) {
		t.Parallel()

		s := makeSource("alpha")
		fetcher := &stubFetcher{articles: map[uuid.UUID][]fetch.Article{s.ID: makeArticles(2, "alpha")}}
		provider := &stubProvider{}
		e := newEnv(t, []*models.Source{s}, fetcher, provider, Options{})
		e.fetchResults.failOn = 2

		err := e.orchestrator.RunPipeline(ctx)
		if err == nil {
			t.Fatal("expected the run to fail")
		}

		period := time.Now().UTC().Format(PeriodFormat)
		d, _ := e.digests.GetByPeriod(ctx, period)
		if d.Status != models.DigestStatusFailed {
			t.Fatalf("status = %q, want failed", d.Status)
		}
		if len(fetcher.marked) != 0 {
			t.Errorf("failed run marked %d URLs ingested, want 0", len(fetcher.marked))
		}
	})
}
