// Package digest owns the lifecycle of one pipeline run: claim the period,
// fetch, analyze, draft, finalize. A digest that fails partway keeps
// everything persisted up to the failure; a partial digest is still useful
// for review.
package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencyops/seo-intel/internal/batch"
	"github.com/agencyops/seo-intel/internal/database"
	"github.com/agencyops/seo-intel/internal/drafts"
	"github.com/agencyops/seo-intel/internal/fetch"
	"github.com/agencyops/seo-intel/internal/models"
	"github.com/agencyops/seo-intel/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PeriodFormat labels one digest period; the pipeline runs daily
const PeriodFormat = "2006-01-02"

// Fetcher is the slice of fetch.Fetcher the orchestrator needs
type Fetcher interface {
	FetchAll(ctx context.Context, sources []*models.Source) []fetch.SourceResult
	MarkIngested(ctx context.Context, urls []string)
}

// Options tunes a pipeline run
type Options struct {
	BatchSize       int
	MaxArticleChars int
}

// Orchestrator drives the fetch -> analyze -> draft stages of a run
type Orchestrator struct {
	digests      database.DigestRepositoryInterface
	sources      database.SourceRepositoryInterface
	fetchResults database.FetchResultRepositoryInterface
	recs         database.RecommendationRepositoryInterface
	taskDrafts   database.TaskDraftRepositoryInterface
	sopDrafts    database.SopDraftRepositoryInterface

	fetcher   Fetcher
	provider  ai.Provider
	generator *drafts.Generator

	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewOrchestrator creates a pipeline orchestrator
func NewOrchestrator(
	digests database.DigestRepositoryInterface,
	sources database.SourceRepositoryInterface,
	fetchResults database.FetchResultRepositoryInterface,
	recs database.RecommendationRepositoryInterface,
	taskDrafts database.TaskDraftRepositoryInterface,
	sopDrafts database.SopDraftRepositoryInterface,
	fetcher Fetcher,
	provider ai.Provider,
	generator *drafts.Generator,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	if opts.BatchSize < 1 {
		opts.BatchSize = 20
	}
	if opts.MaxArticleChars < 1 {
		opts.MaxArticleChars = 8000
	}

	return &Orchestrator{
		digests:      digests,
		sources:      sources,
		fetchResults: fetchResults,
		recs:         recs,
		taskDrafts:   taskDrafts,
		sopDrafts:    sopDrafts,
		fetcher:      fetcher,
		provider:     provider,
		generator:    generator,
		opts:         opts,
		logger:       logger,
		now:          time.Now,
	}
}

// RunPipeline executes one digest run for the current period. At most one
// run exists per period and at most one digest is in started status at a
// time; both guards live in the digest insert itself, so the claim is
// atomic even across processes. A refused claim — a scheduler double-fire
// or a prior period's run still in flight — is a benign no-op. Stage
// failures mark the digest failed with the captured error and propagate to
// the caller for logging.
func (o *Orchestrator) RunPipeline(ctx context.Context) error {
	period := o.now().UTC().Format(PeriodFormat)

	digest := &models.Digest{
		ID:     uuid.New(),
		Period: period,
	}

	if err := o.digests.Create(ctx, digest); err != nil {
		if errors.Is(err, database.ErrDuplicateRun) {
			o.logger.Info("digest_run_skipped",
				zap.String("period", period),
				zap.Error(err),
			)
			return nil
		}
		return fmt.Errorf("failed to claim digest period: %w", err)
	}

	o.logger.Info("digest_started",
		zap.String("digest_id", digest.ID.String()),
		zap.String("period", period),
	)

	if err := o.runStages(ctx, digest); err != nil {
		o.fail(ctx, digest, err)
		return err
	}

	return nil
}

func (o *Orchestrator) runStages(ctx context.Context, digest *models.Digest) error {
	// Stage 1: fetch. Per-source failures are already isolated inside the
	// fetcher; only persistence problems fail the stage.
	results, err := o.fetchStage(ctx, digest)
	if err != nil {
		return fmt.Errorf("fetch stage: %w", err)
	}

	// Stage 2: analyze. Batches run sequentially so recommendation
	// indices are stable and the provider is never hit concurrently.
	recs, err := o.analyzeStage(ctx, digest, results)
	if err != nil {
		return fmt.Errorf("analyze stage: %w", err)
	}

	// Stage 3: drafts. Generation is total; only persistence can fail.
	taskCount, sopCount, err := o.draftStage(ctx, digest, recs)
	if err != nil {
		return fmt.Errorf("draft stage: %w", err)
	}

	counts := models.Digest{
		SourcesFetched:           len(results),
		RecommendationsGenerated: len(recs),
		TaskDraftsCreated:        taskCount,
		SopDraftsCreated:         sopCount,
	}
	if err := o.digests.Complete(ctx, digest.ID, counts); err != nil {
		return fmt.Errorf("failed to finalize digest: %w", err)
	}

	// Only a completed run marks its articles ingested. A failed run leaves
	// the seen-set untouched so the next period re-fetches whatever was
	// never analyzed.
	urls := make([]string, len(results))
	for i, a := range results {
		urls[i] = a.Result.URL
	}
	o.fetcher.MarkIngested(ctx, urls)

	o.logger.Info("digest_completed",
		zap.String("digest_id", digest.ID.String()),
		zap.Int("sources_fetched", counts.SourcesFetched),
		zap.Int("recommendations", counts.RecommendationsGenerated),
		zap.Int("task_drafts", counts.TaskDraftsCreated),
		zap.Int("sop_drafts", counts.SopDraftsCreated),
	)

	return nil
}

// fetchStage fetches every active source and persists the normalized
// articles as fetch results
func (o *Orchestrator) fetchStage(ctx context.Context, digest *models.Digest) ([]ai.BatchArticle, error) {
	sources, err := o.sources.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	var persisted []ai.BatchArticle
	for _, result := range o.fetcher.FetchAll(ctx, sources) {
		for _, article := range result.Articles {
			fr := &models.FetchResult{
				ID:        uuid.New(),
				DigestID:  digest.ID,
				SourceID:  result.Source.ID,
				URL:       article.URL,
				Title:     article.Title,
				Content:   article.Content,
				FetchedAt: article.FetchedAt,
			}
			if err := o.fetchResults.Create(ctx, fr); err != nil {
				return nil, fmt.Errorf("failed to persist fetch result: %w", err)
			}
			persisted = append(persisted, ai.BatchArticle{Result: fr, Source: result.Source})
		}
	}

	o.logger.Info("fetch_stage_completed",
		zap.String("digest_id", digest.ID.String()),
		zap.Int("sources", len(sources)),
		zap.Int("articles", len(persisted)),
	)

	return persisted, nil
}

// analyzeStage batches the articles, runs each batch through the provider
// in order and persists the extracted recommendations with a running index
func (o *Orchestrator) analyzeStage(ctx context.Context, digest *models.Digest, articles []ai.BatchArticle) ([]*models.Recommendation, error) {
	fetchResults := make([]*models.FetchResult, len(articles))
	byID := make(map[uuid.UUID]ai.BatchArticle, len(articles))
	for i, a := range articles {
		fetchResults[i] = a.Result
		byID[a.Result.ID] = a
	}

	var recs []*models.Recommendation
	index := 0
	for batchNum, group := range batch.Split(fetchResults, o.opts.BatchSize) {
		batchArticles := make([]ai.BatchArticle, len(group))
		for i, fr := range group {
			a := byID[fr.ID]
			truncated := *fr
			truncated.Content = batch.Truncate(fr.Content, o.opts.MaxArticleChars)
			batchArticles[i] = ai.BatchArticle{Result: &truncated, Source: a.Source}
		}

		parsed, err := o.provider.Analyze(ctx, batchArticles)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", batchNum+1, err)
		}

		for _, p := range parsed {
			rec := &models.Recommendation{
				ID:         uuid.New(),
				DigestID:   digest.ID,
				Index:      index,
				Category:   p.Category,
				Title:      p.Title,
				Summary:    p.Summary,
				Details:    p.Details,
				Impact:     p.Impact,
				Confidence: models.DeriveConfidence(p.Citations),
				Citations:  p.Citations,
			}
			if err := o.recs.Create(ctx, rec); err != nil {
				return nil, fmt.Errorf("failed to persist recommendation: %w", err)
			}
			recs = append(recs, rec)
			index++
		}

		o.logger.Info("batch_analyzed",
			zap.String("digest_id", digest.ID.String()),
			zap.Int("batch", batchNum+1),
			zap.Int("articles", len(group)),
			zap.Int("recommendations", len(parsed)),
		)
	}

	return recs, nil
}

// draftStage derives and persists task and SOP drafts
func (o *Orchestrator) draftStage(ctx context.Context, digest *models.Digest, recs []*models.Recommendation) (int, int, error) {
	taskDrafts := o.generator.TaskDrafts(recs)
	for _, draft := range taskDrafts {
		if err := o.taskDrafts.Create(ctx, draft); err != nil {
			return 0, 0, fmt.Errorf("failed to persist task draft: %w", err)
		}
	}

	sopDrafts := o.generator.SopDrafts(ctx, recs)
	for _, draft := range sopDrafts {
		if err := o.sopDrafts.Create(ctx, draft); err != nil {
			return 0, 0, fmt.Errorf("failed to persist sop draft: %w", err)
		}
	}

	return len(taskDrafts), len(sopDrafts), nil
}

// fail transitions the digest to failed with the captured error. The digest
// row is the durable record of the failure; nothing is rolled back.
func (o *Orchestrator) fail(ctx context.Context, digest *models.Digest, cause error) {
	o.logger.Error("digest_failed",
		zap.String("digest_id", digest.ID.String()),
		zap.String("period", digest.Period),
		zap.Error(cause),
	)

	if err := o.digests.MarkFailed(ctx, digest.ID, cause.Error()); err != nil {
		o.logger.Error("digest_mark_failed_error",
			zap.String("digest_id", digest.ID.String()),
			zap.Error(err),
		)
	}
}
