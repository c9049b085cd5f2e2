package ai

import (
	"encoding/json"
	"strings"

	"github.com/agencyops/seo-intel/internal/models"
	"go.uber.org/zap"
)

// maxExcerptLength caps stored citation excerpts
const maxExcerptLength = 500

// rawRecommendation is the wire shape of one recommendation in the model
// response. Items are decoded individually so one malformed item does not
// poison the rest of the response.
type rawRecommendation struct {
	Category  string        `json:"category"`
	Title     string        `json:"title"`
	Summary   string        `json:"summary"`
	Details   string        `json:"details"`
	Impact    string        `json:"impact"`
	Citations []rawCitation `json:"citations"`
}

// rawCitation references an article by its 1-based position in the batch
type rawCitation struct {
	Article int    `json:"article"`
	Excerpt string `json:"excerpt"`
}

type responseEnvelope struct {
	Recommendations []json.RawMessage `json:"recommendations"`
}

// ParseRecommendations extracts typed recommendations from the model's
// text output. The contract is lenient on the way in and strict on the way
// out: JSON may be wrapped in prose or a code fence, unknown fields are
// ignored, malformed items are skipped and logged; but every surviving
// recommendation has a title, a summary and at least one citation resolved
// to a fetch result in the current batch. Citations pointing outside the
// batch are dropped, never fabricated. Confidence is recomputed from the
// distinct cited sources, regardless of anything the model claims.
func ParseRecommendations(raw string, articles []BatchArticle, logger *zap.Logger) []ParsedRecommendation {
	payload := extractJSONObject(raw)
	if payload == "" {
		logNonfatal(logger, "llm_response_not_json", zap.Int("response_length", len(raw)))
		return nil
	}

	var envelope responseEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		logNonfatal(logger, "llm_response_envelope_malformed", zap.Error(err))
		return nil
	}

	recs := make([]ParsedRecommendation, 0, len(envelope.Recommendations))
	for i, itemJSON := range envelope.Recommendations {
		var item rawRecommendation
		if err := json.Unmarshal(itemJSON, &item); err != nil {
			logNonfatal(logger, "llm_recommendation_malformed",
				zap.Int("item", i),
				zap.Error(err),
			)
			continue
		}

		rec, ok := buildRecommendation(item, articles)
		if !ok {
			logNonfatal(logger, "llm_recommendation_discarded",
				zap.Int("item", i),
				zap.String("title", item.Title),
			)
			continue
		}

		recs = append(recs, rec)
	}

	return recs
}

func buildRecommendation(item rawRecommendation, articles []BatchArticle) (ParsedRecommendation, bool) {
	if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Summary) == "" {
		return ParsedRecommendation{}, false
	}

	citations := resolveCitations(item.Citations, articles)
	if len(citations) == 0 {
		return ParsedRecommendation{}, false
	}

	return ParsedRecommendation{
		Category:  normalizeCategory(item.Category),
		Title:     strings.TrimSpace(item.Title),
		Summary:   strings.TrimSpace(item.Summary),
		Details:   strings.TrimSpace(item.Details),
		Impact:    normalizeImpact(item.Impact),
		Citations: citations,
	}, true
}

// resolveCitations maps 1-based article numbers to the batch's fetch
// results. Out-of-range references are dropped.
func resolveCitations(raw []rawCitation, articles []BatchArticle) []models.Citation {
	citations := make([]models.Citation, 0, len(raw))
	for _, c := range raw {
		idx := c.Article - 1
		if idx < 0 || idx >= len(articles) {
			continue
		}

		article := articles[idx]
		excerpt := strings.TrimSpace(c.Excerpt)
		if len(excerpt) > maxExcerptLength {
			excerpt = excerpt[:maxExcerptLength]
		}

		citations = append(citations, models.Citation{
			FetchResultID: article.Result.ID,
			SourceID:      article.Source.ID,
			SourceName:    article.Source.Name,
			URL:           article.Result.URL,
			Excerpt:       excerpt,
		})
	}
	return citations
}

func normalizeImpact(impact string) models.Impact {
	switch models.Impact(strings.ToLower(strings.TrimSpace(impact))) {
	case models.ImpactHigh:
		return models.ImpactHigh
	case models.ImpactLow:
		return models.ImpactLow
	default:
		return models.ImpactMedium
	}
}

func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return "general"
	}
	return category
}

// extractJSONObject returns the outermost JSON object in s, tolerating
// surrounding prose or markdown fences
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func logNonfatal(logger *zap.Logger, msg string, fields ...zap.Field) {
	if logger != nil {
		logger.Warn(msg, fields...)
	}
}
