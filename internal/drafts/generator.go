// Package drafts derives reviewable artifacts from recommendations: task
// drafts (candidate work items) and SOP drafts (candidate procedure
// changes). Generation is total over its inputs; a recommendation that maps
// to nothing simply yields no draft, and generation never fails a digest.
package drafts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agencyops/seo-intel/internal/database"
	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// sopMatchThreshold is the minimum word-overlap similarity between a
	// recommendation and an existing SOP document to propose an update
	// rather than a new document
	sopMatchThreshold = 0.15

	// CategoryDocumentation marks recommendations whose scope is purely
	// documentation; they produce SOP drafts, never task drafts
	CategoryDocumentation = "documentation"
)

// sopCategories are the recommendation categories that imply a process
// change worth reflecting in the standard operating procedures
var sopCategories = map[string]bool{
	"content-strategy":    true,
	"technical-seo":       true,
	"algorithm-update":    true,
	CategoryDocumentation: true,
}

// Generator derives task and SOP drafts from a digest's recommendations
type Generator struct {
	sopDocs database.SopDocumentRepositoryInterface
	logger  *zap.Logger
}

// NewGenerator creates a new draft generator
func NewGenerator(sopDocs database.SopDocumentRepositoryInterface, logger *zap.Logger) *Generator {
	return &Generator{sopDocs: sopDocs, logger: logger}
}

// TaskDrafts derives one task draft per actionable recommendation. Low
// impact findings and pure documentation work do not become tasks.
func (g *Generator) TaskDrafts(recs []*models.Recommendation) []*models.TaskDraft {
	drafts := make([]*models.TaskDraft, 0, len(recs))
	for _, rec := range recs {
		if rec.Impact == models.ImpactLow {
			continue
		}
		if rec.Category == CategoryDocumentation {
			continue
		}

		drafts = append(drafts, &models.TaskDraft{
			ID:                 uuid.New(),
			DigestID:           rec.DigestID,
			RecommendationID:   rec.ID,
			Title:              rec.Title,
			Description:        taskDescription(rec),
			SuggestedPriority:  suggestPriority(rec),
			SuggestedDueInDays: suggestDueInDays(rec.Impact),
			Status:             models.DraftStatusPending,
		})
	}
	return drafts
}

// suggestPriority maps impact to the task tracker's priority scale. A
// verified high-impact finding is urgent; a single-source one is merely high.
func suggestPriority(rec *models.Recommendation) models.TaskPriority {
	switch rec.Impact {
	case models.ImpactHigh:
		if rec.Confidence == models.ConfidenceVerified {
			return models.TaskPriorityUrgent
		}
		return models.TaskPriorityHigh
	case models.ImpactMedium:
		return models.TaskPriorityMedium
	default:
		return models.TaskPriorityLow
	}
}

func suggestDueInDays(impact models.Impact) int {
	switch impact {
	case models.ImpactHigh:
		return 7
	case models.ImpactMedium:
		return 14
	default:
		return 30
	}
}

func taskDescription(rec *models.Recommendation) string {
	var b strings.Builder
	b.WriteString(rec.Summary)
	if rec.Details != "" {
		b.WriteString("\n\n")
		b.WriteString(rec.Details)
	}
	if len(rec.Citations) > 0 {
		b.WriteString("\n\nSources:\n")
		for _, c := range rec.Citations {
			fmt.Fprintf(&b, "- %s (%s)\n", c.SourceName, c.URL)
		}
	}
	return b.String()
}

// SopDrafts derives procedure-change drafts for recommendations implying a
// process change. The recommendation is matched against existing SOP
// documents by word overlap; a good match becomes an update draft against
// that document, otherwise a new-document draft is proposed. Loading
// failures degrade to new-document drafts rather than failing the digest.
func (g *Generator) SopDrafts(ctx context.Context, recs []*models.Recommendation) []*models.SopDraft {
	var docs []*models.SopDocument
	if g.sopDocs != nil {
		loaded, err := g.sopDocs.List(ctx)
		if err != nil {
			g.logger.Warn("sop_documents_load_failed", zap.Error(err))
		} else {
			docs = loaded
		}
	}

	drafts := make([]*models.SopDraft, 0, len(recs))
	for _, rec := range recs {
		if !sopCategories[rec.Category] {
			continue
		}

		if doc, score := bestMatch(rec, docs); doc != nil && score >= sopMatchThreshold {
			before := doc.Content
			drafts = append(drafts, &models.SopDraft{
				ID:               uuid.New(),
				DigestID:         rec.DigestID,
				RecommendationID: rec.ID,
				DraftType:        models.SopDraftTypeUpdate,
				TargetDocumentID: &doc.ID,
				Title:            fmt.Sprintf("Update: %s", doc.Title),
				Description:      rec.Summary,
				BeforeContent:    &before,
				AfterContent:     appendRevision(doc.Content, rec),
				Status:           models.DraftStatusPending,
			})
			continue
		}

		drafts = append(drafts, &models.SopDraft{
			ID:               uuid.New(),
			DigestID:         rec.DigestID,
			RecommendationID: rec.ID,
			DraftType:        models.SopDraftTypeNew,
			Title:            rec.Title,
			Description:      rec.Summary,
			AfterContent:     newDocumentBody(rec),
			Status:           models.DraftStatusPending,
		})
	}

	return drafts
}

// bestMatch finds the SOP document most similar to the recommendation
func bestMatch(rec *models.Recommendation, docs []*models.SopDocument) (*models.SopDocument, float64) {
	recText := rec.Title + " " + rec.Summary

	var best *models.SopDocument
	bestScore := 0.0
	for _, doc := range docs {
		score := wordOverlap(recText, doc.Title+" "+doc.Content)
		if score > bestScore {
			best = doc
			bestScore = score
		}
	}
	return best, bestScore
}

// wordOverlap is the Jaccard similarity of the two texts' word sets,
// case-insensitive
func wordOverlap(s1, s2 string) float64 {
	words1 := strings.Fields(strings.ToLower(s1))
	words2 := strings.Fields(strings.ToLower(s2))

	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}

	set1 := make(map[string]bool, len(words1))
	for _, word := range words1 {
		set1[word] = true
	}
	set2 := make(map[string]bool, len(words2))
	for _, word := range words2 {
		set2[word] = true
	}

	common := 0
	for word := range set1 {
		if set2[word] {
			common++
		}
	}

	union := len(set1) + len(set2) - common
	if union == 0 {
		return 0.0
	}

	return float64(common) / float64(union)
}

// appendRevision proposes the updated document content: the existing text
// with a dated revision section derived from the recommendation. The
// reviewer edits the proposal before applying if they want a tighter merge.
func appendRevision(content string, rec *models.Recommendation) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(content, "\n"))
	fmt.Fprintf(&b, "\n\n## Revision (%s)\n\n", time.Now().Format("2006-01-02"))
	b.WriteString(rec.Summary)
	if rec.Details != "" {
		b.WriteString("\n\n")
		b.WriteString(rec.Details)
	}
	b.WriteString("\n")
	return b.String()
}

func newDocumentBody(rec *models.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rec.Title)
	fmt.Fprintf(&b, "## Why\n\n%s\n\n", rec.Summary)
	if rec.Details != "" {
		fmt.Fprintf(&b, "## Procedure\n\n%s\n\n", rec.Details)
	}
	if len(rec.Citations) > 0 {
		b.WriteString("## References\n\n")
		for _, c := range rec.Citations {
			fmt.Fprintf(&b, "- %s: %s\n", c.SourceName, c.URL)
		}
	}
	return b.String()
}
