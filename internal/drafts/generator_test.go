package drafts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeSopDocRepo struct {
	docs    []*models.SopDocument
	listErr error
}

func (f *fakeSopDocRepo) Create(ctx context.Context, doc *models.SopDocument) error { return nil }
func (f *fakeSopDocRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SopDocument, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeSopDocRepo) List(ctx context.Context) ([]*models.SopDocument, error) {
	return f.docs, f.listErr
}
func (f *fakeSopDocRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	return nil
}

func rec(category string, impact models.Impact, confidence models.Confidence) *models.Recommendation {
	return &models.Recommendation{
		ID:         uuid.New(),
		DigestID:   uuid.New(),
		Category:   category,
		Title:      "Adjust internal linking strategy",
		Summary:    "Internal linking weight changed after the update.",
		Details:    "Review hub pages and redistribute links.",
		Impact:     impact,
		Confidence: confidence,
		Citations: []models.Citation{
			{SourceID: uuid.New(), SourceName: "Search Central", URL: "https://example.com/a"},
		},
	}
}

func TestTaskDrafts(t *testing.T) {
	t.Parallel()

	g := NewGenerator(nil, zap.NewNop())

	t.Run("priority mapping", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name       string
			impact     models.Impact
			confidence models.Confidence
			want       models.TaskPriority
			wantDue    int
		}{
			{"high verified is urgent", models.ImpactHigh, models.ConfidenceVerified, models.TaskPriorityUrgent, 7},
			{"high emerging is high", models.ImpactHigh, models.ConfidenceEmerging, models.TaskPriorityHigh, 7},
			{"medium is medium", models.ImpactMedium, models.ConfidenceVerified, models.TaskPriorityMedium, 14},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				drafts := g.TaskDrafts([]*models.Recommendation{rec("technical-seo", tt.impact, tt.confidence)})
				if len(drafts) != 1 {
					t.Fatalf("expected 1 draft, got %d", len(drafts))
				}
				if drafts[0].SuggestedPriority != tt.want {
					t.Errorf("priority = %q, want %q", drafts[0].SuggestedPriority, tt.want)
				}
				if drafts[0].SuggestedDueInDays != tt.wantDue {
					t.Errorf("due in days = %d, want %d", drafts[0].SuggestedDueInDays, tt.wantDue)
				}
				if drafts[0].Status != models.DraftStatusPending {
					t.Errorf("status = %q, want pending", drafts[0].Status)
				}
			})
		}
	})

	t.Run("low impact skipped", func(t *testing.T) {
		t.Parallel()

		drafts := g.TaskDrafts([]*models.Recommendation{rec("technical-seo", models.ImpactLow, models.ConfidenceEmerging)})
		if len(drafts) != 0 {
			t.Errorf("expected 0 drafts for low impact, got %d", len(drafts))
		}
	})

	t.Run("documentation skipped", func(t *testing.T) {
		t.Parallel()

		drafts := g.TaskDrafts([]*models.Recommendation{rec(CategoryDocumentation, models.ImpactHigh, models.ConfidenceVerified)})
		if len(drafts) != 0 {
			t.Errorf("expected 0 task drafts for documentation, got %d", len(drafts))
		}
	})

	t.Run("draft links back to recommendation", func(t *testing.T) {
		t.Parallel()

		r := rec("content-strategy", models.ImpactMedium, models.ConfidenceEmerging)
		drafts := g.TaskDrafts([]*models.Recommendation{r})
		if len(drafts) != 1 {
			t.Fatalf("expected 1 draft, got %d", len(drafts))
		}
		if drafts[0].RecommendationID != r.ID {
			t.Error("draft does not reference the recommendation ID")
		}
		if drafts[0].DigestID != r.DigestID {
			t.Error("draft does not carry the digest ID")
		}
		if !strings.Contains(drafts[0].Description, "Search Central") {
			t.Error("description should list cited sources")
		}
	})
}

func TestSopDrafts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("matching document yields update draft", func(t *testing.T) {
		t.Parallel()

		doc := &models.SopDocument{
			ID:      uuid.New(),
			Title:   "Internal linking strategy",
			Content: "How we adjust internal linking after the update: review hub pages.",
		}
		g := NewGenerator(&fakeSopDocRepo{docs: []*models.SopDocument{doc}}, zap.NewNop())

		drafts := g.SopDrafts(ctx, []*models.Recommendation{rec("technical-seo", models.ImpactHigh, models.ConfidenceVerified)})
		if len(drafts) != 1 {
			t.Fatalf("expected 1 draft, got %d", len(drafts))
		}

		d := drafts[0]
		if d.DraftType != models.SopDraftTypeUpdate {
			t.Fatalf("expected update draft, got %q", d.DraftType)
		}
		if d.TargetDocumentID == nil || *d.TargetDocumentID != doc.ID {
			t.Error("update draft should target the matched document")
		}
		if d.BeforeContent == nil || *d.BeforeContent != doc.Content {
			t.Error("update draft should snapshot the current content")
		}
		if !strings.HasPrefix(d.AfterContent, strings.TrimRight(doc.Content, "\n")) {
			t.Error("proposed content should start from the existing document")
		}
		if !strings.Contains(d.AfterContent, "## Revision") {
			t.Error("proposed content should append a revision section")
		}
	})

	t.Run("no match yields new document draft", func(t *testing.T) {
		t.Parallel()

		doc := &models.SopDocument{
			ID:      uuid.New(),
			Title:   "Client onboarding checklist",
			Content: "Kickoff call, contract countersigned, billing configured.",
		}
		g := NewGenerator(&fakeSopDocRepo{docs: []*models.SopDocument{doc}}, zap.NewNop())

		drafts := g.SopDrafts(ctx, []*models.Recommendation{rec("algorithm-update", models.ImpactHigh, models.ConfidenceVerified)})
		if len(drafts) != 1 {
			t.Fatalf("expected 1 draft, got %d", len(drafts))
		}
		if drafts[0].DraftType != models.SopDraftTypeNew {
			t.Fatalf("expected new draft, got %q", drafts[0].DraftType)
		}
		if drafts[0].TargetDocumentID != nil {
			t.Error("new draft should not target a document")
		}
		if drafts[0].BeforeContent != nil {
			t.Error("new draft should have no before content")
		}
		if !strings.Contains(drafts[0].AfterContent, "## References") {
			t.Error("new document body should list references")
		}
	})

	t.Run("non-sop category skipped", func(t *testing.T) {
		t.Parallel()

		g := NewGenerator(&fakeSopDocRepo{}, zap.NewNop())
		drafts := g.SopDrafts(ctx, []*models.Recommendation{rec("tooling", models.ImpactHigh, models.ConfidenceVerified)})
		if len(drafts) != 0 {
			t.Errorf("expected 0 drafts for tooling category, got %d", len(drafts))
		}
	})

	t.Run("document load failure degrades to new drafts", func(t *testing.T) {
		t.Parallel()

		g := NewGenerator(&fakeSopDocRepo{listErr: errors.New("db down")}, zap.NewNop())
		drafts := g.SopDrafts(ctx, []*models.Recommendation{rec("content-strategy", models.ImpactMedium, models.ConfidenceEmerging)})
		if len(drafts) != 1 {
			t.Fatalf("expected 1 draft, got %d", len(drafts))
		}
		if drafts[0].DraftType != models.SopDraftTypeNew {
			t.Errorf("expected new draft on load failure, got %q", drafts[0].DraftType)
		}
	})
}

func TestWordOverlap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s1   string
		s2   string
		want float64
	}{
		{"identical", "adjust internal linking", "adjust internal linking", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"empty left", "", "anything", 0.0},
		{"case insensitive", "Internal Linking", "internal linking", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wordOverlap(tt.s1, tt.s2); got != tt.want {
				t.Errorf("wordOverlap(%q, %q) = %v, want %v", tt.s1, tt.s2, got, tt.want)
			}
		})
	}
}
