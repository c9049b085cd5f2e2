package batch

import (
	"strings"
	"testing"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		maxLength int
		want      string
	}{
		{
			name:      "content that fits is unchanged",
			content:   "short article",
			maxLength: 100,
			want:      "short article",
		},
		{
			name:      "no marker hard-truncates",
			content:   strings.Repeat("a", 50),
			maxLength: 10,
			want:      strings.Repeat("a", 10),
		},
		{
			name:      "transcript is cut before the description",
			content:   "description" + TranscriptMarker + strings.Repeat("t", 100),
			maxLength: len("description") + len(TranscriptMarker) + 20,
			want:      "description" + TranscriptMarker + strings.Repeat("t", 20),
		},
		{
			name:      "oversized description drops the transcript entirely",
			content:   strings.Repeat("d", 40) + TranscriptMarker + "transcript",
			maxLength: 25,
			want:      strings.Repeat("d", 25),
		},
		{
			name:      "no room for any transcript keeps just the description",
			content:   "desc" + TranscriptMarker + "transcript",
			maxLength: len("desc") + len(TranscriptMarker),
			want:      "desc",
		},
		{
			name:      "zero budget returns empty",
			content:   "anything",
			maxLength: 0,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Truncate(tt.content, tt.maxLength)
			if got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
			if len(got) > tt.maxLength {
				t.Errorf("Truncate() produced %d chars, limit %d", len(got), tt.maxLength)
			}

			// Idempotence: truncating again must be a no-op
			again := Truncate(got, tt.maxLength)
			if again != got {
				t.Errorf("Truncate() not idempotent: %q != %q", again, got)
			}
		})
	}
}

func TestTruncateNeverExceedsLimit(t *testing.T) {
	t.Parallel()

	contents := []string{
		strings.Repeat("x", 500),
		strings.Repeat("d", 200) + TranscriptMarker + strings.Repeat("t", 300),
		"tiny",
		"",
	}

	for _, content := range contents {
		for _, limit := range []int{1, 10, 100, 250, 1000} {
			got := Truncate(content, limit)
			if len(got) > limit {
				t.Errorf("Truncate(len %d, limit %d) produced %d chars", len(content), limit, len(got))
			}
		}
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	makeArticles := func(n int) []*models.FetchResult {
		articles := make([]*models.FetchResult, n)
		for i := range articles {
			articles[i] = &models.FetchResult{ID: uuid.New()}
		}
		return articles
	}

	tests := []struct {
		name      string
		count     int
		batchSize int
		wantSizes []int
	}{
		{name: "45 articles at size 20", count: 45, batchSize: 20, wantSizes: []int{20, 20, 5}},
		{name: "exact multiple", count: 40, batchSize: 20, wantSizes: []int{20, 20}},
		{name: "fewer than one batch", count: 3, batchSize: 20, wantSizes: []int{3}},
		{name: "empty input", count: 0, batchSize: 20, wantSizes: nil},
		{name: "batch size one", count: 3, batchSize: 1, wantSizes: []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			articles := makeArticles(tt.count)
			batches := Split(articles, tt.batchSize)

			if len(batches) != len(tt.wantSizes) {
				t.Fatalf("Split() produced %d batches, want %d", len(batches), len(tt.wantSizes))
			}
			for i, want := range tt.wantSizes {
				if len(batches[i]) != want {
					t.Errorf("batch %d has %d articles, want %d", i, len(batches[i]), want)
				}
			}

			// Concatenating the batches must reconstruct the input exactly
			var flattened []*models.FetchResult
			for _, b := range batches {
				flattened = append(flattened, b...)
			}
			if len(flattened) != len(articles) {
				t.Fatalf("flattened %d articles, want %d", len(flattened), len(articles))
			}
			for i := range articles {
				if flattened[i].ID != articles[i].ID {
					t.Errorf("article %d out of order after Split", i)
				}
			}
		})
	}
}

func TestSplitInvalidBatchSize(t *testing.T) {
	t.Parallel()

	articles := []*models.FetchResult{{ID: uuid.New()}}
	if got := Split(articles, 0); got != nil {
		t.Errorf("Split with size 0 = %v, want nil", got)
	}
	if got := Split(articles, -1); got != nil {
		t.Errorf("Split with size -1 = %v, want nil", got)
	}
}
