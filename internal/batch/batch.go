// Package batch splits fetched articles into provider-sized chunks and
// truncates oversized content. The provider's response size correlates with
// input size, so several small calls are more reliable than one large one.
package batch

import (
	"strings"

	"github.com/agencyops/seo-intel/internal/models"
)

// TranscriptMarker separates an article's description from an appended video
// transcript. Truncation cuts the transcript first and keeps the description
// whole. The fetcher writes this exact line; keep the two in sync.
const TranscriptMarker = "\n\n--- TRANSCRIPT ---\n"

// Truncate returns content unchanged when it fits within maxLength.
// Otherwise, if the content embeds a transcript, the full description is
// preserved and the transcript is cut to whatever budget remains; content
// without a marker is hard-truncated. The result never exceeds maxLength
// and truncating twice with the same limit is a no-op.
func Truncate(content string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if len(content) <= maxLength {
		return content
	}

	markerIdx := strings.Index(content, TranscriptMarker)
	if markerIdx < 0 {
		return content[:maxLength]
	}

	description := content[:markerIdx]
	if len(description) >= maxLength {
		// Description alone blows the budget; the transcript is gone anyway.
		return description[:maxLength]
	}

	budget := maxLength - len(description) - len(TranscriptMarker)
	if budget <= 0 {
		return description
	}

	transcript := content[markerIdx+len(TranscriptMarker):]
	if len(transcript) > budget {
		transcript = transcript[:budget]
	}

	return description + TranscriptMarker + transcript
}

// Split groups articles into consecutive chunks of batchSize, preserving
// order. The last chunk may be smaller.
func Split(articles []*models.FetchResult, batchSize int) [][]*models.FetchResult {
	if batchSize < 1 || len(articles) == 0 {
		return nil
	}

	batches := make([][]*models.FetchResult, 0, (len(articles)+batchSize-1)/batchSize)
	for start := 0; start < len(articles); start += batchSize {
		end := start + batchSize
		if end > len(articles) {
			end = len(articles)
		}
		batches = append(batches, articles[start:end])
	}

	return batches
}
