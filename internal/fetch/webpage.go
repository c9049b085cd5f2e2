package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
	readability "github.com/go-shiori/go-readability"
)

// webpageStrategy scrapes a single page and extracts its readable text.
// A webpage source yields at most one article per run.
type webpageStrategy struct {
	timeout time.Duration
}

func newWebpageStrategy(timeout time.Duration) *webpageStrategy {
	return &webpageStrategy{timeout: timeout}
}

func (s *webpageStrategy) Fetch(ctx context.Context, source *models.Source) ([]Article, error) {
	page, err := readability.FromURL(source.URL, s.timeout)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}

	content := page.TextContent
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("page %s has no extractable content", source.URL)
	}

	title := page.Title
	if title == "" {
		title = source.Name
	}

	return []Article{{
		URL:       source.URL,
		Title:     title,
		Content:   content,
		FetchedAt: time.Now(),
	}}, nil
}
