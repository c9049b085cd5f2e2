package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/mmcdole/gofeed"
)

// rssStrategy fetches RSS/Atom feeds
type rssStrategy struct {
	parser   *gofeed.Parser
	maxItems int
}

func newRSSStrategy(client *http.Client, maxItems int) *rssStrategy {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &rssStrategy{parser: parser, maxItems: maxItems}
}

func (s *rssStrategy) Fetch(ctx context.Context, source *models.Source) ([]Article, error) {
	feed, err := s.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	count := len(feed.Items)
	if count > s.maxItems {
		count = s.maxItems
	}

	now := time.Now()
	articles := make([]Article, 0, count)
	for _, item := range feed.Items[:count] {
		content := item.Content
		if strings.TrimSpace(content) == "" {
			content = item.Description
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		articles = append(articles, Article{
			URL:       item.Link,
			Title:     item.Title,
			Content:   content,
			FetchedAt: now,
		})
	}

	return articles, nil
}
