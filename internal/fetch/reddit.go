package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
)

// redditStrategy fetches subreddit listings through the public JSON API
type redditStrategy struct {
	client   *http.Client
	maxItems int
}

func newRedditStrategy(client *http.Client, maxItems int) *redditStrategy {
	return &redditStrategy{client: client, maxItems: maxItems}
}

// redditListing mirrors the fields we need from a listing response
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string  `json:"title"`
				SelfText  string  `json:"selftext"`
				URL       string  `json:"url"`
				Permalink string  `json:"permalink"`
				Stickied  bool    `json:"stickied"`
				CreatedAt float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *redditStrategy) Fetch(ctx context.Context, source *models.Source) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL(source.URL, s.maxItems), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	now := time.Now()
	articles := make([]Article, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied {
			continue
		}

		content := post.SelfText
		if strings.TrimSpace(content) == "" {
			// Link posts carry no body; the outbound URL is still a signal
			content = post.URL
		}

		url := post.URL
		if post.Permalink != "" {
			url = "https://www.reddit.com" + post.Permalink
		}

		articles = append(articles, Article{
			URL:       url,
			Title:     post.Title,
			Content:   content,
			FetchedAt: now,
		})

		if len(articles) >= s.maxItems {
			break
		}
	}

	return articles, nil
}

// listingURL normalizes a configured subreddit URL into its /new.json
// listing endpoint. URLs already pointing at a .json endpoint pass through.
func listingURL(sourceURL string, limit int) string {
	if strings.Contains(sourceURL, ".json") {
		return sourceURL
	}
	return fmt.Sprintf("%s/new.json?limit=%d", strings.TrimRight(sourceURL, "/"), limit)
}
