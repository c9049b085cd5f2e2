package fetch

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/agencyops/seo-intel/internal/batch"
	"github.com/agencyops/seo-intel/internal/models"
	"github.com/mmcdole/gofeed"
)

// youtubeStrategy fetches a channel's upload feed and pulls the caption
// track for each recent video. The transcript is appended to the video
// description after the transcript marker so truncation can cut it first.
type youtubeStrategy struct {
	client   *http.Client
	parser   *gofeed.Parser
	maxItems int
	timeout  time.Duration
}

func newYouTubeStrategy(client *http.Client, maxItems int, timeout time.Duration) *youtubeStrategy {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &youtubeStrategy{
		client:   client,
		parser:   parser,
		maxItems: maxItems,
		timeout:  timeout,
	}
}

func (s *youtubeStrategy) Fetch(ctx context.Context, source *models.Source) ([]Article, error) {
	feed, err := s.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse channel feed: %w", err)
	}

	count := len(feed.Items)
	if count > s.maxItems {
		count = s.maxItems
	}

	now := time.Now()
	articles := make([]Article, 0, count)
	for _, item := range feed.Items[:count] {
		description := item.Description
		if ext, ok := item.Extensions["media"]; ok {
			// YouTube feeds put the description under media:group
			if groups, ok := ext["group"]; ok && len(groups) > 0 {
				if descs, ok := groups[0].Children["description"]; ok && len(descs) > 0 {
					description = descs[0].Value
				}
			}
		}

		content := description
		// A missing transcript is not an error; the description still
		// carries signal on its own.
		if transcript, err := s.fetchTranscript(ctx, item.Link); err == nil && transcript != "" {
			content = description + batch.TranscriptMarker + transcript
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

// captionTrack is one entry of the player response's caption track list
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

// fetchTranscript scrapes the watch page for its caption track list and
// downloads the first English (or first available) track.
func (s *youtubeStrategy) fetchTranscript(ctx context.Context, videoURL string) (string, error) {
	page, err := s.get(ctx, videoURL)
	if err != nil {
		return "", err
	}

	tracks, err := extractCaptionTracks(page)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", fmt.Errorf("video has no caption tracks")
	}

	track := tracks[0]
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			track = t
			break
		}
	}

	captionXML, err := s.get(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch caption track: %w", err)
	}

	return parseTimedText(captionXML)
}

func (s *youtubeStrategy) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

// extractCaptionTracks pulls the captionTracks array out of the player
// response JSON embedded in the watch page scripts.
func extractCaptionTracks(page []byte) ([]captionTrack, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse watch page: %w", err)
	}

	const needle = `"captionTracks":`

	var tracks []captionTrack
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()
		start := strings.Index(text, needle)
		if start < 0 {
			return true
		}

		arrayJSON, ok := sliceJSONArray(text[start+len(needle):])
		if !ok {
			return true
		}

		if err := json.Unmarshal([]byte(arrayJSON), &tracks); err != nil {
			tracks = nil
			return true
		}
		return false
	})

	return tracks, nil
}

// sliceJSONArray returns the balanced JSON array at the start of s
func sliceJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// timedText is the caption XML served by the timedtext endpoint
type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

func parseTimedText(captionXML []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(captionXML, &tt); err != nil {
		return "", fmt.Errorf("failed to parse caption xml: %w", err)
	}

	lines := make([]string, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Value))
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, " "), nil
}
