package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/postscope/postscope/pkg/domain"
)

// ArticleExtractor pulls readable text from a story URL, used to give HN
// items a real summary instead of the bare title
type ArticleExtractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// HackerNewsSource fetches top stories from the Hacker News Firebase API
type HackerNewsSource struct {
	client     *http.Client
	baseURL    string
	maxResults int
	extractor  ArticleExtractor
}

// HackerNewsOption configures optional source behavior
type HackerNewsOption func(*HackerNewsSource)

// WithArticleExtraction enables summary enrichment from the linked article
func WithArticleExtraction(extractor ArticleExtractor) HackerNewsOption {
	return func(s *HackerNewsSource) { s.extractor = extractor }
}

// NewHackerNewsSource creates a Hacker News source
func NewHackerNewsSource(maxResults int, timeout time.Duration, opts ...HackerNewsOption) *HackerNewsSource {
	if maxResults <= 0 {
		maxResults = 30
	}
	s := &HackerNewsSource{
		client:     &http.Client{Timeout: timeout},
		baseURL:    "https://hacker-news.firebaseio.com/v0",
		maxResults: maxResults,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source label
func (s *HackerNewsSource) Name() domain.Source { return domain.SourceHackerNews }

type hnStory struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Time        int64  `json:"time"`
}

// Fetch retrieves top stories published within the last daysBack days
func (s *HackerNewsSource) Fetch(ctx context.Context, daysBack int) ([]domain.ContentItem, error) {
	var ids []int64
	if err := s.getJSON(ctx, s.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("get top stories: %w", err)
	}
	if len(ids) > s.maxResults {
		ids = ids[:s.maxResults]
	}

	cutoff := time.Now().AddDate(0, 0, -daysBack)

	items := make([]domain.ContentItem, 0, len(ids))
	for _, id := range ids {
		var story hnStory
		if err := s.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", s.baseURL, id), &story); err != nil {
			return nil, fmt.Errorf("get story %d: %w", id, err)
		}
		if story.Type != "story" || story.Title == "" {
			continue
		}

		published := time.Unix(story.Time, 0)
		if published.Before(cutoff) {
			continue
		}

		storyURL := story.URL
		if storyURL == "" {
			// Ask HN and similar text posts link back to the discussion
			storyURL = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
		}

		title := cleanText(story.Title, 0)
		items = append(items, domain.ContentItem{
			Title:      title,
			URL:        storyURL,
			Source:     domain.SourceHackerNews,
			Category:   categorizeTitle(title),
			Summary:    s.summarize(ctx, title, storyURL),
			Engagement: story.Score + story.Descendants,
			Published:  published,
		})
	}

	return items, nil
}

// summarize returns the extracted article text when extraction is enabled
// and succeeds, the title otherwise. HN stories have no body text of their
// own.
func (s *HackerNewsSource) summarize(ctx context.Context, title, storyURL string) string {
	if s.extractor == nil {
		return title
	}
	text, err := s.extractor.Extract(ctx, storyURL)
	if err != nil {
		lgr.Printf("[DEBUG] article extraction failed for %s: %v", storyURL, err)
		return title
	}
	return cleanText(text, 700)
}

func (s *HackerNewsSource) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
