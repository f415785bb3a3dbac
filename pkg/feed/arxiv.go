package feed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/postscope/postscope/pkg/domain"
)

// DefaultArxivQuery selects recent AI/ML papers
const DefaultArxivQuery = `AI OR ML OR "machine learning" OR "deep learning" OR "neural network" OR LLM OR "large language model" OR GPT OR "computer vision" OR NLP`

// research papers carry no vote counts, give them a solid baseline
const arxivBaseEngagement = 75

// ArxivSource fetches recent research papers from the arXiv Atom API
type ArxivSource struct {
	parser     *gofeed.Parser
	baseURL    string
	query      string
	maxResults int
	timeout    time.Duration
}

// NewArxivSource creates an arXiv source. Empty query falls back to the
// default AI/ML search.
func NewArxivSource(query string, maxResults int, timeout time.Duration) *ArxivSource {
	if query == "" {
		query = DefaultArxivQuery
	}
	if maxResults <= 0 {
		maxResults = 30
	}
	return &ArxivSource{
		parser:     gofeed.NewParser(),
		baseURL:    "https://export.arxiv.org/api/query",
		query:      query,
		maxResults: maxResults,
		timeout:    timeout,
	}
}

// Name returns the source label
func (s *ArxivSource) Name() domain.Source { return domain.SourceArXiv }

// Fetch retrieves papers submitted within the last daysBack days
func (s *ArxivSource) Fetch(ctx context.Context, daysBack int) ([]domain.ContentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("search_query", "all:"+s.query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(s.maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	feed, err := s.parser.ParseURLWithContext(s.baseURL+"?"+params.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse arxiv feed: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -daysBack)

	items := make([]domain.ContentItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		var published time.Time
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}
		if published.Before(cutoff) {
			continue
		}

		title := cleanText(entry.Title, 0)
		summary := cleanText(entry.Description, 700)

		items = append(items, domain.ContentItem{
			Title:      title,
			URL:        entry.Link,
			Source:     domain.SourceArXiv,
			Category:   categorizePaper(title, summary),
			Summary:    summary,
			Engagement: arxivBaseEngagement,
			Published:  published,
		})
	}

	return items, nil
}
