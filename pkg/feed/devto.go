package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/postscope/postscope/pkg/domain"
)

// DevToSource fetches top articles from the Dev.to API, one request per tag
type DevToSource struct {
	client     *http.Client
	baseURL    string
	tags       []string
	maxResults int
}

// NewDevToSource creates a Dev.to source. Default tags are devops and cloud.
func NewDevToSource(tags []string, maxResults int, timeout time.Duration) *DevToSource {
	if len(tags) == 0 {
		tags = []string{"devops", "cloud"}
	}
	if maxResults <= 0 {
		maxResults = 15
	}
	return &DevToSource{
		client:     &http.Client{Timeout: timeout},
		baseURL:    "https://dev.to/api",
		tags:       tags,
		maxResults: maxResults,
	}
}

// Name returns the source label
func (s *DevToSource) Name() domain.Source { return domain.SourceDevTo }

type devtoArticle struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Description   string `json:"description"`
	PublishedAt   string `json:"published_at"`
	ReactionCount int    `json:"public_reactions_count"`
	CommentsCount int    `json:"comments_count"`
}

// Fetch retrieves top articles for each configured tag published within the
// last daysBack days
func (s *DevToSource) Fetch(ctx context.Context, daysBack int) ([]domain.ContentItem, error) {
	cutoff := time.Now().AddDate(0, 0, -daysBack)

	var items []domain.ContentItem
	for _, tag := range s.tags {
		articles, err := s.fetchTag(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("fetch tag %s: %w", tag, err)
		}

		for _, article := range articles {
			published, err := time.Parse(time.RFC3339, article.PublishedAt)
			if err != nil || published.Before(cutoff) {
				continue
			}

			category := domain.CategoryCloud
			if tag == "devops" {
				category = domain.CategoryDevOps
			}

			items = append(items, domain.ContentItem{
				Title:      cleanText(article.Title, 0),
				URL:        article.URL,
				Source:     domain.SourceDevTo,
				Category:   category,
				Summary:    cleanText(article.Description, 500),
				Engagement: article.ReactionCount + article.CommentsCount,
				Published:  published,
			})
		}
	}

	return items, nil
}

func (s *DevToSource) fetchTag(ctx context.Context, tag string) ([]devtoArticle, error) {
	params := url.Values{}
	params.Set("tag", tag)
	params.Set("per_page", strconv.Itoa(s.maxResults))
	params.Set("top", "7") // top articles from the last week

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/articles?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var articles []devtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return articles, nil
}
