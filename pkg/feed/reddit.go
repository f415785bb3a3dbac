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

// RedditSource fetches top posts from subreddits via the public JSON API
type RedditSource struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	subreddits []string
	maxResults int
}

// NewRedditSource creates a Reddit source. Default subreddits are
// MachineLearning and devops.
func NewRedditSource(subreddits []string, maxResults int, timeout time.Duration) *RedditSource {
	if len(subreddits) == 0 {
		subreddits = []string{"MachineLearning", "devops"}
	}
	if maxResults <= 0 {
		maxResults = 20
	}
	return &RedditSource{
		client:     &http.Client{Timeout: timeout},
		baseURL:    "https://www.reddit.com",
		userAgent:  "postscope/1.0 (content aggregator)",
		subreddits: subreddits,
		maxResults: maxResults,
	}
}

// Name returns the source label
func (s *RedditSource) Name() domain.Source { return domain.SourceReddit }

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	SelfText    string  `json:"selftext"`
	IsSelf      bool    `json:"is_self"`
	Stickied    bool    `json:"stickied"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

// Fetch retrieves top posts of the week from each configured subreddit,
// skipping stickied posts and anything older than daysBack days
func (s *RedditSource) Fetch(ctx context.Context, daysBack int) ([]domain.ContentItem, error) {
	cutoff := time.Now().AddDate(0, 0, -daysBack)

	var items []domain.ContentItem
	for _, subreddit := range s.subreddits {
		posts, err := s.fetchSubreddit(ctx, subreddit)
		if err != nil {
			return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
		}

		for _, post := range posts {
			published := time.Unix(int64(post.CreatedUTC), 0)
			if post.Stickied || published.Before(cutoff) {
				continue
			}

			postURL := post.URL
			if post.IsSelf {
				postURL = "https://reddit.com" + post.Permalink
			}

			summary := cleanText(post.SelfText, 500)
			title := cleanText(post.Title, 0)
			if summary == "" {
				summary = title
			}

			category := domain.CategoryDevOps
			if subreddit == "MachineLearning" {
				category = domain.CategoryAI
			}

			items = append(items, domain.ContentItem{
				Title:      title,
				URL:        postURL,
				Source:     domain.SourceReddit,
				Category:   category,
				Summary:    summary,
				Engagement: post.Score + post.NumComments,
				Published:  published,
			})
		}
	}

	return items, nil
}

func (s *RedditSource) fetchSubreddit(ctx context.Context, subreddit string) ([]redditPost, error) {
	params := url.Values{}
	params.Set("t", "week")
	params.Set("limit", strconv.Itoa(s.maxResults))

	reqURL := fmt.Sprintf("%s/r/%s/top.json?%s", s.baseURL, subreddit, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent) // reddit rejects default Go user agent

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}
