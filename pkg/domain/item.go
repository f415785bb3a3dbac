package domain

import "time"

// Source identifies the feed/platform a content item came from.
// It is an open label: unknown sources get default filter thresholds.
type Source string

// known sources
const (
	SourceArXiv      Source = "ArXiv"
	SourceHackerNews Source = "HackerNews"
	SourceDevTo      Source = "Dev.to"
	SourceReddit     Source = "Reddit"
)

// content categories used for relevance scoring and hashtags
const (
	CategoryAI          = "AI"
	CategoryDevOps      = "DevOps"
	CategoryCloud       = "Cloud"
	CategoryDataScience = "DataScience"
	CategoryTech        = "Tech"
)

// ContentItem represents a normalized content item from any source
type ContentItem struct {
	ID         int64
	Title      string
	URL        string
	Source     Source
	Category   string
	Summary    string
	Engagement int
	Published  time.Time // zero when the source did not provide a date
}

// ScoredItem is a ContentItem with its composite desirability score attached
type ScoredItem struct {
	ContentItem
	Score float64
}
