package db

import (
	"database/sql"
	"time"

	"github.com/postscope/postscope/pkg/domain"
)

// Item represents a stored content item
type Item struct {
	ID         int64          `db:"id"`
	Title      string         `db:"title"`
	URL        string         `db:"url"`
	Source     string         `db:"source"`
	Category   sql.NullString `db:"category"`
	Summary    sql.NullString `db:"summary"`
	Engagement int            `db:"engagement_score"`
	Published  sql.NullTime   `db:"published_date"`
	Fetched    time.Time      `db:"fetched_date"`
	Used       bool           `db:"used_for_post"`
}

// Post represents a stored generated post
type Post struct {
	ID           int64          `db:"id"`
	Content      string         `db:"content"`
	Type         string         `db:"post_type"`
	Status       string         `db:"status"`
	SourceItemID sql.NullInt64  `db:"source_item_id"`
	CreatedAt    time.Time      `db:"created_at"`
	PostedAt     sql.NullTime   `db:"posted_at"`
	Engagement   sql.NullInt64  `db:"engagement"`
}

// Stats holds aggregate counts over items and posts
type Stats struct {
	TotalItems  int64
	UnusedItems int64
	TotalPosts  int64
	DraftPosts  int64
	PostedPosts int64
	LastFetch   time.Time // zero when nothing fetched yet
}

// ToDomain converts a stored item to its domain representation
func (i *Item) ToDomain() domain.ContentItem {
	item := domain.ContentItem{
		ID:         i.ID,
		Title:      i.Title,
		URL:        i.URL,
		Source:     domain.Source(i.Source),
		Engagement: i.Engagement,
	}
	if i.Category.Valid {
		item.Category = i.Category.String
	}
	if i.Summary.Valid {
		item.Summary = i.Summary.String
	}
	if i.Published.Valid {
		item.Published = i.Published.Time
	}
	return item
}

// FromDomain converts a domain content item to its stored representation
func FromDomain(item domain.ContentItem) Item {
	rec := Item{
		ID:         item.ID,
		Title:      item.Title,
		URL:        item.URL,
		Source:     string(item.Source),
		Engagement: item.Engagement,
	}
	if item.Category != "" {
		rec.Category = sql.NullString{String: item.Category, Valid: true}
	}
	if item.Summary != "" {
		rec.Summary = sql.NullString{String: item.Summary, Valid: true}
	}
	if !item.Published.IsZero() {
		rec.Published = sql.NullTime{Time: item.Published, Valid: true}
	}
	return rec
}

// ToDomain converts a stored post to its domain representation
func (p *Post) ToDomain() domain.Post {
	post := domain.Post{
		ID:        p.ID,
		Content:   p.Content,
		Type:      domain.PostType(p.Type),
		Status:    domain.PostStatus(p.Status),
		CreatedAt: p.CreatedAt,
	}
	if p.SourceItemID.Valid {
		post.SourceItemID = p.SourceItemID.Int64
	}
	if p.PostedAt.Valid {
		post.PostedAt = p.PostedAt.Time
	}
	if p.Engagement.Valid {
		post.Engagement = int(p.Engagement.Int64)
	}
	return post
}
