package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"

	"github.com/postscope/postscope/pkg/domain"
)

// ErrPostNotFound is returned when a post does not exist
var ErrPostNotFound = errors.New("post not found")

// CreatePost saves a generated post as a draft and sets its ID
func (db *DB) CreatePost(ctx context.Context, post *Post) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		if post.Status == "" {
			post.Status = string(domain.PostStatusDraft)
		}
		query := `
			INSERT INTO posts (content, post_type, status, source_item_id)
			VALUES (:content, :post_type, :status, :source_item_id)
		`
		result, err := db.conn.NamedExecContext(ctx, query, post)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("insert post: %w", err)}
		}

		id, err := result.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get last insert id: %w", err)}
		}
		post.ID = id
		return nil
	})
}

// GetPost retrieves a post by ID
func (db *DB) GetPost(ctx context.Context, id int64) (*Post, error) {
	var post Post
	err := db.conn.GetContext(ctx, &post, "SELECT * FROM posts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// GetDrafts retrieves all draft posts, most recent first
func (db *DB) GetDrafts(ctx context.Context) ([]Post, error) {
	var posts []Post
	query := `
		SELECT * FROM posts
		WHERE status = 'draft'
		ORDER BY created_at DESC
	`
	if err := db.conn.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("get drafts: %w", err)
	}
	return posts, nil
}

// MarkPostPosted marks a draft as posted, optionally recording engagement.
// Pass a negative engagement to leave it unset.
func (db *DB) MarkPostPosted(ctx context.Context, postID int64, engagement int) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		var eng sql.NullInt64
		if engagement >= 0 {
			eng = sql.NullInt64{Int64: int64(engagement), Valid: true}
		}

		result, err := db.conn.ExecContext(ctx, `
			UPDATE posts
			SET status = 'posted', posted_at = ?, engagement = ?
			WHERE id = ?`, time.Now(), eng, postID)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("mark post posted: %w", err)}
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get rows affected: %w", err)}
		}
		if affected == 0 {
			return &criticalError{err: ErrPostNotFound}
		}
		return nil
	})
}

// GetStats returns aggregate statistics over items and posts
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM content_items", &stats.TotalItems},
		{"SELECT COUNT(*) FROM content_items WHERE used_for_post = 0", &stats.UnusedItems},
		{"SELECT COUNT(*) FROM posts", &stats.TotalPosts},
		{"SELECT COUNT(*) FROM posts WHERE status = 'draft'", &stats.DraftPosts},
		{"SELECT COUNT(*) FROM posts WHERE status = 'posted'", &stats.PostedPosts},
	}

	for _, c := range counts {
		if err := db.conn.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("get stats: %w", err)
		}
	}

	var lastFetch sql.NullTime
	if err := db.conn.GetContext(ctx, &lastFetch, "SELECT MAX(fetched_date) FROM content_items"); err != nil {
		return nil, fmt.Errorf("get last fetch: %w", err)
	}
	if lastFetch.Valid {
		stats.LastFetch = lastFetch.Time
	}

	return stats, nil
}
