package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// ErrItemNotFound is returned when a content item does not exist
var ErrItemNotFound = errors.New("item not found")

// CreateItem inserts a content item, deduplicating by URL. Returns true when
// the item was actually inserted, false for a duplicate.
func (db *DB) CreateItem(ctx context.Context, item *Item) (bool, error) {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	inserted := false
	err := retrier.Do(ctx, func() error {
		query := `
			INSERT INTO content_items (title, url, source, category, summary, engagement_score, published_date)
			VALUES (:title, :url, :source, :category, :summary, :engagement_score, :published_date)
			ON CONFLICT(url) DO NOTHING
		`
		result, err := db.conn.NamedExecContext(ctx, query, item)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("insert item: %w", err)}
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get rows affected: %w", err)}
		}

		if rowsAffected > 0 {
			id, err := result.LastInsertId()
			if err != nil {
				return &criticalError{err: fmt.Errorf("get last insert id: %w", err)}
			}
			item.ID = id
			inserted = true
		}
		return nil
	})
	if err != nil {
		var ce *criticalError
		if errors.As(err, &ce) {
			return false, ce.err
		}
		return false, err
	}
	return inserted, nil
}

// GetItem retrieves a content item by ID
func (db *DB) GetItem(ctx context.Context, id int64) (*Item, error) {
	var item Item
	query := `SELECT * FROM content_items WHERE id = ?`
	err := db.conn.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// GetRecentItems retrieves unused items published within the last days,
// optionally filtered by category, ordered by engagement then recency
func (db *DB) GetRecentItems(ctx context.Context, days int, category string) ([]Item, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	query := `
		SELECT * FROM content_items
		WHERE published_date >= ?
		AND used_for_post = 0
	`
	args := []interface{}{cutoff}

	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	query += " ORDER BY engagement_score DESC, published_date DESC"

	var items []Item
	if err := db.conn.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("get recent items: %w", err)
	}
	return items, nil
}

// MarkItemUsed marks a content item as consumed by a generated post
func (db *DB) MarkItemUsed(ctx context.Context, itemID int64) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		result, err := db.conn.ExecContext(ctx,
			"UPDATE content_items SET used_for_post = 1 WHERE id = ?", itemID)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("mark item used: %w", err)}
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get rows affected: %w", err)}
		}
		if affected == 0 {
			return &criticalError{err: ErrItemNotFound}
		}
		return nil
	})
}

// CountItems returns the total number of stored content items
func (db *DB) CountItems(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM content_items"); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

// DeleteOldItems removes unused items fetched earlier than the given cutoff,
// returning the number of deleted rows
func (db *DB) DeleteOldItems(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := db.conn.ExecContext(ctx,
		"DELETE FROM content_items WHERE fetched_date < ? AND used_for_post = 0", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old items: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return affected, nil
}
