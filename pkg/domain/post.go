package domain

import "time"

// PostType distinguishes generated post kinds
type PostType string

// post types
const (
	PostTypeNews PostType = "news"
	PostTypeTip  PostType = "tip"
)

// PostStatus represents the lifecycle state of a generated post
type PostStatus string

// post statuses
const (
	PostStatusDraft  PostStatus = "draft"
	PostStatusPosted PostStatus = "posted"
)

// Post represents a generated post draft
type Post struct {
	ID           int64
	Content      string
	Type         PostType
	Status       PostStatus
	SourceItemID int64 // zero for posts without a source item (tips)
	CreatedAt    time.Time
	PostedAt     time.Time // zero until marked posted
	Engagement   int       // engagement recorded after posting, optional
}
