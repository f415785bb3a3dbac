package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/postscope/postscope/pkg/domain"
	"github.com/postscope/postscope/pkg/llm"
	"github.com/postscope/postscope/pkg/post"
)

// statusHandler returns server status with aggregate stats
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats(r.Context())
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
		"stats": map[string]interface{}{
			"total_items":  stats.TotalItems,
			"unused_items": stats.UnusedItems,
			"total_posts":  stats.TotalPosts,
			"draft_posts":  stats.DraftPosts,
			"posted_posts": stats.PostedPosts,
			"last_fetch":   stats.LastFetch,
		},
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// previewItem is the API shape of a ranked content item
type previewItem struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Source     string    `json:"source"`
	Category   string    `json:"category"`
	Score      float64   `json:"score"`
	Engagement int       `json:"engagement"`
	Published  time.Time `json:"published"`
}

// previewHandler returns the top-ranked eligible items without generating
// anything. Query params: n (default 10), days (default 7), category.
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	n := intQueryParam(r, "n", 10)
	days := intQueryParam(r, "days", 7)
	category := r.URL.Query().Get("category")

	if n <= 0 || days <= 0 {
		RenderError(w, r, fmt.Errorf("n and days must be positive"), http.StatusBadRequest)
		return
	}

	ranked, err := s.generator.Preview(r.Context(), days, category, n)
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	items := make([]previewItem, 0, len(ranked))
	for _, item := range ranked {
		items = append(items, previewItem{
			ID:         item.ID,
			Title:      item.Title,
			URL:        item.URL,
			Source:     string(item.Source),
			Category:   item.Category,
			Score:      item.Score,
			Engagement: item.Engagement,
			Published:  item.Published,
		})
	}
	RenderJSON(w, r, http.StatusOK, map[string]interface{}{"items": items})
}

// draftPost is the API shape of a stored draft
type draftPost struct {
	ID           int64     `json:"id"`
	Content      string    `json:"content"`
	Type         string    `json:"type"`
	SourceItemID int64     `json:"source_item_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// draftsHandler lists pending drafts, newest first
func (s *Server) draftsHandler(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.db.GetDrafts(r.Context())
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	out := make([]draftPost, 0, len(drafts))
	for _, d := range drafts {
		dp := draftPost{
			ID:        d.ID,
			Content:   d.Content,
			Type:      d.Type,
			CreatedAt: d.CreatedAt,
		}
		if d.SourceItemID.Valid {
			dp.SourceItemID = d.SourceItemID.Int64
		}
		out = append(out, dp)
	}
	RenderJSON(w, r, http.StatusOK, map[string]interface{}{"drafts": out})
}

// generateRequest is the POST /generate body
type generateRequest struct {
	Type     string `json:"type"` // news or tip
	Category string `json:"category,omitempty"`
	Days     int    `json:"days,omitempty"`

	// tip fields
	Topic string `json:"topic,omitempty"`
	Tip   string `json:"tip,omitempty"`
}

// generateHandler creates a new draft on demand
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RenderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	if req.Days == 0 {
		req.Days = 7
	}

	switch domain.PostType(req.Type) {
	case domain.PostTypeNews:
		result, err := s.generator.GenerateNewsPost(r.Context(), req.Days, req.Category)
		if err != nil {
			RenderError(w, r, err, http.StatusInternalServerError)
			return
		}
		if result == nil {
			RenderError(w, r, fmt.Errorf("no eligible content available"), http.StatusNotFound)
			return
		}
		RenderJSON(w, r, http.StatusCreated, resultResponse(result))

	case domain.PostTypeTip:
		if req.Topic == "" || req.Tip == "" {
			RenderError(w, r, fmt.Errorf("tip posts require topic and tip fields"), http.StatusBadRequest)
			return
		}
		result, err := s.generator.GenerateTipPost(r.Context(), llm.Tip{
			Topic:    req.Topic,
			Category: req.Category,
			Content:  req.Tip,
		})
		if err != nil {
			RenderError(w, r, err, http.StatusInternalServerError)
			return
		}
		RenderJSON(w, r, http.StatusCreated, resultResponse(result))

	default:
		RenderError(w, r, fmt.Errorf("unknown post type %q", req.Type), http.StatusBadRequest)
	}
}

func resultResponse(result *post.Result) map[string]interface{} {
	resp := map[string]interface{}{
		"id":      result.Post.ID,
		"type":    result.Post.Type,
		"content": result.Post.Content,
	}
	if result.Source != nil {
		resp["source"] = map[string]interface{}{
			"id":       result.Source.ID,
			"title":    result.Source.Title,
			"url":      result.Source.URL,
			"source":   string(result.Source.Source),
			"category": result.Source.Category,
		}
	}
	return resp
}

func intQueryParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
