// Package post orchestrates draft generation: candidate selection, quality
// filtering, ranking and LLM generation.
package post

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/postscope/postscope/pkg/db"
	"github.com/postscope/postscope/pkg/domain"
	"github.com/postscope/postscope/pkg/format"
	"github.com/postscope/postscope/pkg/llm"
	"github.com/postscope/postscope/pkg/quality"
	"github.com/postscope/postscope/pkg/ranker"
)

// Store provides access to stored content items and posts
type Store interface {
	GetRecentItems(ctx context.Context, days int, category string) ([]db.Item, error)
	MarkItemUsed(ctx context.Context, itemID int64) error
	CreatePost(ctx context.Context, post *db.Post) error
}

// Completer generates post text from content
type Completer interface {
	GenerateNewsPost(ctx context.Context, item domain.ContentItem) (string, error)
	GenerateTipPost(ctx context.Context, tip llm.Tip) (string, error)
}

// Result is a generated draft with the source item it came from
type Result struct {
	Post   domain.Post
	Source *domain.ContentItem // nil for tip posts
}

// Generator coordinates the full generation pipeline
type Generator struct {
	store     Store
	completer Completer
	filter    *quality.Filter
	ranker    *ranker.Ranker
	topN      int
}

// NewGenerator creates a post generator. topN bounds the candidate pool the
// best item is selected from.
func NewGenerator(store Store, completer Completer, filter *quality.Filter, rnk *ranker.Ranker, topN int) *Generator {
	if topN <= 0 {
		topN = 5
	}
	return &Generator{
		store:     store,
		completer: completer,
		filter:    filter,
		ranker:    rnk,
		topN:      topN,
	}
}

// GenerateNewsPost runs the full pipeline for a news post. Returns nil when
// no content passes filtering, which is not an error.
func (g *Generator) GenerateNewsPost(ctx context.Context, daysBack int, category string) (*Result, error) {
	best, found, err := g.selectBest(ctx, daysBack, category)
	if err != nil {
		return nil, err
	}
	if !found {
		lgr.Printf("[INFO] no eligible content for news post (days=%d, category=%q)", daysBack, category)
		return nil, nil
	}

	lgr.Printf("[INFO] selected %q from %s (score %.2f)", best.Title, best.Source, best.Score)

	content, err := g.completer.GenerateNewsPost(ctx, best.ContentItem)
	if err != nil {
		return nil, fmt.Errorf("generate news post: %w", err)
	}
	content = format.FormatPost(content, best.Category)

	rec := &db.Post{
		Content:      content,
		Type:         string(domain.PostTypeNews),
		SourceItemID: toNullInt64(best.ID),
	}
	if err := g.store.CreatePost(ctx, rec); err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}
	if err := g.store.MarkItemUsed(ctx, best.ID); err != nil {
		return nil, fmt.Errorf("mark item used: %w", err)
	}

	post := rec.ToDomain()
	source := best.ContentItem
	return &Result{Post: post, Source: &source}, nil
}

// GenerateTipPost generates and saves a tip post
func (g *Generator) GenerateTipPost(ctx context.Context, tip llm.Tip) (*Result, error) {
	content, err := g.completer.GenerateTipPost(ctx, tip)
	if err != nil {
		return nil, fmt.Errorf("generate tip post: %w", err)
	}
	content = format.FormatPost(content, tip.Category)

	rec := &db.Post{
		Content: content,
		Type:    string(domain.PostTypeTip),
	}
	if err := g.store.CreatePost(ctx, rec); err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}

	return &Result{Post: rec.ToDomain()}, nil
}

// Preview returns the top n ranked items without generating anything
func (g *Generator) Preview(ctx context.Context, daysBack int, category string, n int) ([]domain.ScoredItem, error) {
	candidates, err := g.candidates(ctx, daysBack, category)
	if err != nil {
		return nil, err
	}

	ranked := g.ranker.RankAll(candidates)
	if n <= 0 || n > len(ranked) {
		return ranked, nil
	}
	return ranked[:n], nil
}

// selectBest filters, ranks and picks the single best item
func (g *Generator) selectBest(ctx context.Context, daysBack int, category string) (domain.ScoredItem, bool, error) {
	candidates, err := g.candidates(ctx, daysBack, category)
	if err != nil {
		return domain.ScoredItem{}, false, err
	}
	if len(candidates) == 0 {
		return domain.ScoredItem{}, false, nil
	}

	top, err := g.ranker.TopN(candidates, g.topN)
	if err != nil {
		return domain.ScoredItem{}, false, err
	}

	best, ok := g.ranker.Select(top)
	return best, ok, nil
}

// candidates loads recent unused items and runs them through quality filtering
func (g *Generator) candidates(ctx context.Context, daysBack int, category string) ([]domain.ContentItem, error) {
	records, err := g.store.GetRecentItems(ctx, daysBack, category)
	if err != nil {
		return nil, fmt.Errorf("get recent items: %w", err)
	}

	items := make([]domain.ContentItem, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.ToDomain())
	}

	accepted, rejected := g.filter.FilterAll(items)
	if total := len(items); total > 0 {
		lgr.Printf("[DEBUG] quality filter: %d/%d items accepted (%d rejected)", len(accepted), total, countRejected(rejected))
	}
	return accepted, nil
}

func toNullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func countRejected(bySource map[domain.Source]int) int {
	total := 0
	for _, n := range bySource {
		total += n
	}
	return total
}
