package feed

import (
	"context"
	"sync"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/postscope/postscope/pkg/db"
	"github.com/postscope/postscope/pkg/domain"
)

// Source provides normalized content items from one external platform
type Source interface {
	Name() domain.Source
	Fetch(ctx context.Context, daysBack int) ([]domain.ContentItem, error)
}

// ItemStore persists fetched content items
type ItemStore interface {
	CreateItem(ctx context.Context, item *db.Item) (bool, error)
}

// Aggregator fetches from all configured sources concurrently and stores
// the results, deduplicating by URL
type Aggregator struct {
	sources []Source
	store   ItemStore
}

// NewAggregator creates an aggregator over the given sources
func NewAggregator(store ItemStore, sources ...Source) *Aggregator {
	return &Aggregator{sources: sources, store: store}
}

// FetchAll fetches every source concurrently and saves new items. A failing
// source contributes zero items but does not abort the others. Returns the
// count of newly stored items per source.
func (a *Aggregator) FetchAll(ctx context.Context, daysBack int) map[domain.Source]int {
	counts := make(map[domain.Source]int, len(a.sources))
	var mu sync.Mutex

	var g errgroup.Group
	for _, source := range a.sources {
		g.Go(func() error {
			name := source.Name()
			items, err := source.Fetch(ctx, daysBack)
			if err != nil {
				lgr.Printf("[WARN] fetch %s failed: %v", name, err)
				mu.Lock()
				counts[name] = 0
				mu.Unlock()
				return nil
			}

			saved := a.saveItems(ctx, items)
			lgr.Printf("[INFO] %s: %d items fetched, %d new", name, len(items), saved)

			mu.Lock()
			counts[name] += saved
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // source errors are logged, not propagated

	return counts
}

func (a *Aggregator) saveItems(ctx context.Context, items []domain.ContentItem) int {
	saved := 0
	for _, item := range items {
		rec := db.FromDomain(item)
		inserted, err := a.store.CreateItem(ctx, &rec)
		if err != nil {
			lgr.Printf("[WARN] save item %q: %v", item.URL, err)
			continue
		}
		if inserted {
			saved++
		}
	}
	return saved
}
