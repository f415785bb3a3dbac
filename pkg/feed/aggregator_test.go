package feed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postscope/postscope/pkg/db"
	"github.com/postscope/postscope/pkg/domain"
)

type fakeSource struct {
	name  domain.Source
	items []domain.ContentItem
	err   error
}

func (s *fakeSource) Name() domain.Source { return s.name }

func (s *fakeSource) Fetch(_ context.Context, _ int) ([]domain.ContentItem, error) {
	return s.items, s.err
}

type fakeStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (s *fakeStore) CreateItem(_ context.Context, item *db.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[item.URL] {
		return false, nil
	}
	s.seen[item.URL] = true
	return true, nil
}

func TestAggregator_FetchAll(t *testing.T) {
	arxiv := &fakeSource{name: domain.SourceArXiv, items: []domain.ContentItem{
		{Title: "paper one", URL: "https://arxiv.org/1", Source: domain.SourceArXiv},
		{Title: "paper two", URL: "https://arxiv.org/2", Source: domain.SourceArXiv},
	}}
	hn := &fakeSource{name: domain.SourceHackerNews, items: []domain.ContentItem{
		{Title: "story", URL: "https://example.com/story", Source: domain.SourceHackerNews},
	}}
	broken := &fakeSource{name: domain.SourceReddit, err: errors.New("rate limited")}

	store := &fakeStore{}
	agg := NewAggregator(store, arxiv, hn, broken)

	counts := agg.FetchAll(context.Background(), 7)

	assert.Equal(t, 2, counts[domain.SourceArXiv])
	assert.Equal(t, 1, counts[domain.SourceHackerNews])
	assert.Equal(t, 0, counts[domain.SourceReddit]) // failed source reports zero
}

func TestAggregator_DuplicatesNotCounted(t *testing.T) {
	store := &fakeStore{}
	agg := NewAggregator(store)

	items := []domain.ContentItem{
		{Title: "paper", URL: "https://arxiv.org/1", Source: domain.SourceArXiv},
		{Title: "same paper again", URL: "https://arxiv.org/1", Source: domain.SourceArXiv},
	}
	assert.Equal(t, 1, agg.saveItems(context.Background(), items))
}

func TestAggregator_StoreErrors(t *testing.T) {
	src := &fakeSource{name: domain.SourceDevTo, items: []domain.ContentItem{
		{Title: "article", URL: "https://dev.to/a", Source: domain.SourceDevTo},
	}}
	store := &fakeStore{err: errors.New("disk full")}

	agg := NewAggregator(store, src)
	counts := agg.FetchAll(context.Background(), 7)

	assert.Equal(t, 0, counts[domain.SourceDevTo])
}

func TestAggregator_NoSources(t *testing.T) {
	agg := NewAggregator(&fakeStore{})
	counts := agg.FetchAll(context.Background(), 7)
	assert.Empty(t, counts)
}
