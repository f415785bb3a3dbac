package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postscope/postscope/pkg/db"
	"github.com/postscope/postscope/pkg/domain"
	"github.com/postscope/postscope/pkg/llm"
	"github.com/postscope/postscope/pkg/post"
)

type fakeDB struct {
	drafts    []db.Post
	stats     db.Stats
	draftsErr error
}

func (f *fakeDB) GetDrafts(_ context.Context) ([]db.Post, error) {
	return f.drafts, f.draftsErr
}

func (f *fakeDB) GetStats(_ context.Context) (*db.Stats, error) {
	return &f.stats, nil
}

type fakeGenerator struct {
	newsResult    *post.Result
	tipResult     *post.Result
	previewItems  []domain.ScoredItem
	err           error
	gotDays       int
	gotCategory   string
	gotPreviewN   int
	gotTip        llm.Tip
	newsGenerated bool
}

func (f *fakeGenerator) GenerateNewsPost(_ context.Context, daysBack int, category string) (*post.Result, error) {
	f.newsGenerated = true
	f.gotDays = daysBack
	f.gotCategory = category
	return f.newsResult, f.err
}

func (f *fakeGenerator) GenerateTipPost(_ context.Context, tip llm.Tip) (*post.Result, error) {
	f.gotTip = tip
	return f.tipResult, f.err
}

func (f *fakeGenerator) Preview(_ context.Context, daysBack int, category string, n int) ([]domain.ScoredItem, error) {
	f.gotDays = daysBack
	f.gotCategory = category
	f.gotPreviewN = n
	return f.previewItems, f.err
}

type fakeConfig struct{}

func (fakeConfig) GetServerConfig() (string, time.Duration) { return "127.0.0.1:0", 30 * time.Second }

func newTestServer(t *testing.T, database Database, generator Generator) *httptest.Server {
	t.Helper()
	srv := New(fakeConfig{}, database, generator, "test", false)
	ts := httptest.NewServer(srv.router)
	t.Cleanup(ts.Close)
	return ts
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestServer_Status(t *testing.T) {
	database := &fakeDB{stats: db.Stats{TotalItems: 12, DraftPosts: 2}}
	ts := newTestServer(t, database, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])

	stats, ok := body["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(12), stats["total_items"])
	assert.Equal(t, float64(2), stats["draft_posts"])
}

func TestServer_Ping(t *testing.T) {
	ts := newTestServer(t, &fakeDB{}, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Preview(t *testing.T) {
	gen := &fakeGenerator{previewItems: []domain.ScoredItem{
		{ContentItem: domain.ContentItem{ID: 1, Title: "top item", Source: domain.SourceArXiv, Category: domain.CategoryAI}, Score: 91.5},
		{ContentItem: domain.ContentItem{ID: 2, Title: "runner up", Source: domain.SourceHackerNews}, Score: 85.0},
	}}
	ts := newTestServer(t, &fakeDB{}, gen)

	t.Run("defaults", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/preview")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		items, ok := body["items"].([]interface{})
		require.True(t, ok)
		assert.Len(t, items, 2)

		first, ok := items[0].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "top item", first["title"])
		assert.Equal(t, 91.5, first["score"])

		assert.Equal(t, 10, gen.gotPreviewN)
		assert.Equal(t, 7, gen.gotDays)
	})

	t.Run("custom params", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/preview?n=3&days=14&category=AI")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, 3, gen.gotPreviewN)
		assert.Equal(t, 14, gen.gotDays)
		assert.Equal(t, "AI", gen.gotCategory)
	})

	t.Run("invalid params", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/preview?n=-1")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_Drafts(t *testing.T) {
	database := &fakeDB{drafts: []db.Post{
		{ID: 1, Content: "draft one", Type: "news", Status: "draft", CreatedAt: time.Now()},
		{ID: 2, Content: "draft two", Type: "tip", Status: "draft", CreatedAt: time.Now()},
	}}
	ts := newTestServer(t, database, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/api/v1/drafts")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	drafts, ok := body["drafts"].([]interface{})
	require.True(t, ok)
	assert.Len(t, drafts, 2)

	t.Run("db failure", func(t *testing.T) {
		database.draftsErr = errors.New("db down")
		resp, err := http.Get(ts.URL + "/api/v1/drafts")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestServer_Generate(t *testing.T) {
	t.Run("news post", func(t *testing.T) {
		source := domain.ContentItem{ID: 9, Title: "source article", URL: "https://example.com", Source: domain.SourceArXiv}
		gen := &fakeGenerator{newsResult: &post.Result{
			Post:   domain.Post{ID: 1, Content: "generated", Type: domain.PostTypeNews},
			Source: &source,
		}}
		ts := newTestServer(t, &fakeDB{}, gen)

		resp, err := http.Post(ts.URL+"/api/v1/generate", "application/json",
			bytes.NewBufferString(`{"type":"news","category":"AI","days":14}`))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "generated", body["content"])
		src, ok := body["source"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "source article", src["title"])

		assert.Equal(t, 14, gen.gotDays)
		assert.Equal(t, "AI", gen.gotCategory)
	})

	t.Run("news post no content", func(t *testing.T) {
		ts := newTestServer(t, &fakeDB{}, &fakeGenerator{}) // nil result

		resp, err := http.Post(ts.URL+"/api/v1/generate", "application/json",
			bytes.NewBufferString(`{"type":"news"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("tip post", func(t *testing.T) {
		gen := &fakeGenerator{tipResult: &post.Result{
			Post: domain.Post{ID: 2, Content: "tip text", Type: domain.PostTypeTip},
		}}
		ts := newTestServer(t, &fakeDB{}, gen)

		resp, err := http.Post(ts.URL+"/api/v1/generate", "application/json",
			bytes.NewBufferString(`{"type":"tip","topic":"Code Review","tip":"Review your own code first","category":"Career"}`))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "tip text", body["content"])
		assert.Nil(t, body["source"])
		assert.Equal(t, "Code Review", gen.gotTip.Topic)
	})

	t.Run("tip post missing fields", func(t *testing.T) {
		ts := newTestServer(t, &fakeDB{}, &fakeGenerator{})

		resp, err := http.Post(ts.URL+"/api/v1/generate", "application/json",
			bytes.NewBufferString(`{"type":"tip"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown type", func(t *testing.T) {
		ts := newTestServer(t, &fakeDB{}, &fakeGenerator{})

		resp, err := http.Post(ts.URL+"/api/v1/generate", "application/json",
			bytes.NewBufferString(`{"type":"poem"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad body", func(t *testing.T) {
		ts := newTestServer(t, &fakeDB{}, &fakeGenerator{})

		resp, err := http.Post(ts.URL+"/api/v1/generate", "application/json",
			bytes.NewBufferString(`{not json`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("generation failure", func(t *testing.T) {
		ts := newTestServer(t, &fakeDB{}, &fakeGenerator{err: errors.New("llm down")})

		resp, err := http.Post(ts.URL+"/api/v1/generate", "application/json",
			bytes.NewBufferString(`{"type":"news"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestServer_RunAndShutdown(t *testing.T) {
	srv := New(fakeConfig{}, &fakeDB{}, &fakeGenerator{}, "test", true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
