package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postscope/postscope/pkg/config"
	"github.com/postscope/postscope/pkg/domain"
)

// writeTestConfig creates a config file backed by a temp database and returns
// Opts pointing at it
func writeTestConfig(t *testing.T, extra string) Opts {
	t.Helper()
	dir := t.TempDir()
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc", filepath.Join(dir, "test.db"))
	content := fmt.Sprintf("database:\n  dsn: %q\nllm:\n  model: test-model\n%s", dsn, extra)

	path := filepath.Join(dir, "postscope.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return Opts{Config: path}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(Opts{Config: "non-existent-config.yml"})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 5, cfg.Ranking.TopN)
}

func TestLoadConfig_FromFile(t *testing.T) {
	opts := writeTestConfig(t, "server:\n  listen: \"127.0.0.1:9999\"\n")
	cfg, err := loadConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Listen)
	assert.Equal(t, "test-model", cfg.LLM.Model)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("invalid: yaml: content: ["), 0o600))

	_, err := loadConfig(Opts{Config: path})
	require.Error(t, err)
}

func TestBuildSources(t *testing.T) {
	t.Run("all enabled by default", func(t *testing.T) {
		sources := buildSources(config.Default())
		require.Len(t, sources, 4)
	})

	t.Run("disabled sources skipped", func(t *testing.T) {
		cfg := config.Default()
		cfg.Sources.HackerNews.Disabled = true
		cfg.Sources.Reddit.Disabled = true

		sources := buildSources(cfg)
		require.Len(t, sources, 2)
		assert.Equal(t, domain.SourceArXiv, sources[0].Name())
		assert.Equal(t, domain.SourceDevTo, sources[1].Name())
	})
}

func TestBuildFilter_Overrides(t *testing.T) {
	item := domain.ContentItem{
		Title:      "a perfectly reasonable story title",
		URL:        "https://news.ycombinator.com/item?id=1",
		Source:     domain.SourceHackerNews,
		Summary:    "a long enough summary describing the story in sufficient detail to pass",
		Engagement: 500,
		Published:  time.Now(),
	}

	t.Run("defaults accept", func(t *testing.T) {
		verdict := buildFilter(config.Default()).Evaluate(item)
		assert.True(t, verdict.Accepted, verdict.Reason)
	})

	t.Run("config raises engagement threshold", func(t *testing.T) {
		cfg := config.Default()
		cfg.Quality.MinEngagement = map[string]int{"HackerNews": 1000}

		verdict := buildFilter(cfg).Evaluate(item)
		assert.False(t, verdict.Accepted)
	})

	t.Run("config spam keywords", func(t *testing.T) {
		cfg := config.Default()
		cfg.Quality.SpamKeywords = []string{"reasonable story"}

		verdict := buildFilter(cfg).Evaluate(item)
		assert.False(t, verdict.Accepted)
	})
}

func TestStatsCommand_EmptyDatabase(t *testing.T) {
	opts := writeTestConfig(t, "")
	cmd := StatsCommand{}
	require.NoError(t, cmd.Run(context.Background(), opts))
}

func TestListDraftsCommand_Empty(t *testing.T) {
	opts := writeTestConfig(t, "")
	cmd := ListDraftsCommand{Limit: 10}
	require.NoError(t, cmd.Run(context.Background(), opts))
}

func TestMarkPostedCommand_MissingPost(t *testing.T) {
	opts := writeTestConfig(t, "")
	cmd := MarkPostedCommand{ID: 12345, Engagement: -1}
	err := cmd.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mark post 12345")
}

func TestReviewCommand_MissingPost(t *testing.T) {
	opts := writeTestConfig(t, "")
	cmd := ReviewCommand{ID: 999}
	err := cmd.Run(context.Background(), opts)
	require.Error(t, err)
}

func TestFetchCommand_AllSourcesDisabled(t *testing.T) {
	extra := "sources:\n  arxiv:\n    disabled: true\n  hackernews:\n    disabled: true\n  devto:\n    disabled: true\n  reddit:\n    disabled: true\n"
	opts := writeTestConfig(t, extra)

	cmd := FetchCommand{Days: 7}
	err := cmd.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestPreviewCommand_EmptyDatabase(t *testing.T) {
	opts := writeTestConfig(t, "")
	cmd := PreviewCommand{Days: 7, Limit: 10}
	require.NoError(t, cmd.Run(context.Background(), opts))
}

func TestPreviewText(t *testing.T) {
	assert.Equal(t, "short title", previewText("short  title\n", 80))
	assert.Equal(t, "abc...", previewText("abcdef", 3))
	assert.Equal(t, "héllo", previewText("héllo", 5))
}

func TestSetupLog(t *testing.T) {
	t.Run("debug mode enabled", func(t *testing.T) {
		setupLog(true)
	})

	t.Run("debug mode disabled", func(t *testing.T) {
		setupLog(false)
	})

	t.Run("with secrets", func(t *testing.T) {
		setupLog(true, "secret1", "secret2")
	})
}
