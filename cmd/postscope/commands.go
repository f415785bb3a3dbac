package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/postscope/postscope/pkg/config"
	"github.com/postscope/postscope/pkg/content"
	"github.com/postscope/postscope/pkg/db"
	"github.com/postscope/postscope/pkg/domain"
	"github.com/postscope/postscope/pkg/feed"
	"github.com/postscope/postscope/pkg/format"
	"github.com/postscope/postscope/pkg/llm"
	"github.com/postscope/postscope/pkg/post"
	"github.com/postscope/postscope/pkg/quality"
	"github.com/postscope/postscope/pkg/ranker"
	"github.com/postscope/postscope/pkg/scheduler"
	"github.com/postscope/postscope/server"
)

// commandBase satisfies flags.Commander, the real work happens in Run
type commandBase struct{}

// Execute is a no-op, commands are dispatched through Run
func (commandBase) Execute(_ []string) error { return nil }

// FetchCommand pulls fresh content from all enabled sources
type FetchCommand struct {
	commandBase
	Days int `long:"days" default:"7" description:"lookback window in days"`
}

// Run fetches content and reports per-source counts
func (cmd *FetchCommand) Run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	sources := buildSources(cfg)
	if len(sources) == 0 {
		return fmt.Errorf("all content sources are disabled")
	}

	agg := feed.NewAggregator(database, sources...)
	counts := agg.FetchAll(ctx, cmd.Days)

	total := 0
	for _, src := range []domain.Source{domain.SourceArXiv, domain.SourceHackerNews, domain.SourceDevTo, domain.SourceReddit} {
		n, ok := counts[src]
		if !ok {
			continue
		}
		fmt.Printf("%-12s %d new items\n", src, n)
		total += n
	}
	fmt.Printf("total: %d new items\n", total)
	return nil
}

// GenerateCommand produces a post draft from top-ranked content or a manual tip
type GenerateCommand struct {
	commandBase
	Type     string `long:"type" choice:"news" choice:"tip" default:"news" description:"post type"`
	Category string `long:"category" description:"restrict source content to a category"`
	Days     int    `long:"days" default:"7" description:"lookback window in days"`
	Topic    string `long:"topic" description:"tip topic, required for tip posts"`
	Tip      string `long:"tip" description:"tip content, required for tip posts"`
	SaveFile bool   `long:"save-file" description:"export the draft as a markdown file"`
	Dir      string `long:"dir" default:"drafts" description:"directory for exported drafts"`
}

// Run generates a draft and optionally exports it
func (cmd *GenerateCommand) Run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	generator, err := newPostGenerator(cfg, database)
	if err != nil {
		return err
	}

	var result *post.Result
	switch cmd.Type {
	case "tip":
		if cmd.Topic == "" || cmd.Tip == "" {
			return fmt.Errorf("tip posts require --topic and --tip")
		}
		result, err = generator.GenerateTipPost(ctx, llm.Tip{Topic: cmd.Topic, Category: cmd.Category, Content: cmd.Tip})
	default:
		result, err = generator.GenerateNewsPost(ctx, cmd.Days, cmd.Category)
	}
	if err != nil {
		return fmt.Errorf("generate post: %w", err)
	}
	if result == nil {
		fmt.Println("no eligible content found, try fetching first or widening --days")
		return nil
	}

	fmt.Printf("draft %d (%s) created\n\n%s\n", result.Post.ID, result.Post.Type, result.Post.Content)
	if result.Source != nil {
		fmt.Printf("\nsource: %s (%s)\n", result.Source.Title, result.Source.URL)
	}

	if cmd.SaveFile {
		path, err := format.SaveToMarkdown(cmd.Dir, draftFromResult(result))
		if err != nil {
			return fmt.Errorf("save draft file: %w", err)
		}
		fmt.Printf("saved to %s\n", path)
	}
	return nil
}

// ListDraftsCommand lists pending draft posts, newest first
type ListDraftsCommand struct {
	commandBase
	Limit int `long:"limit" default:"10" description:"maximum drafts to show"`
}

// Run prints a short preview of each pending draft
func (cmd *ListDraftsCommand) Run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	drafts, err := database.GetDrafts(ctx)
	if err != nil {
		return fmt.Errorf("list drafts: %w", err)
	}
	if len(drafts) == 0 {
		fmt.Println("no pending drafts")
		return nil
	}
	if cmd.Limit > 0 && len(drafts) > cmd.Limit {
		drafts = drafts[:cmd.Limit]
	}

	for _, d := range drafts {
		fmt.Printf("[%d] %s %s  %s\n", d.ID, d.CreatedAt.Format("2006-01-02 15:04"), d.Type, previewText(d.Content, 80))
	}
	return nil
}

// ReviewCommand shows the full content of a single draft
type ReviewCommand struct {
	commandBase
	ID   int64  `long:"id" required:"true" description:"draft post id"`
	Save bool   `long:"save" description:"export the draft as a markdown file"`
	Dir  string `long:"dir" default:"drafts" description:"directory for exported drafts"`
}

// Run prints the draft with its source metadata
func (cmd *ReviewCommand) Run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	p, err := database.GetPost(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("get post %d: %w", cmd.ID, err)
	}

	draft := format.Draft{Post: p.ToDomain()}
	if p.SourceItemID.Valid {
		item, err := database.GetItem(ctx, p.SourceItemID.Int64)
		if err != nil {
			lgr.Printf("[WARN] source item %d not found: %v", p.SourceItemID.Int64, err)
		} else {
			src := item.ToDomain()
			draft.SourceTitle = src.Title
			draft.SourceURL = src.URL
			draft.SourceCategory = src.Category
		}
	}

	fmt.Printf("draft %d (%s), created %s, status %s\n", p.ID, p.Type, p.CreatedAt.Format("2006-01-02 15:04"), p.Status)
	if draft.SourceTitle != "" {
		fmt.Printf("source: %s (%s)\n", draft.SourceTitle, draft.SourceURL)
	}
	fmt.Printf("\n%s\n", p.Content)

	if cmd.Save {
		path, err := format.SaveToMarkdown(cmd.Dir, draft)
		if err != nil {
			return fmt.Errorf("save draft file: %w", err)
		}
		fmt.Printf("\nsaved to %s\n", path)
	}
	return nil
}

// MarkPostedCommand marks a draft as published on LinkedIn
type MarkPostedCommand struct {
	commandBase
	ID         int64 `long:"id" required:"true" description:"draft post id"`
	Engagement int   `long:"engagement" default:"-1" description:"engagement recorded for the post, omit if unknown"`
}

// Run flips the draft status to posted
func (cmd *MarkPostedCommand) Run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MarkPostPosted(ctx, cmd.ID, cmd.Engagement); err != nil {
		return fmt.Errorf("mark post %d as posted: %w", cmd.ID, err)
	}
	fmt.Printf("post %d marked as posted\n", cmd.ID)
	return nil
}

// StatsCommand prints aggregate content and post counts
type StatsCommand struct {
	commandBase
}

// Run prints the stats summary
func (cmd *StatsCommand) Run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := database.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	fmt.Printf("content items: %d total, %d unused\n", stats.TotalItems, stats.UnusedItems)
	fmt.Printf("posts:         %d total, %d drafts, %d posted\n", stats.TotalPosts, stats.DraftPosts, stats.PostedPosts)
	if stats.LastFetch.IsZero() {
		fmt.Println("last fetch:    never")
	} else {
		fmt.Printf("last fetch:    %s\n", stats.LastFetch.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// PreviewCommand shows the top-ranked eligible items without generating anything
type PreviewCommand struct {
	commandBase
	Days     int    `long:"days" default:"7" description:"lookback window in days"`
	Limit    int    `long:"limit" default:"10" description:"maximum items to show"`
	Category string `long:"category" description:"restrict to a category"`
}

// Run ranks the current pool and prints the top entries
func (cmd *PreviewCommand) Run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	generator, err := newPostGenerator(cfg, database)
	if err != nil {
		return err
	}

	ranked, err := generator.Preview(ctx, cmd.Days, cmd.Category, cmd.Limit)
	if err != nil {
		return fmt.Errorf("preview content: %w", err)
	}
	if len(ranked) == 0 {
		fmt.Println("no eligible content found")
		return nil
	}

	for i, item := range ranked {
		fmt.Printf("%2d. [%6.2f] %-10s %-12s %s\n", i+1, item.Score, item.Source, item.Category, previewText(item.Title, 70))
		fmt.Printf("    engagement %d, %s\n", item.Engagement, item.URL)
	}
	return nil
}

// ServerCommand runs the periodic fetcher and the REST API
type ServerCommand struct {
	commandBase
}

// Run starts the scheduler and HTTP server, blocks until the context is done
func (cmd *ServerCommand) Run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	generator, err := newPostGenerator(cfg, database)
	if err != nil {
		return err
	}

	sources := buildSources(cfg)
	if len(sources) == 0 {
		lgr.Printf("[WARN] all content sources are disabled, scheduler will not fetch anything")
	}
	agg := feed.NewAggregator(database, sources...)

	sched := scheduler.NewScheduler(agg, database, scheduler.Config{
		FetchInterval: cfg.Schedule.FetchInterval,
		DaysBack:      cfg.Schedule.DaysBack,
	})
	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(cfg, database, generator, revision, opts.Debug)
	return srv.Run(ctx)
}

// loadConfig reads the config file, falls back to defaults when the file is
// not there
func loadConfig(opts Opts) (*config.Config, error) {
	if _, err := os.Stat(opts.Config); err != nil {
		if os.IsNotExist(err) {
			lgr.Printf("[WARN] config file %s not found, using defaults", opts.Config)
			return config.Default(), nil
		}
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	return config.Load(opts.Config)
}

// openDatabase opens the sqlite database from config
func openDatabase(cfg *config.Config) (*db.DB, error) {
	return db.New(db.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
}

// buildSources creates all enabled content sources from config
func buildSources(cfg *config.Config) []feed.Source {
	timeout := cfg.Sources.Timeout
	var sources []feed.Source
	if !cfg.Sources.ArXiv.Disabled {
		sources = append(sources, feed.NewArxivSource(cfg.Sources.ArXiv.Query, cfg.Sources.ArXiv.MaxResults, timeout))
	}
	if !cfg.Sources.HackerNews.Disabled {
		var hnOpts []feed.HackerNewsOption
		if cfg.Sources.HackerNews.ExtractSummaries {
			hnOpts = append(hnOpts, feed.WithArticleExtraction(content.NewExtractor(timeout)))
		}
		sources = append(sources, feed.NewHackerNewsSource(cfg.Sources.HackerNews.MaxResults, timeout, hnOpts...))
	}
	if !cfg.Sources.DevTo.Disabled {
		sources = append(sources, feed.NewDevToSource(cfg.Sources.DevTo.Tags, cfg.Sources.DevTo.MaxResults, timeout))
	}
	if !cfg.Sources.Reddit.Disabled {
		sources = append(sources, feed.NewRedditSource(cfg.Sources.Reddit.Subreddits, cfg.Sources.Reddit.MaxResults, timeout))
	}
	return sources
}

// buildFilter creates the quality filter, config entries override defaults
// section by section
func buildFilter(cfg *config.Config) *quality.Filter {
	qc := quality.DefaultConfig()
	if len(cfg.Quality.MinTitleLength) > 0 {
		qc.MinTitleLength = sourceMap(cfg.Quality.MinTitleLength)
	}
	if len(cfg.Quality.MinEngagement) > 0 {
		qc.MinEngagement = sourceMap(cfg.Quality.MinEngagement)
	}
	if len(cfg.Quality.EngagementExempt) > 0 {
		exempt := make([]domain.Source, 0, len(cfg.Quality.EngagementExempt))
		for _, src := range cfg.Quality.EngagementExempt {
			exempt = append(exempt, domain.Source(src))
		}
		qc.EngagementExempt = exempt
	}
	if len(cfg.Quality.SpamKeywords) > 0 {
		qc.SpamKeywords = cfg.Quality.SpamKeywords
	}
	if len(cfg.Quality.ExcludedSubreddits) > 0 {
		qc.ExcludedSubreddits = cfg.Quality.ExcludedSubreddits
	}
	return quality.New(qc)
}

// newPostGenerator wires the filter, ranker and LLM client together
func newPostGenerator(cfg *config.Config, database *db.DB) (*post.Generator, error) {
	rnk, err := ranker.New(ranker.WithPreferredSource(domain.Source(cfg.Ranking.PreferredSource)))
	if err != nil {
		return nil, fmt.Errorf("create ranker: %w", err)
	}
	completer := llm.NewGenerator(cfg.GetLLMConfig())
	return post.NewGenerator(database, completer, buildFilter(cfg), rnk, cfg.Ranking.TopN), nil
}

func sourceMap(m map[string]int) map[domain.Source]int {
	out := make(map[domain.Source]int, len(m))
	for src, v := range m {
		out[domain.Source(src)] = v
	}
	return out
}

func draftFromResult(result *post.Result) format.Draft {
	draft := format.Draft{Post: result.Post}
	if result.Source != nil {
		draft.SourceTitle = result.Source.Title
		draft.SourceURL = result.Source.URL
		draft.SourceCategory = result.Source.Category
	}
	return draft
}

// previewText collapses whitespace and truncates to limit runes
func previewText(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
