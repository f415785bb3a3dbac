package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:postscope.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule struct {
		FetchInterval time.Duration `yaml:"fetch_interval" json:"fetch_interval" jsonschema:"default=6h,description=Content fetch interval"`
		DaysBack      int           `yaml:"days_back" json:"days_back" jsonschema:"default=7,description=Lookback window in days for fetched content"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Sources SourcesConfig `yaml:"sources" json:"sources" jsonschema:"description=Content source configuration"`

	Quality QualityConfig `yaml:"quality" json:"quality" jsonschema:"description=Quality filter configuration"`

	Ranking RankingConfig `yaml:"ranking" json:"ranking" jsonschema:"description=Content ranking configuration"`

	LLM LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for post generation"`
}

// SourcesConfig holds per-source fetch settings
type SourcesConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP timeout per source request"`

	ArXiv struct {
		Disabled   bool   `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=Disable arXiv fetching"`
		Query      string `yaml:"query" json:"query" jsonschema:"description=arXiv search query"`
		MaxResults int    `yaml:"max_results" json:"max_results" jsonschema:"default=30,description=Maximum papers per fetch"`
	} `yaml:"arxiv" json:"arxiv"`

	HackerNews struct {
		Disabled         bool `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=Disable Hacker News fetching"`
		MaxResults       int  `yaml:"max_results" json:"max_results" jsonschema:"default=30,description=Maximum stories per fetch"`
		ExtractSummaries bool `yaml:"extract_summaries" json:"extract_summaries" jsonschema:"default=false,description=Fetch linked articles and use extracted text as summaries"`
	} `yaml:"hackernews" json:"hackernews"`

	DevTo struct {
		Disabled   bool     `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=Disable dev.to fetching"`
		Tags       []string `yaml:"tags" json:"tags" jsonschema:"description=dev.to tags to fetch"`
		MaxResults int      `yaml:"max_results" json:"max_results" jsonschema:"default=15,description=Maximum articles per tag"`
	} `yaml:"devto" json:"devto"`

	Reddit struct {
		Disabled   bool     `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=Disable Reddit fetching"`
		Subreddits []string `yaml:"subreddits" json:"subreddits" jsonschema:"description=Subreddits to fetch"`
		MaxResults int      `yaml:"max_results" json:"max_results" jsonschema:"default=20,description=Maximum posts per subreddit"`
	} `yaml:"reddit" json:"reddit"`
}

// QualityConfig holds quality filter thresholds. Maps are keyed by source
// label; sources without an entry use built-in defaults.
type QualityConfig struct {
	MinTitleLength     map[string]int `yaml:"min_title_length" json:"min_title_length" jsonschema:"description=Minimum title length per source"`
	MinEngagement      map[string]int `yaml:"min_engagement" json:"min_engagement" jsonschema:"description=Minimum engagement per source"`
	EngagementExempt   []string       `yaml:"engagement_exempt" json:"engagement_exempt" jsonschema:"description=Sources exempt from engagement checks"`
	SpamKeywords       []string       `yaml:"spam_keywords" json:"spam_keywords" jsonschema:"description=Spam phrases causing rejection"`
	ExcludedSubreddits []string       `yaml:"excluded_subreddits" json:"excluded_subreddits" jsonschema:"description=Low-value subreddits to reject"`
}

// RankingConfig holds ranking and selection settings
type RankingConfig struct {
	TopN            int    `yaml:"top_n" json:"top_n" jsonschema:"default=5,minimum=1,description=Size of the candidate pool for final selection"`
	PreferredSource string `yaml:"preferred_source" json:"preferred_source" jsonschema:"default=ArXiv,description=Source favored during final selection"`
}

// LLMConfig holds LLM configuration for post generation
type LLMConfig struct {
	Endpoint     string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey       string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model        string        `yaml:"model" json:"model" jsonschema:"required,description=Model name (e.g. gpt-4o-mini or llama3)"`
	Temperature  float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.7,description=Temperature for response generation"`
	MaxTokens    int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=1024,description=Maximum tokens in response"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt override (optional)"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// Default returns a config with all defaults applied, used when no config
// file is given
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// setDefaults fills zero values with defaults
func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:postscope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// schedule
	if cfg.Schedule.FetchInterval == 0 {
		cfg.Schedule.FetchInterval = 6 * time.Hour
	}
	if cfg.Schedule.DaysBack == 0 {
		cfg.Schedule.DaysBack = 7
	}

	// sources
	if cfg.Sources.Timeout == 0 {
		cfg.Sources.Timeout = 30 * time.Second
	}
	if cfg.Sources.ArXiv.Query == "" {
		cfg.Sources.ArXiv.Query = `AI OR ML OR "machine learning" OR "deep learning" OR "neural network" OR LLM OR "large language model"`
	}
	if cfg.Sources.ArXiv.MaxResults == 0 {
		cfg.Sources.ArXiv.MaxResults = 30
	}
	if cfg.Sources.HackerNews.MaxResults == 0 {
		cfg.Sources.HackerNews.MaxResults = 30
	}
	if len(cfg.Sources.DevTo.Tags) == 0 {
		cfg.Sources.DevTo.Tags = []string{"devops", "cloud"}
	}
	if cfg.Sources.DevTo.MaxResults == 0 {
		cfg.Sources.DevTo.MaxResults = 15
	}
	if len(cfg.Sources.Reddit.Subreddits) == 0 {
		cfg.Sources.Reddit.Subreddits = []string{"MachineLearning", "devops"}
	}
	if cfg.Sources.Reddit.MaxResults == 0 {
		cfg.Sources.Reddit.MaxResults = 20
	}

	// ranking
	if cfg.Ranking.TopN == 0 {
		cfg.Ranking.TopN = 5
	}
	if cfg.Ranking.PreferredSource == "" {
		cfg.Ranking.PreferredSource = "ArXiv"
	}

	// llm
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if cfg.Ranking.TopN < 1 {
		return fmt.Errorf("ranking.top_n must be at least 1")
	}

	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}

	for src, v := range cfg.Quality.MinTitleLength {
		if v < 0 {
			return fmt.Errorf("quality.min_title_length[%s] must be non-negative", src)
		}
	}
	for src, v := range cfg.Quality.MinEngagement {
		if v < 0 {
			return fmt.Errorf("quality.min_engagement[%s] must be non-negative", src)
		}
	}

	if cfg.Schedule.DaysBack < 1 {
		return fmt.Errorf("schedule.days_back must be at least 1")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetLLMConfig returns LLM configuration
func (c *Config) GetLLMConfig() LLMConfig {
	return c.LLM
}
