// Package quality gates raw content items against per-source substance and
// anti-spam rules before they reach ranking.
package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/postscope/postscope/pkg/domain"
)

// PassedReason is the verdict reason reported for accepted items
const PassedReason = "passed all quality checks"

// default thresholds for sources without an explicit entry
const (
	defaultMinTitleLength = 15
	defaultMinEngagement  = 10
	minSummaryLength      = 50
)

var subredditRe = regexp.MustCompile(`/r/([^/]+)`)

// Verdict is the accept/reject decision for a single item.
// Reason is always populated: PassedReason on accept, the first failing
// rule's description on reject.
type Verdict struct {
	Accepted bool
	Reason   string
}

// Config holds filter criteria. Zero-value maps fall back to defaults.
type Config struct {
	MinTitleLength     map[domain.Source]int // minimum title length per source
	MinEngagement      map[domain.Source]int // minimum engagement per source
	EngagementExempt   []domain.Source       // sources where engagement is not a quality signal
	SpamKeywords       []string              // case-insensitive phrases, any match rejects
	ExcludedSubreddits []string              // low-value subreddits, Reddit items only
}

// DefaultConfig returns the filter criteria used in production
func DefaultConfig() Config {
	return Config{
		MinTitleLength: map[domain.Source]int{
			domain.SourceArXiv:      20, // research papers should have descriptive titles
			domain.SourceHackerNews: 15,
			domain.SourceDevTo:      20,
			domain.SourceReddit:     25,
		},
		MinEngagement: map[domain.Source]int{
			domain.SourceHackerNews: 20,
			domain.SourceDevTo:      10,
			domain.SourceReddit:     50,
		},
		EngagementExempt: []domain.Source{domain.SourceArXiv},
		SpamKeywords: []string{
			"click here", "buy now", "limited offer", "act fast",
			"amazing trick", "you won't believe", "doctors hate",
			"this one weird", "shocking", "must see",
		},
		ExcludedSubreddits: []string{
			"memes", "funny", "pics", "aww", "me_irl",
			"gaming", "todayilearned", "showerthoughts",
		},
	}
}

// Filter checks content items against quality criteria. Safe for concurrent
// use: all configuration is read-only after New.
type Filter struct {
	minTitleLength     map[domain.Source]int
	minEngagement      map[domain.Source]int
	engagementExempt   map[domain.Source]bool
	spamKeywords       []string
	excludedSubreddits map[string]bool
}

// New creates a filter from the given criteria
func New(cfg Config) *Filter {
	f := &Filter{
		minTitleLength:     make(map[domain.Source]int, len(cfg.MinTitleLength)),
		minEngagement:      make(map[domain.Source]int, len(cfg.MinEngagement)),
		engagementExempt:   make(map[domain.Source]bool, len(cfg.EngagementExempt)),
		spamKeywords:       make([]string, 0, len(cfg.SpamKeywords)),
		excludedSubreddits: make(map[string]bool, len(cfg.ExcludedSubreddits)),
	}
	for src, v := range cfg.MinTitleLength {
		f.minTitleLength[src] = v
	}
	for src, v := range cfg.MinEngagement {
		f.minEngagement[src] = v
	}
	for _, src := range cfg.EngagementExempt {
		f.engagementExempt[src] = true
	}
	for _, kw := range cfg.SpamKeywords {
		f.spamKeywords = append(f.spamKeywords, strings.ToLower(kw))
	}
	for _, sub := range cfg.ExcludedSubreddits {
		f.excludedSubreddits[strings.ToLower(sub)] = true
	}
	return f
}

// Evaluate checks a single item against all quality rules. Checks run in
// fixed order and short-circuit on the first failure, so the reported reason
// is always the earliest violated rule.
func (f *Filter) Evaluate(item domain.ContentItem) Verdict {
	// title length, per-source threshold
	minTitle := defaultMinTitleLength
	if v, ok := f.minTitleLength[item.Source]; ok {
		minTitle = v
	}
	if len(item.Title) < minTitle {
		return Verdict{Reason: fmt.Sprintf("title too short (%d < %d)", len(item.Title), minTitle)}
	}

	// meaningful summary
	if len(item.Summary) < minSummaryLength {
		return Verdict{Reason: "summary too short or missing"}
	}

	// engagement threshold, research-paper sources exempt
	if !f.engagementExempt[item.Source] {
		minEng := defaultMinEngagement
		if v, ok := f.minEngagement[item.Source]; ok {
			minEng = v
		}
		if item.Engagement < minEng {
			return Verdict{Reason: fmt.Sprintf("low engagement (%d < %d)", item.Engagement, minEng)}
		}
	}

	// spam/clickbait detection
	combined := strings.ToLower(item.Title + " " + item.Summary)
	for _, kw := range f.spamKeywords {
		if strings.Contains(combined, kw) {
			return Verdict{Reason: fmt.Sprintf("spam keyword detected: %q", kw)}
		}
	}

	// url sanity
	if !strings.HasPrefix(item.URL, "http") {
		return Verdict{Reason: "invalid or missing URL"}
	}

	// reddit-specific rules
	if item.Source == domain.SourceReddit {
		if m := subredditRe.FindStringSubmatch(item.URL); m != nil {
			if f.excludedSubreddits[strings.ToLower(m[1])] {
				return Verdict{Reason: fmt.Sprintf("excluded subreddit: r/%s", strings.ToLower(m[1]))}
			}
		}
		if len(item.Title) < 30 && len(item.Summary) < 100 {
			return Verdict{Reason: "post lacks substance"}
		}
	}

	return Verdict{Accepted: true, Reason: PassedReason}
}

// FilterAll partitions items into accepted and rejected, preserving the
// relative order of accepted items. The returned map counts rejections per
// source. Input is never mutated.
func (f *Filter) FilterAll(items []domain.ContentItem) (accepted []domain.ContentItem, rejected map[domain.Source]int) {
	accepted = make([]domain.ContentItem, 0, len(items))
	rejected = make(map[domain.Source]int)

	for _, item := range items {
		if v := f.Evaluate(item); !v.Accepted {
			rejected[item.Source]++
			continue
		}
		accepted = append(accepted, item)
	}
	return accepted, rejected
}

// SourceStats holds per-source quality counts
type SourceStats struct {
	Total    int
	Accepted int
	Rejected int
}

// Report aggregates quality statistics for a set of items
type Report struct {
	Total    int
	Accepted int
	BySource map[domain.Source]SourceStats
	Reasons  map[string]int
}

// QualityReport evaluates all items and returns aggregate statistics,
// useful for auditing filter behavior across sources
func (f *Filter) QualityReport(items []domain.ContentItem) Report {
	report := Report{
		Total:    len(items),
		BySource: make(map[domain.Source]SourceStats),
		Reasons:  make(map[string]int),
	}

	for _, item := range items {
		stats := report.BySource[item.Source]
		stats.Total++

		if v := f.Evaluate(item); v.Accepted {
			report.Accepted++
			stats.Accepted++
		} else {
			stats.Rejected++
			report.Reasons[v.Reason]++
		}
		report.BySource[item.Source] = stats
	}
	return report
}
