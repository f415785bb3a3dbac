// Package ranker assigns each content item a composite desirability score
// from recency, engagement and topical relevance, and provides the top-N
// extraction and source-priority selection used to pick a single item.
package ranker

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/postscope/postscope/pkg/domain"
)

// scoring weights, must sum to 1.0
const (
	weightRecency    = 0.4
	weightEngagement = 0.3
	weightRelevance  = 0.3
)

// relevance scoring constants
const (
	relevanceBase     = 50.0
	relevancePerMatch = 10.0
	relevanceMaxBonus = 50.0
)

// defaultKeywords maps categories to relevance keywords. Matches in
// lowercased title+summary add to the relevance sub-score.
var defaultKeywords = map[string][]string{
	domain.CategoryAI: {
		"ai", "artificial intelligence", "machine learning", "deep learning",
		"neural", "gpt", "llm", "transformer", "ml", "model",
	},
	domain.CategoryDevOps: {
		"devops", "kubernetes", "docker", "ci/cd", "jenkins", "automation",
		"deployment", "infrastructure", "containerization", "pipeline",
	},
	domain.CategoryCloud: {
		"cloud", "aws", "azure", "gcp", "serverless", "microservices",
		"distributed", "scalability", "kubernetes",
	},
	domain.CategoryDataScience: {
		"data science", "analytics", "visualization", "big data",
		"statistics", "pandas", "numpy", "analysis",
	},
}

// Ranker scores and orders content items. Stateless apart from read-only
// configuration, so a single instance is safe for concurrent use.
type Ranker struct {
	keywords        map[string][]string
	preferredSource domain.Source
	now             func() time.Time // injectable for tests
}

// Option customizes ranker construction
type Option func(*Ranker)

// WithKeywords overrides the per-category relevance keyword table
func WithKeywords(keywords map[string][]string) Option {
	return func(r *Ranker) { r.keywords = keywords }
}

// WithPreferredSource overrides the source favored during selection
func WithPreferredSource(src domain.Source) Option {
	return func(r *Ranker) { r.preferredSource = src }
}

// WithNowFunc overrides the clock used for recency scoring
func WithNowFunc(now func() time.Time) Option {
	return func(r *Ranker) { r.now = now }
}

// New creates a ranker. Returns an error if the fixed weights do not sum
// to 1.0 — that would be a programming mistake, not bad data.
func New(opts ...Option) (*Ranker, error) {
	if sum := weightRecency + weightEngagement + weightRelevance; math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("scoring weights sum to %v, expected 1.0", sum)
	}

	r := &Ranker{
		keywords:        defaultKeywords,
		preferredSource: domain.SourceArXiv,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RecencyScore computes the recency sub-score (0-100) from the publish time.
// Step function for the first week, exponential decay after. Zero time
// (missing date) scores 0.
func (r *Ranker) RecencyScore(published time.Time) float64 {
	if published.IsZero() {
		return 0
	}

	ageHours := r.now().Sub(published).Hours()

	switch {
	case ageHours <= 24:
		return 100
	case ageHours <= 48:
		return 90
	case ageHours <= 72:
		return 80
	case ageHours <= 96:
		return 70
	case ageHours <= 120:
		return 60
	case ageHours <= 144:
		return 50
	case ageHours <= 168:
		return 40
	default:
		days := ageHours / 24
		return math.Max(0, 40*math.Exp(-(days-7)/7))
	}
}

// EngagementScore computes the engagement sub-score (0-100) from the raw
// engagement count. Piecewise scaling compresses viral outliers so they do
// not dominate the composite purely on popularity.
func (r *Ranker) EngagementScore(engagement int) float64 {
	if engagement <= 0 {
		return 0
	}

	e := float64(engagement)
	switch {
	case engagement < 10:
		return e * 5
	case engagement < 50:
		return 50 + (e-10)*1.25
	case engagement < 100:
		return 75 + (e-50)*0.5
	default:
		return math.Min(100, 90+math.Log10(e-99)*10)
	}
}

// RelevanceScore computes the relevance sub-score (0-100): base 50 plus 10
// per distinct category keyword found in title+summary, capped at 100.
// Unknown or empty category yields the base score.
func (r *Ranker) RelevanceScore(item domain.ContentItem) float64 {
	score := relevanceBase

	keywords, ok := r.keywords[item.Category]
	if !ok {
		return score
	}

	text := strings.ToLower(item.Title + " " + item.Summary)
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}

	score += math.Min(relevanceMaxBonus, float64(matches)*relevancePerMatch)
	return math.Min(100, score)
}

// Score computes the composite score for a single item, rounded to two
// decimal places. Pure function of the item and static configuration.
func (r *Ranker) Score(item domain.ContentItem) float64 {
	total := weightRecency*r.RecencyScore(item.Published) +
		weightEngagement*r.EngagementScore(item.Engagement) +
		weightRelevance*r.RelevanceScore(item)
	return math.Round(total*100) / 100
}

// RankAll scores every item and returns them sorted by score descending.
// The sort is stable: equal scores keep their input order. Input is not
// mutated.
func (r *Ranker) RankAll(items []domain.ContentItem) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, len(items))
	for i, item := range items {
		scored[i] = domain.ScoredItem{ContentItem: item, Score: r.Score(item)}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// TopN ranks items and returns the n highest-scored. Requesting n <= 0 is a
// configuration error.
func (r *Ranker) TopN(items []domain.ContentItem, n int) ([]domain.ScoredItem, error) {
	if n <= 0 {
		return nil, fmt.Errorf("top-n size must be positive, got %d", n)
	}

	ranked := r.RankAll(items)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Select picks a single item from ranked candidates: the first item from the
// preferred source if any is present, otherwise the highest-scored item
// overall. The source preference is a deliberate override of pure score
// ordering kept out of the weighted score itself. Returns false on empty
// input.
func (r *Ranker) Select(ranked []domain.ScoredItem) (domain.ScoredItem, bool) {
	if len(ranked) == 0 {
		return domain.ScoredItem{}, false
	}

	for _, item := range ranked {
		if item.Source == r.preferredSource {
			return item, true
		}
	}
	return ranked[0], true
}
