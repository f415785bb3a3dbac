package feed

import (
	"strings"

	"github.com/postscope/postscope/pkg/domain"
)

// categorizeTitle assigns a category from title keywords, used by sources
// that carry no taxonomy of their own
func categorizeTitle(title string) string {
	titleLower := strings.ToLower(title)

	switch {
	case containsAny(titleLower, "ai", "gpt", "llm", "machine learning", "neural"):
		return domain.CategoryAI
	case containsAny(titleLower, "devops", "kubernetes", "docker", "ci/cd"):
		return domain.CategoryDevOps
	case containsAny(titleLower, "cloud", "aws", "azure", "serverless"):
		return domain.CategoryCloud
	case containsAny(titleLower, "data", "analytics", "database"):
		return domain.CategoryDataScience
	default:
		return domain.CategoryTech
	}
}

// categorizePaper assigns a category to a research paper from its title and
// abstract. Papers default to AI as that is what the feed query selects for.
func categorizePaper(title, summary string) string {
	content := strings.ToLower(title + " " + summary)

	switch {
	case containsAny(content, "devops", "kubernetes", "docker", "ci/cd", "continuous integration", "deployment", "infrastructure"):
		return domain.CategoryDevOps
	case containsAny(content, "cloud computing", "aws", "azure", "gcp", "distributed system", "serverless", "microservice"):
		return domain.CategoryCloud
	case containsAny(content, "data science", "analytics", "visualization", "statistical", "data mining", "big data"):
		return domain.CategoryDataScience
	default:
		return domain.CategoryAI
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
