// Package format polishes generated posts and exports them to files.
package format

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/postscope/postscope/pkg/domain"
)

// maxHashtags caps how many hashtags a post carries
const maxHashtags = 5

var hashtagRe = regexp.MustCompile(`#\w+`)

// sentence boundary followed by whitespace
var sentenceEndRe = regexp.MustCompile(`([.!?])\s+`)

// hashtag sets per category, most specific first
var hashtagSets = map[string][]string{
	domain.CategoryAI:          {"#ArtificialIntelligence", "#MachineLearning", "#AI", "#DeepLearning", "#Tech"},
	domain.CategoryDevOps:      {"#DevOps", "#CloudComputing", "#Kubernetes", "#Docker", "#CI_CD"},
	domain.CategoryCloud:       {"#CloudComputing", "#AWS", "#Azure", "#DevOps", "#Tech"},
	domain.CategoryDataScience: {"#DataScience", "#Analytics", "#BigData", "#MachineLearning", "#AI"},
	domain.CategoryTech:        {"#Technology", "#Innovation", "#Tech", "#SoftwareEngineering", "#Coding"},
	"Career":                   {"#CareerDevelopment", "#Leadership", "#ProfessionalGrowth", "#CareerTips", "#Success"},
}

// EnsureLineBreaks inserts a blank line every three sentences unless the
// text is already broken into paragraphs
func EnsureLineBreaks(text string) string {
	if strings.Count(text, "\n\n") >= 3 {
		return text
	}

	sentences := splitSentences(text)
	if len(sentences) <= 3 {
		return text
	}

	var sb strings.Builder
	for i, sentence := range sentences {
		if i > 0 {
			if i%3 == 0 {
				sb.WriteString("\n\n")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(sentence)
	}
	return sb.String()
}

// splitSentences splits text on sentence boundaries, keeping the punctuation
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceEndRe.FindAllStringSubmatchIndex(text, -1) {
		// loc[3] is the end of the punctuation group
		sentences = append(sentences, strings.TrimSpace(text[last:loc[3]]))
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, strings.TrimSpace(text[last:]))
	}
	return sentences
}

// ExtractHashtags returns all hashtags present in the text
func ExtractHashtags(text string) []string {
	return hashtagRe.FindAllString(text, -1)
}

// AddHashtags tops up the post with category hashtags until it carries
// maxHashtags, skipping tags already present
func AddHashtags(text, category string) string {
	existing := ExtractHashtags(text)
	if len(existing) >= maxHashtags {
		return text
	}

	relevant, ok := hashtagSets[category]
	if !ok {
		relevant = hashtagSets[domain.CategoryTech]
	}

	present := make(map[string]bool, len(existing))
	for _, tag := range existing {
		present[strings.ToLower(tag)] = true
	}

	var missing []string
	for _, tag := range relevant {
		if !present[strings.ToLower(tag)] {
			missing = append(missing, tag)
		}
	}

	room := maxHashtags - len(existing)
	if len(missing) > room {
		missing = missing[:room]
	}
	if len(missing) == 0 {
		return text
	}

	trimmed := strings.TrimRight(text, " \t\n")
	if len(existing) > 0 && strings.HasSuffix(trimmed, existing[len(existing)-1]) {
		// extend the existing hashtag line
		return trimmed + " " + strings.Join(missing, " ")
	}
	return trimmed + "\n\n" + strings.Join(missing, " ")
}

// FormatPost applies all formatting to raw LLM output
func FormatPost(text, category string) string {
	formatted := EnsureLineBreaks(text)
	formatted = AddHashtags(formatted, category)
	return strings.TrimSpace(formatted)
}

// Draft bundles a post with the source metadata used in exports
type Draft struct {
	Post           domain.Post
	SourceTitle    string
	SourceURL      string
	SourceCategory string
}

// SaveToFile writes the raw post content into dir, returns the file path
func SaveToFile(dir, content string, postID int64, postType domain.PostType) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create drafts dir: %w", err)
	}

	filename := fmt.Sprintf("post_%d_%s_%s.txt", postID, postType, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write draft file: %w", err)
	}
	return path, nil
}

// SaveToMarkdown writes the post with its metadata as a markdown file into
// dir, returns the file path
func SaveToMarkdown(dir string, draft Draft) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create drafts dir: %w", err)
	}

	created := draft.Post.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var sb strings.Builder
	sb.WriteString("# LinkedIn Post Draft\n\n")
	fmt.Fprintf(&sb, "**Post ID:** %d  \n", draft.Post.ID)
	fmt.Fprintf(&sb, "**Type:** %s  \n", draft.Post.Type)
	fmt.Fprintf(&sb, "**Created:** %s  \n", created.Format("2006-01-02 15:04:05"))
	sb.WriteString("**Status:** Draft\n\n")

	if draft.SourceTitle != "" {
		sb.WriteString("## Source\n")
		fmt.Fprintf(&sb, "**Title:** %s  \n", draft.SourceTitle)
		fmt.Fprintf(&sb, "**URL:** %s  \n", draft.SourceURL)
		fmt.Fprintf(&sb, "**Category:** %s\n\n", draft.SourceCategory)
	}

	sb.WriteString("## Post Content\n\n")
	sb.WriteString(draft.Post.Content)
	sb.WriteString("\n\n---\n\n## Instructions\n")
	sb.WriteString("1. Review the post above\n")
	sb.WriteString("2. Edit if needed\n")
	sb.WriteString("3. Copy to LinkedIn\n")
	fmt.Fprintf(&sb, "4. Mark as posted using: `postscope mark-posted --id %d`\n", draft.Post.ID)

	filename := fmt.Sprintf("post_%d_%s_%s.md", draft.Post.ID, draft.Post.Type, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return "", fmt.Errorf("write markdown file: %w", err)
	}
	return path, nil
}
