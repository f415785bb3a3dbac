package llm

import (
	"fmt"

	"github.com/postscope/postscope/pkg/domain"
)

// Tip holds the inputs for a tip/advice post
type Tip struct {
	Topic    string
	Category string
	Content  string
}

// newsPostPrompt builds the prompt for a post about a recent development
func newsPostPrompt(item domain.ContentItem) string {
	category := item.Category
	if category == "" {
		category = domain.CategoryTech
	}

	return fmt.Sprintf(`You are a professional LinkedIn content creator specializing in %[1]s topics.

Create an engaging LinkedIn post about this recent development:

TITLE: %[2]s
SUMMARY: %[3]s
URL: %[4]s
CATEGORY: %[1]s

REQUIREMENTS:
1. Start with a strong hook (question, surprising stat, or bold statement)
2. Keep it concise (150-250 words)
3. Use line breaks every 2-3 sentences for readability
4. Include 2-3 relevant emojis (strategic placement, not excessive)
5. Explain why this matters to professionals in %[1]s
6. End with an engaging question to drive comments
7. Add 3-5 relevant hashtags at the end
8. Professional yet conversational tone
9. NO promotional language
10. Focus on value and insights

STRUCTURE:
[Hook - First 1-2 lines that grab attention]

[Context - What happened/what is it]

[Analysis - Why it matters]

[Key takeaways or implications]

[Call-to-action question]

[Hashtags]

Write the complete LinkedIn post now:`, category, item.Title, item.Summary, item.URL)
}

// tipPostPrompt builds the prompt for a tip/advice post
func tipPostPrompt(tip Tip) string {
	category := tip.Category
	if category == "" {
		category = "Career"
	}

	return fmt.Sprintf(`You are a professional LinkedIn content creator sharing career and technical advice.

Create an engaging LinkedIn post sharing this professional tip:

TOPIC: %s
CATEGORY: %s
TIP: %s

REQUIREMENTS:
1. Start with a relatable problem or situation
2. Keep it practical and actionable (150-250 words)
3. Use line breaks for readability
4. Include 2-3 relevant emojis
5. Share the tip as a lesson learned or best practice
6. Add specific examples or use cases
7. End with an engaging question
8. Add 3-5 relevant hashtags
9. Conversational but professional tone
10. Make it feel personal and authentic

STRUCTURE:
[Hook - Relatable problem or statement]

[Context - Why this matters]

[The Tip - Specific advice]

[How to apply it - Practical steps]

[Personal touch - Why you care about this]

[Engagement question]

[Hashtags]

Write the complete LinkedIn post now:`, tip.Topic, category, tip.Content)
}
