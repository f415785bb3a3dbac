// Package llm generates LinkedIn post drafts via an OpenAI-compatible API.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/postscope/postscope/pkg/config"
	"github.com/postscope/postscope/pkg/domain"
)

// maxAttempts bounds retries on transient API failures or empty completions
const maxAttempts = 3

// default system prompt for post generation
const defaultSystemPrompt = `You are a professional LinkedIn content creator. You write concise,
insightful posts for a technical audience. You never use promotional language and you always
follow the structure requested in the prompt.`

// Generator produces post drafts using an LLM
type Generator struct {
	client    *openai.Client
	config    config.LLMConfig
	systemMsg string
}

// NewGenerator creates a new LLM post generator
func NewGenerator(cfg config.LLMConfig) *Generator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	// use custom system prompt if provided, otherwise use default
	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}

	return &Generator{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
	}
}

// GenerateNewsPost generates a post about a content item
func (g *Generator) GenerateNewsPost(ctx context.Context, item domain.ContentItem) (string, error) {
	return g.generate(ctx, newsPostPrompt(item))
}

// GenerateTipPost generates a post sharing a professional tip
func (g *Generator) GenerateTipPost(ctx context.Context, tip Tip) (string, error) {
	return g.generate(ctx, tipPostPrompt(tip))
}

func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.config.Model,
		Temperature: float32(g.config.Temperature),
		MaxTokens:   g.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: g.systemMsg,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = fmt.Errorf("llm request failed: %w", err)
			lgr.Printf("[WARN] generation attempt %d/%d failed: %v", attempt, maxAttempts, err)
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no response from llm")
			continue
		}

		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			lastErr = fmt.Errorf("empty completion from llm")
			continue
		}
		return content, nil
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", maxAttempts, lastErr)
}
