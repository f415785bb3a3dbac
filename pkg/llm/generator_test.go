package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postscope/postscope/pkg/config"
	"github.com/postscope/postscope/pkg/domain"
)

// mockCompletion builds an openai-compatible completion response
func mockCompletion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func testConfig(endpoint string) config.LLMConfig {
	return config.LLMConfig{
		Endpoint:    endpoint,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   1024,
	}
}

func TestGenerator_GenerateNewsPost(t *testing.T) {
	var gotReq openai.ChatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		require.NoError(t, json.NewEncoder(w).Encode(mockCompletion("Big news! 🚀\n\n#AI #Tech")))
	}))
	defer server.Close()

	gen := NewGenerator(testConfig(server.URL + "/v1"))

	item := domain.ContentItem{
		Title:    "New model released",
		URL:      "https://example.com/model",
		Category: domain.CategoryAI,
		Summary:  "A new model outperforms prior work.",
	}

	post, err := gen.GenerateNewsPost(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "Big news! 🚀\n\n#AI #Tech", post)

	// request carries model settings and both messages
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.InDelta(t, 0.7, gotReq.Temperature, 0.001)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "LinkedIn content creator")

	prompt := gotReq.Messages[1].Content
	assert.Contains(t, prompt, "TITLE: New model released")
	assert.Contains(t, prompt, "SUMMARY: A new model outperforms prior work.")
	assert.Contains(t, prompt, "URL: https://example.com/model")
	assert.Contains(t, prompt, "CATEGORY: AI")
}

func TestGenerator_GenerateTipPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		prompt := req.Messages[1].Content
		assert.Contains(t, prompt, "TOPIC: Code Review Best Practices")
		assert.Contains(t, prompt, "TIP: Review your own code first.")
		assert.Contains(t, prompt, "CATEGORY: Career") // default when unset

		require.NoError(t, json.NewEncoder(w).Encode(mockCompletion("Here is a tip...")))
	}))
	defer server.Close()

	gen := NewGenerator(testConfig(server.URL + "/v1"))

	post, err := gen.GenerateTipPost(context.Background(), Tip{
		Topic:   "Code Review Best Practices",
		Content: "Review your own code first.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Here is a tip...", post)
}

func TestGenerator_RetriesOnFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": {"message": "overloaded"}}`)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(mockCompletion("third time lucky")))
	}))
	defer server.Close()

	gen := NewGenerator(testConfig(server.URL + "/v1"))

	post, err := gen.GenerateNewsPost(context.Background(), domain.ContentItem{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", post)
	assert.Equal(t, 3, calls)
}

func TestGenerator_FailsAfterMaxAttempts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"message": "overloaded"}}`)
	}))
	defer server.Close()

	gen := NewGenerator(testConfig(server.URL + "/v1"))

	_, err := gen.GenerateNewsPost(context.Background(), domain.ContentItem{Title: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed after 3 attempts")
	assert.Equal(t, maxAttempts, calls)
}

func TestGenerator_EmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(mockCompletion("   ")))
	}))
	defer server.Close()

	gen := NewGenerator(testConfig(server.URL + "/v1"))

	_, err := gen.GenerateNewsPost(context.Background(), domain.ContentItem{Title: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion")
}

func TestGenerator_CustomSystemPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "custom persona", req.Messages[0].Content)
		require.NoError(t, json.NewEncoder(w).Encode(mockCompletion("ok")))
	}))
	defer server.Close()

	cfg := testConfig(server.URL + "/v1")
	cfg.SystemPrompt = "custom persona"
	gen := NewGenerator(cfg)

	_, err := gen.GenerateTipPost(context.Background(), Tip{Topic: "x", Content: "y"})
	require.NoError(t, err)
}

func TestNewsPostPrompt_DefaultCategory(t *testing.T) {
	prompt := newsPostPrompt(domain.ContentItem{Title: "t", URL: "u"})
	assert.Contains(t, prompt, "CATEGORY: Tech")
	assert.True(t, strings.HasSuffix(prompt, "Write the complete LinkedIn post now:"))
}
