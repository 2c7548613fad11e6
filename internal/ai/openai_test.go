package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"daily-digest/internal/model"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsPrompt(t *testing.T) {
	topics := []model.NewsTopic{
		{Keyword: "Tariffs", Articles: []model.NewsArticle{
			{Headline: "Duties raised", Content: "Rates go up.", Source: "https://a"},
			{Headline: "", Content: "Anonymous piece."},
		}},
		{Keyword: "Artificial Intelligence", Articles: []model.NewsArticle{
			{Headline: "Model released", Content: ""},
		}},
		{Keyword: "Empty"},
	}

	got := NewsPrompt(topics)

	want := "Summarize the following news headlines and content by topic. Provide a detailed analysis of major talking points and information you deem important:\n\n" +
		"Topic: Tariffs\n" +
		"- Duties raised: Rates go up.\n" +
		"- No headline: Anonymous piece.\n" +
		"\n" +
		"Topic: Artificial Intelligence\n" +
		"- Model released: No content available.\n" +
		"\n" +
		"Topic: Empty\n" +
		"\n"
	assert.Equal(t, want, got)
}

func newCompletionServer(t *testing.T, handler func(req openai.ChatCompletionRequest) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSummarizeNews(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := newCompletionServer(t, func(req openai.ChatCompletionRequest) (int, any) {
		seen = req
		return http.StatusOK, map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "  No major news.\n"}, "finish_reason": "stop"},
				{"index": 1, "message": map[string]any{"role": "assistant", "content": "ignored"}, "finish_reason": "stop"},
			},
		}
	})

	topics := []model.NewsTopic{{Keyword: "Tariffs"}}
	c := NewOpenAI(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	out, err := c.SummarizeNews(context.Background(), topics)
	require.NoError(t, err)

	assert.Equal(t, "  No major news.\n", out, "completion text must be returned verbatim")
	assert.Equal(t, openai.GPT4, seen.Model)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, seen.Messages[0].Role)
	assert.Equal(t, SystemPrompt, seen.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, seen.Messages[1].Role)
	assert.Equal(t, NewsPrompt(topics), seen.Messages[1].Content)
}

func TestSummarizeNewsAPIError(t *testing.T) {
	srv := newCompletionServer(t, func(openai.ChatCompletionRequest) (int, any) {
		return http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		}
	})

	_, err := NewOpenAI(Config{APIKey: "bad", Model: "gpt-4o", BaseURL: srv.URL + "/v1"}).
		SummarizeNews(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestSummarizeNewsNoChoices(t *testing.T) {
	srv := newCompletionServer(t, func(req openai.ChatCompletionRequest) (int, any) {
		return http.StatusOK, map[string]any{"id": "x", "model": req.Model, "choices": []any{}}
	})

	_, err := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/v1"}).SummarizeNews(context.Background(), nil)
	require.Error(t, err)
}

func TestSummarizeNewsTimeout(t *testing.T) {
	srv := newCompletionServer(t, func(req openai.ChatCompletionRequest) (int, any) {
		time.Sleep(200 * time.Millisecond)
		return http.StatusOK, map[string]any{
			"id": "x", "model": req.Model,
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "late"}}},
		}
	})

	_, err := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Timeout: 50 * time.Millisecond}).
		SummarizeNews(context.Background(), nil)
	require.Error(t, err)

	out, err := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/v1"}).SummarizeNews(context.Background(), nil)
	require.NoError(t, err, "no client deadline unless one is configured")
	assert.Equal(t, "late", out)
}
