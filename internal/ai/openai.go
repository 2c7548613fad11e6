package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"daily-digest/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// SystemPrompt is sent with every news summary request.
const SystemPrompt = "You are a helpful assistant that provides detailed summaries of the news."

const promptPreamble = "Summarize the following news headlines and content by topic. Provide a detailed analysis of major talking points and information you deem important:\n\n"

// Summarizer turns fetched news into prose for the digest.
type Summarizer interface {
	// SummarizeNews summarizes all topics in one completion and returns its text.
	SummarizeNews(ctx context.Context, topics []model.NewsTopic) (string, error)
}

// OpenAIClient implements Summarizer using OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string        // optional
	Timeout time.Duration // optional; zero keeps the library's client
}

func NewOpenAI(cfg Config) *OpenAIClient {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	c := openai.NewClientWithConfig(cc)
	model := cfg.Model
	if model == "" {
		model = openai.GPT4
	}
	return &OpenAIClient{client: c, model: model}
}

// SummarizeNews returns the first completion verbatim. API failures and empty
// completions are returned as errors.
func (o *OpenAIClient) SummarizeNews(ctx context.Context, topics []model.NewsTopic) (string, error) {
	out, err := o.create(ctx, SystemPrompt, NewsPrompt(topics))
	if err != nil {
		slog.Error("openai: summarize news error", "err", err)
		return "", fmt.Errorf("openai: summarize news: %w", err)
	}
	return out, nil
}

// NewsPrompt lists every article under its topic keyword, one blank line
// between topics.
func NewsPrompt(topics []model.NewsTopic) string {
	b := &strings.Builder{}
	b.WriteString(promptPreamble)
	for _, t := range topics {
		fmt.Fprintf(b, "Topic: %s\n", t.Keyword)
		for _, a := range t.Articles {
			headline := a.Headline
			if headline == "" {
				headline = model.NoHeadline
			}
			content := a.Content
			if content == "" {
				content = model.NoContent
			}
			fmt.Fprintf(b, "- %s: %s\n", headline, content)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in completion")
	}
	return resp.Choices[0].Message.Content, nil
}
