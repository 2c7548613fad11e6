package newsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daily-digest/internal/model"
)

// Client is a minimal newsdata.io client.
// Docs: https://newsdata.io/documentation/#latest-news
type Client struct {
	baseURL  string
	apiKey   string
	language string
	client   *http.Client
}

// NewClient creates a news search client. baseURL defaults to
// "https://newsdata.io" and language to "en".
func NewClient(baseURL, apiKey, language string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://newsdata.io"
	}
	if strings.TrimSpace(language) == "" {
		language = "en"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		language: language,
		client:   &http.Client{Timeout: timeout},
	}
}

// ndArticle mirrors the subset of newsdata.io result fields we care about.
type ndArticle struct {
	ArticleID   string `json:"article_id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Content     string `json:"content"`
	PubDate     string `json:"pubDate"`
}

type ndResponse struct {
	Status       string      `json:"status"`
	TotalResults int         `json:"totalResults"`
	Results      []ndArticle `json:"results"`
}

// Topics searches each keyword in order and groups the results per keyword.
// The first failing keyword aborts the whole fetch; no partial results are
// returned.
func (c *Client) Topics(ctx context.Context, keywords []string) ([]model.NewsTopic, error) {
	topics := make([]model.NewsTopic, 0, len(keywords))
	for _, kw := range keywords {
		articles, err := c.Latest(ctx, kw)
		if err != nil {
			return nil, err
		}
		slog.Info("newsdata: fetched keyword", "keyword", kw, "articles", len(articles))
		topics = append(topics, model.NewsTopic{Keyword: kw, Articles: articles})
	}
	return topics, nil
}

// Latest runs one search for keyword. Failures are returned as
// *model.FetchError.
func (c *Client) Latest(ctx context.Context, keyword string) ([]model.NewsArticle, error) {
	endpoint := c.baseURL + "/api/1/news"
	q := url.Values{
		"apikey":   {c.apiKey},
		"q":        {keyword},
		"language": {c.language},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fetchErr(scrubURL(err, endpoint))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fetchErr(fmt.Errorf("newsdata: %q status %d %s", keyword, resp.StatusCode, http.StatusText(resp.StatusCode)))
	}
	var raw ndResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fetchErr(fmt.Errorf("newsdata: decode %q: %w", keyword, err))
	}
	articles := make([]model.NewsArticle, 0, len(raw.Results))
	for _, a := range raw.Results {
		articles = append(articles, convertArticle(a))
	}
	return articles, nil
}

// convertArticle maps an API result to a NewsArticle. Paywalled content falls
// back to the description, then to model.NoContent.
func convertArticle(a ndArticle) model.NewsArticle {
	content := a.Content
	if content == model.PaywalledContent {
		content = a.Description
		if content == "" {
			content = model.NoContent
		}
	}
	return model.NewsArticle{
		Headline: a.Title,
		Content:  content,
		Source:   a.Link,
	}
}

func fetchErr(err error) error {
	return &model.FetchError{Source: "news", Err: err}
}

// scrubURL drops the query string (which carries the API key) from transport
// errors.
func scrubURL(err error, endpoint string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: endpoint, Err: ue.Err}
	}
	return err
}
