package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soyeahso/toolchat/internal/version"
)

// Params are the query parameters sent to the top-headlines endpoint.
type Params struct {
	Query    string
	Country  string
	Category string
	Sources  string
	PageSize int
}

// Article is one entry of a top-headlines response.
type Article struct {
	Source      ArticleSource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

// ArticleSource identifies the publisher of an article.
type ArticleSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client fetches top headlines.
type Client interface {
	TopHeadlines(ctx context.Context, p Params) ([]Article, error)
}

// APIError is a non-ok response from NewsAPI.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("newsapi: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("newsapi: %s: %s", e.Code, e.Message)
}

type topHeadlinesResponse struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// APIClient talks to the NewsAPI v2 REST API.
type APIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a NewsAPI client. baseURL defaults to
// https://newsapi.org when empty.
func NewAPIClient(apiKey, baseURL string) *APIClient {
	if baseURL == "" {
		baseURL = "https://newsapi.org"
	}
	return &APIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TopHeadlines calls GET /v2/top-headlines once.
func (c *APIClient) TopHeadlines(ctx context.Context, p Params) ([]Article, error) {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("q", p.Query)
	set("country", p.Country)
	set("category", p.Category)
	set("sources", p.Sources)
	if p.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(p.PageSize))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/top-headlines?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var out topHeadlinesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if out.Status != "ok" {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: out.Code, Message: out.Message}
	}
	return out.Articles, nil
}
