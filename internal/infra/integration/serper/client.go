package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/growthkit/leadflow/internal/usecase"
)

const (
	defaultBaseURL = "https://google.serper.dev"
	defaultResults = 10
)

// Client implements usecase.SearchProvider against a Serper-style
// web search API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) Search(ctx context.Context, query usecase.SearchQuery) ([]usecase.SearchResult, error) {
	keywords := query.Keywords
	for _, filter := range query.Filters {
		keywords += fmt.Sprintf(" -%q", filter)
	}

	body, err := json.Marshal(searchRequest{Query: keywords, Num: defaultResults})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search error (status %d): %s", resp.StatusCode, string(raw))
	}

	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]usecase.SearchResult, len(response.Organic))
	for i, hit := range response.Organic {
		results[i] = usecase.SearchResult{
			Title:   hit.Title,
			Snippet: hit.Snippet,
			URL:     hit.Link,
		}
	}
	return results, nil
}
