package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/growthkit/leadflow/internal/entity"
	"github.com/growthkit/leadflow/internal/usecase"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
	pageSize       = 25
	maxSearchPages = 3
)

// Client implements usecase.LeadStore against the Notion REST API.
// The API key comes from the host environment and never appears in any
// payload the workflows construct.
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
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ListDatabases walks the search endpoint filtered to databases, following
// cursors up to maxSearchPages.
func (c *Client) ListDatabases(ctx context.Context) ([]entity.DatabaseTarget, error) {
	var targets []entity.DatabaseTarget
	cursor := ""

	for page := 0; page < maxSearchPages; page++ {
		payload := searchRequest{
			PageSize:    pageSize,
			Filter:      searchFilter{Value: "database", Property: "object"},
			StartCursor: cursor,
		}

		var response searchResponse
		if err := c.do(ctx, http.MethodPost, "/search", payload, &response); err != nil {
			return nil, err
		}

		for _, db := range response.Results {
			targets = append(targets, entity.DatabaseTarget{
				ID:   db.ID,
				Name: plainTitle(db.Title),
			})
		}

		if !response.HasMore || response.NextCursor == "" {
			break
		}
		cursor = response.NextCursor
	}

	return targets, nil
}

func (c *Client) QueryDatabase(ctx context.Context, dbID string, filter usecase.StoreFilter) ([]usecase.StoreRecord, error) {
	payload := queryRequest{PageSize: pageSize}
	if filter.Property != "" {
		payload.Filter = buildFilter(filter)
	}

	var response queryResponse
	path := fmt.Sprintf("/databases/%s/query", dbID)
	if err := c.do(ctx, http.MethodPost, path, payload, &response); err != nil {
		return nil, err
	}
	return toRecords(response.Results), nil
}

func (c *Client) ListDatabasePages(ctx context.Context, dbID string) ([]usecase.StoreRecord, error) {
	return c.QueryDatabase(ctx, dbID, usecase.StoreFilter{})
}

func (c *Client) CreatePage(ctx context.Context, dbID string, properties map[string]string) (string, error) {
	payload := createPageRequest{
		Parent:     pageParent{DatabaseID: dbID},
		Properties: buildProperties(properties),
	}

	var response createPageResponse
	if err := c.do(ctx, http.MethodPost, "/pages", payload, &response); err != nil {
		return "", err
	}
	return response.ID, nil
}

func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]string) error {
	payload := updatePageRequest{Properties: buildProperties(properties)}
	return c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("notion %s (status %d): %s", apiErr.Code, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("notion error (status %d): %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode notion response: %w", err)
	}
	return nil
}

// buildFilter picks the condition type from the property name. Email
// properties use the email condition, title properties the title condition,
// everything else rich_text.
func buildFilter(filter usecase.StoreFilter) *queryFilter {
	qf := &queryFilter{Property: filter.Property}
	switch {
	case strings.EqualFold(filter.Property, "email"):
		qf.Email = &emailCondition{Equals: filter.Equals}
	case strings.EqualFold(filter.Property, "name"):
		qf.Title = &textCondition{Equals: filter.Equals}
	default:
		qf.RichText = &textCondition{Equals: filter.Equals}
	}
	return qf
}

func buildProperties(properties map[string]string) map[string]property {
	out := make(map[string]property, len(properties))
	for name, value := range properties {
		out[name] = buildProperty(name, value)
	}
	return out
}

func buildProperty(name, value string) property {
	switch {
	case strings.EqualFold(name, "name"):
		return property{Title: []richText{{Text: textContent{Content: value}}}}
	case strings.EqualFold(name, "email"):
		v := value
		return property{Email: &v}
	case strings.EqualFold(name, "source url"):
		v := value
		return property{URL: &v}
	case strings.EqualFold(name, "status"):
		return property{Select: &selectName{Name: value}}
	default:
		return property{RichText: []richText{{Text: textContent{Content: value}}}}
	}
}

func toRecords(pages []pageObject) []usecase.StoreRecord {
	records := make([]usecase.StoreRecord, 0, len(pages))
	for _, page := range pages {
		props := make(map[string]string, len(page.Properties))
		for name, prop := range page.Properties {
			props[name] = plainValue(prop)
		}
		records = append(records, usecase.StoreRecord{PageID: page.ID, Properties: props})
	}
	return records
}

func plainValue(prop property) string {
	switch {
	case len(prop.Title) > 0:
		return plainTitle(prop.Title)
	case len(prop.RichText) > 0:
		return plainTitle(prop.RichText)
	case prop.Email != nil:
		return *prop.Email
	case prop.URL != nil:
		return *prop.URL
	case prop.Select != nil:
		return prop.Select.Name
	}
	return ""
}

func plainTitle(parts []richText) string {
	var b strings.Builder
	for _, part := range parts {
		if part.Plain != "" {
			b.WriteString(part.Plain)
		} else {
			b.WriteString(part.Text.Content)
		}
	}
	return b.String()
}
