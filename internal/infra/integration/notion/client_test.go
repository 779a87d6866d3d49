package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/growthkit/leadflow/internal/usecase"
)

func TestListDatabasesFollowsCursors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-06-28", r.Header.Get("Notion-Version"))

		var req searchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "database", req.Filter.Value)

		calls++
		if calls == 1 {
			fmt.Fprint(w, `{
				"results": [{"id": "db_1", "title": [{"plain_text": "Leads", "text": {"content": ""}}]}],
				"has_more": true,
				"next_cursor": "cursor_2"
			}`)
			return
		}
		assert.Equal(t, "cursor_2", req.StartCursor)
		fmt.Fprint(w, `{
			"results": [{"id": "db_2", "title": [{"text": {"content": "Archive"}}]}],
			"has_more": false
		}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	targets, err := client.ListDatabases(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, targets, 2)
	assert.Equal(t, "Leads", targets[0].Name)
	assert.Equal(t, "Archive", targets[1].Name)
}

func TestQueryDatabaseBuildsEmailFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/databases/db_1/query", r.URL.Path)

		var req queryRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotNil(t, req.Filter)
		assert.Equal(t, "Email", req.Filter.Property)
		assert.NotNil(t, req.Filter.Email)
		assert.Equal(t, "jane@acme.com", req.Filter.Email.Equals)

		fmt.Fprint(w, `{
			"results": [{
				"id": "page_1",
				"properties": {
					"Name": {"title": [{"plain_text": "Jane Doe", "text": {"content": ""}}]},
					"Email": {"email": "jane@acme.com"},
					"Status": {"select": {"name": "STORED"}},
					"Source URL": {"url": "https://example.com/jane"}
				}
			}]
		}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	records, err := client.QueryDatabase(context.Background(), "db_1", usecase.StoreFilter{
		Property: "Email", Equals: "jane@acme.com",
	})

	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "page_1", records[0].PageID)
	assert.Equal(t, "Jane Doe", records[0].Properties["Name"])
	assert.Equal(t, "STORED", records[0].Properties["Status"])
	assert.Equal(t, "https://example.com/jane", records[0].Properties["Source URL"])
}

func TestCreatePageTypesProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pages", r.URL.Path)

		var req createPageRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "db_1", req.Parent.DatabaseID)

		assert.Len(t, req.Properties["Name"].Title, 1)
		assert.NotNil(t, req.Properties["Email"].Email)
		assert.NotNil(t, req.Properties["Source URL"].URL)
		assert.Equal(t, "PROPOSED", req.Properties["Status"].Select.Name)
		assert.Len(t, req.Properties["Company"].RichText, 1)

		fmt.Fprint(w, `{"id": "page_new"}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	pageID, err := client.CreatePage(context.Background(), "db_1", map[string]string{
		"Name":       "Jane Doe",
		"Email":      "jane@acme.com",
		"Source URL": "https://example.com/jane",
		"Status":     "PROPOSED",
		"Company":    "Acme",
	})

	assert.NoError(t, err)
	assert.Equal(t, "page_new", pageID)
}

func TestUpdatePageSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code": "object_not_found", "message": "Could not find page"}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	err := client.UpdatePage(context.Background(), "page_gone", map[string]string{"Name": "x"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "object_not_found")
	assert.Contains(t, err.Error(), "Could not find page")
}
