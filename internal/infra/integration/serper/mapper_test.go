package serper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/growthkit/leadflow/internal/usecase"
)

func TestParseCandidatesTitleShapes(t *testing.T) {
	mapper := NewMapper()

	results := []usecase.SearchResult{
		{
			Title:   "Jane Doe - CTO - Acme | LinkedIn",
			Snippet: "Reach Jane at jane@acme.com for partnerships.",
			URL:     "https://example.com/jane",
		},
		{
			Title:   "Bob Chan - VP Engineering at Paylane",
			Snippet: "Engineering leadership profile.",
			URL:     "https://example.com/bob",
		},
		{
			Title:   "Fintech trends for 2026",
			Snippet: "An industry report.",
			URL:     "https://example.com/report",
		},
		{
			Title: "Eve Gray - CEO - Vaultic",
			URL:   "", // no source, must be skipped
		},
	}

	leads, err := mapper.ParseCandidates(context.Background(), results)
	assert.NoError(t, err)
	assert.Len(t, leads, 2)

	assert.Equal(t, "Jane Doe", leads[0].Name)
	assert.Equal(t, "CTO", leads[0].Role)
	assert.Equal(t, "Acme", leads[0].Company)
	assert.Equal(t, "jane@acme.com", leads[0].Email)
	assert.Equal(t, "https://example.com/jane", leads[0].SourceURL)

	assert.Equal(t, "Bob Chan", leads[1].Name)
	assert.Equal(t, "VP Engineering", leads[1].Role)
	assert.Equal(t, "Paylane", leads[1].Company)
	assert.Empty(t, leads[1].Email)
}

func TestParseCandidatesNeverInvents(t *testing.T) {
	mapper := NewMapper()

	leads, err := mapper.ParseCandidates(context.Background(), []usecase.SearchResult{
		{Title: "single fragment", URL: "https://example.com"},
		{Title: "Two - Parts", URL: "https://example.com"}, // no company resolvable
	})

	assert.NoError(t, err)
	assert.Empty(t, leads)
}
