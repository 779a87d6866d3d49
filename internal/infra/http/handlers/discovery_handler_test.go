package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/growthkit/leadflow/internal/entity"
	"github.com/growthkit/leadflow/internal/infra/http/handlers"
	"github.com/growthkit/leadflow/internal/usecase"
)

// MockSearchProviderHandler
type MockSearchProviderHandler struct {
	mock.Mock
}

func (m *MockSearchProviderHandler) Search(ctx context.Context, query usecase.SearchQuery) ([]usecase.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.SearchResult), args.Error(1)
}

// MockLeadParserHandler
type MockLeadParserHandler struct {
	mock.Mock
}

func (m *MockLeadParserHandler) ParseCandidates(ctx context.Context, results []usecase.SearchResult) ([]entity.Lead, error) {
	args := m.Called(ctx, results)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

// MockPublisherHandler
type MockPublisherHandler struct {
	mock.Mock
}

func (m *MockPublisherHandler) PublishHandoff(ctx context.Context, payload entity.HandoffPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func discoveryServer(t *testing.T) (*httptest.Server, *MockSearchProviderHandler, *MockLeadParserHandler, *MockPublisherHandler) {
	t.Helper()
	search := new(MockSearchProviderHandler)
	parser := new(MockLeadParserHandler)
	publisher := new(MockPublisherHandler)

	workflow := usecase.NewDiscoveryWorkflow(usecase.NewSession(), search, parser, publisher)
	handler := handlers.NewDiscoveryHandler(workflow)

	r := chi.NewRouter()
	r.Route("/discovery", handler.Routes)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, search, parser, publisher
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	assert.NoError(t, err)
	return resp
}

func candidateBatch(t *testing.T) []entity.Lead {
	t.Helper()
	leads := make([]entity.Lead, 5)
	for i := range leads {
		lead, err := entity.NewLead(
			fmt.Sprintf("Person %d", i), "CTO", fmt.Sprintf("Company %d", i),
			fmt.Sprintf("p%d@company%d.com", i, i),
			fmt.Sprintf("https://example.com/p%d", i),
		)
		assert.NoError(t, err)
		leads[i] = *lead
	}
	return leads
}

func TestDiscoveryEndToEndOverHTTP(t *testing.T) {
	server, search, parser, publisher := discoveryServer(t)

	criteria := entity.SearchCriteria{
		Industry: "fintech", Geography: "united states", Roles: []string{"CTO"},
	}

	resp := postJSON(t, server.URL+"/discovery/criteria", criteria)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var plan usecase.CriteriaPlan
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&plan))
	resp.Body.Close()
	assert.NotEmpty(t, plan.Queries)

	resp = postJSON(t, server.URL+"/discovery/criteria/confirm", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	search.On("Search", mock.Anything, mock.Anything).
		Return([]usecase.SearchResult{{Title: "hit", URL: "https://example.com"}}, nil)
	parser.On("ParseCandidates", mock.Anything, mock.Anything).
		Return(candidateBatch(t), nil)

	resp = postJSON(t, server.URL+"/discovery/search", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var review usecase.CandidateReview
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&review))
	resp.Body.Close()
	assert.NotEmpty(t, review.ReviewID)
	assert.Len(t, review.Leads, 5)

	publisher.On("PublishHandoff", mock.Anything, mock.Anything).Return(nil).Once()

	resp = postJSON(t, server.URL+"/discovery/review/"+review.ReviewID+"/approve", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var payload entity.HandoffPayload
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	assert.Len(t, payload.Leads, 5)

	resp, err := http.Get(server.URL + "/discovery/state")
	assert.NoError(t, err)
	var state map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	assert.Equal(t, usecase.StateHandedOff, state["state"])

	publisher.AssertExpectations(t)
}

func TestIncompleteCriteriaReturns400(t *testing.T) {
	server, _, _, _ := discoveryServer(t)

	resp := postJSON(t, server.URL+"/discovery/criteria", entity.SearchCriteria{Industry: "fintech"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, usecase.CodeIncompleteInput, body["code"])
	assert.Contains(t, body["message"], "geography")
	assert.Contains(t, body["message"], "roles")
}

func TestApproveUnknownReviewReturns403(t *testing.T) {
	server, search, parser, publisher := discoveryServer(t)

	criteria := entity.SearchCriteria{
		Industry: "fintech", Geography: "united states", Roles: []string{"CTO"},
	}
	postJSON(t, server.URL+"/discovery/criteria", criteria).Body.Close()
	postJSON(t, server.URL+"/discovery/criteria/confirm", nil).Body.Close()

	search.On("Search", mock.Anything, mock.Anything).
		Return([]usecase.SearchResult{{Title: "hit", URL: "https://example.com"}}, nil)
	parser.On("ParseCandidates", mock.Anything, mock.Anything).
		Return(candidateBatch(t), nil)
	postJSON(t, server.URL+"/discovery/search", nil).Body.Close()

	resp := postJSON(t, server.URL+"/discovery/review/not-the-review/approve", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, usecase.CodeMissingApproval, body["code"])

	publisher.AssertNotCalled(t, "PublishHandoff", mock.Anything, mock.Anything)
}

func TestSearchBeforeConfirmationReturns409(t *testing.T) {
	server, _, _, _ := discoveryServer(t)

	resp := postJSON(t, server.URL+"/discovery/search", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, usecase.CodeInvalidState, body["code"])
}
