package resend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/growthkit/leadflow/internal/usecase"
)

func TestSendEmail(t *testing.T) {
	scheduled := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req sendEmailRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "me@co.com", req.From)
		assert.Equal(t, []string{"jane@acme.com"}, req.To)
		assert.Equal(t, "Hello", req.Subject)
		assert.Equal(t, "body text", req.Text)
		assert.Equal(t, "2026-03-01T09:00:00Z", req.ScheduledAt)

		fmt.Fprint(w, `{"id": "send_1"}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	sendID, err := client.SendEmail(context.Background(), usecase.EmailMessage{
		From: "me@co.com", To: []string{"jane@acme.com"},
		Subject: "Hello", Body: "body text", ScheduledAt: &scheduled,
	})

	assert.NoError(t, err)
	assert.Equal(t, "send_1", sendID)
}

func TestSendBatchReturnsOneIDPerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails/batch", r.URL.Path)

		var req []sendEmailRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req, 2)

		fmt.Fprint(w, `{"data": [{"id": "send_1"}, {"id": "send_2"}]}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	ids, err := client.SendBatch(context.Background(), []usecase.EmailMessage{
		{From: "me@co.com", To: []string{"a@x.com"}, Subject: "Hi", Body: "b"},
		{From: "me@co.com", To: []string{"b@x.com"}, Subject: "Hi", Body: "b"},
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"send_1", "send_2"}, ids)
}

func TestGetEmailMapsBounce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails/send_1", r.URL.Path)
		fmt.Fprint(w, `{
			"id": "send_1",
			"to": ["jane@acme.com"],
			"last_event": "bounced",
			"bounce": {"message": "mailbox does not exist"}
		}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	status, err := client.GetEmail(context.Background(), "send_1")

	assert.NoError(t, err)
	assert.Equal(t, "bounced", status.Status)
	assert.Equal(t, "jane@acme.com", status.Recipient)
	assert.Equal(t, "mailbox does not exist", status.Reason)
}

func TestCancelEmail(t *testing.T) {
	var canceled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails/send_1/cancel", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		canceled = true
		fmt.Fprint(w, `{"id": "send_1"}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	assert.NoError(t, client.CancelEmail(context.Background(), "send_1"))
	assert.True(t, canceled)
}

func TestErrorResponsesAreSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"name": "validation_error", "message": "Invalid from address"}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	_, err := client.SendEmail(context.Background(), usecase.EmailMessage{
		From: "bad", To: []string{"a@x.com"}, Subject: "Hi", Body: "b",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation_error")
	assert.Contains(t, err.Error(), "Invalid from address")
}
