package resend

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

const defaultBaseURL = "https://api.resend.com"

// Client implements usecase.EmailDelivery against the Resend REST API.
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

func (c *Client) SendEmail(ctx context.Context, msg usecase.EmailMessage) (string, error) {
	var response sendEmailResponse
	if err := c.do(ctx, http.MethodPost, "/emails", toSendRequest(msg), &response); err != nil {
		return "", err
	}
	return response.ID, nil
}

func (c *Client) SendBatch(ctx context.Context, msgs []usecase.EmailMessage) ([]string, error) {
	payload := make([]sendEmailRequest, len(msgs))
	for i, msg := range msgs {
		payload[i] = toSendRequest(msg)
	}

	var response sendBatchResponse
	if err := c.do(ctx, http.MethodPost, "/emails/batch", payload, &response); err != nil {
		return nil, err
	}

	ids := make([]string, len(response.Data))
	for i, item := range response.Data {
		ids[i] = item.ID
	}
	return ids, nil
}

func (c *Client) UpdateEmail(ctx context.Context, sendID string, changes usecase.EmailChanges) error {
	payload := updateEmailRequest{}
	if changes.ScheduledAt != nil {
		payload.ScheduledAt = changes.ScheduledAt.Format(time.RFC3339)
	}
	return c.do(ctx, http.MethodPatch, "/emails/"+sendID, payload, nil)
}

func (c *Client) CancelEmail(ctx context.Context, sendID string) error {
	return c.do(ctx, http.MethodPost, "/emails/"+sendID+"/cancel", nil, nil)
}

func (c *Client) GetEmail(ctx context.Context, sendID string) (*usecase.DeliveryStatus, error) {
	var response emailResponse
	if err := c.do(ctx, http.MethodGet, "/emails/"+sendID, nil, &response); err != nil {
		return nil, err
	}
	status := toDeliveryStatus(response)
	return &status, nil
}

func (c *Client) ListEmails(ctx context.Context) ([]usecase.DeliveryStatus, error) {
	var response listEmailsResponse
	if err := c.do(ctx, http.MethodGet, "/emails", nil, &response); err != nil {
		return nil, err
	}

	statuses := make([]usecase.DeliveryStatus, len(response.Data))
	for i, item := range response.Data {
		statuses[i] = toDeliveryStatus(item)
	}
	return statuses, nil
}

func (c *Client) ListAttachments(ctx context.Context) ([]usecase.Attachment, error) {
	var response listAttachmentsResponse
	if err := c.do(ctx, http.MethodGet, "/attachments", nil, &response); err != nil {
		return nil, err
	}

	attachments := make([]usecase.Attachment, len(response.Data))
	for i, item := range response.Data {
		attachments[i] = usecase.Attachment{ID: item.ID, Filename: item.Filename, URL: item.URL}
	}
	return attachments, nil
}

func (c *Client) GetAttachment(ctx context.Context, id string) (*usecase.Attachment, error) {
	var response attachmentResponse
	if err := c.do(ctx, http.MethodGet, "/attachments/"+id, nil, &response); err != nil {
		return nil, err
	}
	return &usecase.Attachment{ID: response.ID, Filename: response.Filename, URL: response.URL}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal resend request: %w", err)
		}
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("resend %s (status %d): %s", apiErr.Name, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend error (status %d): %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode resend response: %w", err)
	}
	return nil
}

func toSendRequest(msg usecase.EmailMessage) sendEmailRequest {
	req := sendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Body,
	}
	if msg.ScheduledAt != nil {
		req.ScheduledAt = msg.ScheduledAt.Format(time.RFC3339)
	}
	return req
}

func toDeliveryStatus(email emailResponse) usecase.DeliveryStatus {
	status := usecase.DeliveryStatus{
		SendID: email.ID,
		Status: email.LastEvent,
	}
	if len(email.To) > 0 {
		status.Recipient = email.To[0]
	}
	if email.Bounce != nil {
		status.Reason = email.Bounce.Message
	}
	return status
}
