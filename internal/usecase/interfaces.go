package usecase

import (
	"context"
	"time"

	"github.com/growthkit/leadflow/internal/entity"
)

// SearchQuery is the structured input to the search capability.
type SearchQuery struct {
	Keywords string   `json:"keywords"`
	Filters  []string `json:"filters,omitempty"`
}

// SearchResult is one ranked hit from the search capability.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// SearchProvider is the web search capability.
type SearchProvider interface {
	Search(ctx context.Context, query SearchQuery) ([]SearchResult, error)
}

// StoreRecord is one record returned by the store capability.
type StoreRecord struct {
	PageID     string            `json:"page_id"`
	Properties map[string]string `json:"properties"`
}

// StoreFilter narrows a database query. Zero value means no filter.
type StoreFilter struct {
	Property string `json:"property,omitempty"`
	Equals   string `json:"equals,omitempty"`
}

// LeadStore is the persistent store capability (Notion-like).
type LeadStore interface {
	ListDatabases(ctx context.Context) ([]entity.DatabaseTarget, error)
	QueryDatabase(ctx context.Context, dbID string, filter StoreFilter) ([]StoreRecord, error)
	ListDatabasePages(ctx context.Context, dbID string) ([]StoreRecord, error)
	CreatePage(ctx context.Context, dbID string, properties map[string]string) (string, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]string) error
}

// EmailMessage is the wire-level input to the delivery capability.
type EmailMessage struct {
	From        string     `json:"from"`
	To          []string   `json:"to"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// EmailChanges carries mutable fields for a dispatched email.
type EmailChanges struct {
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// DeliveryStatus is the per-send state reported by the delivery capability.
type DeliveryStatus struct {
	SendID    string `json:"send_id"`
	Recipient string `json:"recipient,omitempty"`
	Status    string `json:"status"` // e.g. queued, delivered, bounced, canceled
	Reason    string `json:"reason,omitempty"`
}

// Attachment is a delivery artifact (Resend-like).
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}

// EmailDelivery is the email delivery capability.
type EmailDelivery interface {
	SendEmail(ctx context.Context, msg EmailMessage) (string, error)
	SendBatch(ctx context.Context, msgs []EmailMessage) ([]string, error)
	UpdateEmail(ctx context.Context, sendID string, changes EmailChanges) error
	CancelEmail(ctx context.Context, sendID string) error
	GetEmail(ctx context.Context, sendID string) (*DeliveryStatus, error)
	ListEmails(ctx context.Context) ([]DeliveryStatus, error)
	ListAttachments(ctx context.Context) ([]Attachment, error)
	GetAttachment(ctx context.Context, id string) (*Attachment, error)
}

// HandoffPublisher carries approved leads from discovery to outreach.
type HandoffPublisher interface {
	PublishHandoff(ctx context.Context, payload entity.HandoffPayload) error
}
