package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status lifecycle of a lead. Transitions only move forward, except
// rejection, which is terminal and allowed from any non-terminal state.
const (
	LeadStatusProposed  = "PROPOSED"
	LeadStatusApproved  = "APPROVED"
	LeadStatusStored    = "STORED"
	LeadStatusContacted = "CONTACTED"
	LeadStatusRejected  = "REJECTED"
)

// Confidence labels assigned during validation.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

var statusRank = map[string]int{
	LeadStatusProposed:  0,
	LeadStatusApproved:  1,
	LeadStatusStored:    2,
	LeadStatusContacted: 3,
}

var (
	ErrMissingSourceURL  = errors.New("lead has no source URL")
	ErrStatusRegression  = errors.New("lead status cannot move backwards")
	ErrLeadRejected      = errors.New("lead is rejected")
	ErrUnknownLeadStatus = errors.New("unknown lead status")
)

type Lead struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role,omitempty"`
	Company    string    `json:"company"`
	Email      string    `json:"email,omitempty"`
	SourceURL  string    `json:"source_url"`
	Confidence string    `json:"confidence,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Status     string    `json:"status"`
	RecordID   string    `json:"record_id,omitempty"` // store page id, set after capture
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewLead(name, role, company, email, sourceURL string) (*Lead, error) {
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      name,
		Role:      role,
		Company:   company,
		Email:     email,
		SourceURL: sourceURL,
		Status:    LeadStatusProposed,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(l.Company) == "" {
		return errors.New("company is required")
	}
	if strings.TrimSpace(l.SourceURL) == "" {
		return ErrMissingSourceURL
	}
	return nil
}

// MatchKey returns the dedup key: normalized email when known,
// otherwise normalized name+company.
func (l *Lead) MatchKey() string {
	if email := NormalizeEmail(l.Email); email != "" {
		return "email:" + email
	}
	return "namecompany:" + NormalizeText(l.Name) + "|" + NormalizeText(l.Company)
}

// AdvanceStatus moves the lead forward in its lifecycle. Rejection is
// accepted from any non-terminal state; any other regression is refused.
func (l *Lead) AdvanceStatus(next string) error {
	if l.Status == LeadStatusRejected {
		return ErrLeadRejected
	}
	if next == LeadStatusRejected {
		l.Status = LeadStatusRejected
		l.UpdatedAt = time.Now()
		return nil
	}

	nextRank, ok := statusRank[next]
	if !ok {
		return ErrUnknownLeadStatus
	}
	if nextRank < statusRank[l.Status] {
		return ErrStatusRegression
	}

	l.Status = next
	l.UpdatedAt = time.Now()
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
