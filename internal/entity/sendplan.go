package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Send modes supported by the delivery capability.
const (
	SendModeSingle = "SINGLE"
	SendModeBatch  = "BATCH"
)

// SendPlan lifecycle. An approved plan is immutable except through the
// update/cancel operations keyed by its dispatch ids.
const (
	PlanStatusDrafted    = "DRAFTED"
	PlanStatusPresented  = "PRESENTED"
	PlanStatusApproved   = "APPROVED"
	PlanStatusDispatched = "DISPATCHED"
	PlanStatusDelivered  = "DELIVERED"
	PlanStatusFailed     = "FAILED"
	PlanStatusCanceled   = "CANCELED"
)

var (
	ErrNoRecipients = errors.New("send plan has no recipients")
	ErrNoSender     = errors.New("send plan has no sender")
	ErrPlanFinal    = errors.New("send plan is in a terminal state")
)

type SendPlan struct {
	ID          string     `json:"id"`
	From        string     `json:"from"`
	Recipients  []string   `json:"recipients"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	Mode        string     `json:"mode"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Status      string     `json:"status"`
	SendIDs     []string   `json:"send_ids,omitempty"` // provider ids, set after dispatch
	LeadIDs     []string   `json:"lead_ids,omitempty"` // originating leads, for status write-back
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewSendPlan drafts a plan. Sender and recipients must be supplied by the
// user; drafting never invents either.
func NewSendPlan(from string, recipients []string, subject, body, mode string) (*SendPlan, error) {
	if from == "" {
		return nil, ErrNoSender
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if mode != SendModeSingle && mode != SendModeBatch {
		return nil, errors.New("mode must be SINGLE or BATCH")
	}
	if mode == SendModeSingle && len(recipients) > 1 {
		return nil, errors.New("single mode accepts exactly one recipient")
	}

	return &SendPlan{
		ID:         uuid.New().String(),
		From:       from,
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
		Mode:       mode,
		Status:     PlanStatusDrafted,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil
}

func (p *SendPlan) Terminal() bool {
	switch p.Status {
	case PlanStatusDelivered, PlanStatusFailed, PlanStatusCanceled:
		return true
	}
	return false
}

func (p *SendPlan) SetStatus(status string) error {
	if p.Terminal() {
		return ErrPlanFinal
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}
