package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// HandoffPayload is the one-way transfer from discovery to outreach:
// the approved leads plus the queries that produced them, for traceability.
type HandoffPayload struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Leads     []Lead    `json:"leads"`
	Queries   []string  `json:"queries"`
	CreatedAt time.Time `json:"created_at"`
}

func NewHandoffPayload(sessionID string, leads []Lead, queries []string) (*HandoffPayload, error) {
	if len(leads) == 0 {
		return nil, errors.New("handoff requires at least one approved lead")
	}
	for _, lead := range leads {
		if lead.Status != LeadStatusApproved {
			return nil, errors.New("handoff accepts only approved leads")
		}
		if lead.SourceURL == "" {
			return nil, ErrMissingSourceURL
		}
	}

	return &HandoffPayload{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Leads:     leads,
		Queries:   queries,
		CreatedAt: time.Now(),
	}, nil
}
