package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/growthkit/leadflow/internal/entity"
)

func TestNewLeadRequiresSourceURL(t *testing.T) {
	_, err := entity.NewLead("Jane Doe", "CTO", "Acme", "jane@acme.com", "")
	assert.ErrorIs(t, err, entity.ErrMissingSourceURL)

	lead, err := entity.NewLead("Jane Doe", "CTO", "Acme", "jane@acme.com", "https://example.com/jane")
	assert.NoError(t, err)
	assert.Equal(t, entity.LeadStatusProposed, lead.Status)
	assert.NotEmpty(t, lead.ID)
}

func TestNewLeadRequiresNameAndCompany(t *testing.T) {
	_, err := entity.NewLead("", "CTO", "Acme", "", "https://example.com")
	assert.Error(t, err)

	_, err = entity.NewLead("Jane Doe", "CTO", "", "", "https://example.com")
	assert.Error(t, err)
}

func TestMatchKeyPrefersEmail(t *testing.T) {
	a := entity.Lead{Name: "Jane Doe", Company: "Acme", Email: " Jane@Acme.COM "}
	b := entity.Lead{Name: "Different Person", Company: "Other", Email: "jane@acme.com"}
	assert.Equal(t, a.MatchKey(), b.MatchKey())
}

func TestMatchKeyFallsBackToNameCompany(t *testing.T) {
	a := entity.Lead{Name: "Jane  DOE", Company: " Acme Inc "}
	b := entity.Lead{Name: "jane doe", Company: "acme inc"}
	c := entity.Lead{Name: "jane doe", Company: "other inc"}

	assert.Equal(t, a.MatchKey(), b.MatchKey())
	assert.NotEqual(t, a.MatchKey(), c.MatchKey())
}

func TestAdvanceStatusForwardOnly(t *testing.T) {
	lead := entity.Lead{Status: entity.LeadStatusProposed}

	assert.NoError(t, lead.AdvanceStatus(entity.LeadStatusApproved))
	assert.NoError(t, lead.AdvanceStatus(entity.LeadStatusStored))
	assert.NoError(t, lead.AdvanceStatus(entity.LeadStatusContacted))

	err := lead.AdvanceStatus(entity.LeadStatusStored)
	assert.ErrorIs(t, err, entity.ErrStatusRegression)
	assert.Equal(t, entity.LeadStatusContacted, lead.Status)
}

func TestRejectionIsTerminal(t *testing.T) {
	lead := entity.Lead{Status: entity.LeadStatusStored}

	assert.NoError(t, lead.AdvanceStatus(entity.LeadStatusRejected))
	assert.ErrorIs(t, lead.AdvanceStatus(entity.LeadStatusContacted), entity.ErrLeadRejected)
	assert.ErrorIs(t, lead.AdvanceStatus(entity.LeadStatusRejected), entity.ErrLeadRejected)
}

func TestHandoffPayloadAcceptsOnlyApprovedLeads(t *testing.T) {
	approved := entity.Lead{
		ID: "l1", Name: "Jane Doe", Company: "Acme",
		SourceURL: "https://example.com/jane", Status: entity.LeadStatusApproved,
	}
	proposed := approved
	proposed.Status = entity.LeadStatusProposed

	_, err := entity.NewHandoffPayload("s1", []entity.Lead{proposed}, nil)
	assert.Error(t, err)

	_, err = entity.NewHandoffPayload("s1", nil, nil)
	assert.Error(t, err)

	payload, err := entity.NewHandoffPayload("s1", []entity.Lead{approved}, []string{"cto acme"})
	assert.NoError(t, err)
	assert.Len(t, payload.Leads, 1)
	assert.Equal(t, []string{"cto acme"}, payload.Queries)
}
