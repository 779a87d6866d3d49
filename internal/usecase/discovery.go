package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/growthkit/leadflow/internal/entity"
)

// Discovery workflow states.
const (
	StateClarifyingCriteria = "CLARIFYING_CRITERIA"
	StateSearching          = "SEARCHING"
	StateValidating         = "VALIDATING"
	StateAwaitingApproval   = "AWAITING_APPROVAL"
	StateHandedOff          = "HANDED_OFF"
)

const (
	minCandidatesPerRound = 5
	maxCandidatesPerRound = 10
	maxSearchRounds       = 3
)

// LeadParser turns raw search results into candidate leads. It is an opaque
// collaborator: the workflow never invents leads a parser did not produce.
type LeadParser interface {
	ParseCandidates(ctx context.Context, results []SearchResult) ([]entity.Lead, error)
}

// CriteriaPlan summarizes the confirmed-pending search plan shown to the user.
type CriteriaPlan struct {
	Criteria entity.SearchCriteria `json:"criteria"`
	Queries  []string              `json:"queries"`
}

// CandidateReview is the approval checkpoint payload: the validated candidate
// table plus everything dropped along the way, keyed by a review id the
// caller must quote back to approve.
type CandidateReview struct {
	ReviewID string        `json:"review_id"`
	Leads    []entity.Lead `json:"leads"`
	Dropped  []DroppedLead `json:"dropped"`
}

// DiscoveryWorkflow sequences criteria clarification, search, validation,
// human approval and handoff. One instance serves one session, shared across
// request goroutines, so a mutex serializes every entry point; capability
// calls block under it.
type DiscoveryWorkflow struct {
	session   *Session
	search    SearchProvider
	parser    LeadParser
	publisher HandoffPublisher

	mu       sync.Mutex
	state    string
	criteria entity.SearchCriteria
	queries  []string
	review   *CandidateReview
}

func NewDiscoveryWorkflow(session *Session, search SearchProvider, parser LeadParser, publisher HandoffPublisher) *DiscoveryWorkflow {
	return &DiscoveryWorkflow{
		session:   session,
		search:    search,
		parser:    parser,
		publisher: publisher,
		state:     StateClarifyingCriteria,
	}
}

func (w *DiscoveryWorkflow) State() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *DiscoveryWorkflow) Review() (*CandidateReview, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.review == nil {
		return nil, false
	}
	return w.review, true
}

// SubmitCriteria validates the profile and returns the search plan awaiting
// explicit confirmation. Incomplete criteria keep the workflow here and name
// the missing fields; nothing is ever assumed silently.
func (w *DiscoveryWorkflow) SubmitCriteria(criteria entity.SearchCriteria) (*CriteriaPlan, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateClarifyingCriteria {
		return nil, invalidState(fmt.Sprintf("cannot submit criteria in state %s", w.state))
	}

	if errs := ValidateCriteria(criteria); len(errs) > 0 {
		fields := make([]string, len(errs))
		for i, e := range errs {
			fields[i] = e.Field
		}
		return nil, incompleteInput("criteria incomplete, missing: " + strings.Join(fields, ", "))
	}

	w.criteria = criteria
	return &CriteriaPlan{Criteria: criteria, Queries: buildQueries(criteria, 0)}, nil
}

// ConfirmCriteria is the explicit user confirmation that gates searching.
func (w *DiscoveryWorkflow) ConfirmCriteria() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateClarifyingCriteria {
		return invalidState(fmt.Sprintf("cannot confirm criteria in state %s", w.state))
	}
	if len(w.criteria.MissingFields()) > 0 || len(w.criteria.Roles) == 0 {
		return incompleteInput("no complete criteria submitted yet")
	}
	w.state = StateSearching
	return nil
}

// Search runs the confirmed plan: queries the search capability, parses and
// validates candidates, and ends blocked at the approval checkpoint. When a
// round yields fewer than the minimum it issues follow-up query variants, up
// to the round limit; it never pads the list with fabricated leads.
func (w *DiscoveryWorkflow) Search(ctx context.Context) (*CandidateReview, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSearching {
		return nil, invalidState(fmt.Sprintf("cannot search in state %s", w.state))
	}

	var candidates []entity.Lead
	var kept []entity.Lead
	var dropped []DroppedLead
	w.queries = nil

	for round := 0; round < maxSearchRounds; round++ {
		for _, query := range buildQueries(w.criteria, round) {
			results, err := w.search.Search(ctx, SearchQuery{Keywords: query, Filters: w.criteria.Exclusions})
			if err != nil {
				return nil, capabilityFailure("search: " + err.Error())
			}
			w.queries = append(w.queries, query)

			parsed, err := w.parser.ParseCandidates(ctx, results)
			if err != nil {
				return nil, capabilityFailure("parse candidates: " + err.Error())
			}
			candidates = append(candidates, parsed...)
		}

		w.state = StateValidating
		kept, dropped = validateCandidates(candidates, w.criteria)
		if len(kept) >= minCandidatesPerRound {
			break
		}
		w.state = StateSearching
	}

	if len(kept) > maxCandidatesPerRound {
		for _, lead := range kept[maxCandidatesPerRound:] {
			dropped = append(dropped, DroppedLead{lead, "over the presentation limit, not shown"})
		}
		kept = kept[:maxCandidatesPerRound]
	}

	w.review = &CandidateReview{
		ReviewID: uuid.New().String(),
		Leads:    kept,
		Dropped:  dropped,
	}
	w.state = StateAwaitingApproval
	return w.review, nil
}

// Approve records the user's decision for the quoted review, publishes the
// handoff payload for the chosen leads and finishes the run. An empty id set
// approves the whole list.
func (w *DiscoveryWorkflow) Approve(ctx context.Context, reviewID string, leadIDs []string) (*entity.HandoffPayload, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateAwaitingApproval {
		return nil, invalidState(fmt.Sprintf("cannot approve in state %s", w.state))
	}
	if w.review == nil || w.review.ReviewID != reviewID {
		return nil, missingApproval("approval does not reference the presented review")
	}

	chosen := pickLeads(w.review.Leads, leadIDs)
	if len(chosen) == 0 {
		return nil, incompleteInput("no presented lead matches the approved ids")
	}

	for i := range chosen {
		if err := chosen[i].AdvanceStatus(entity.LeadStatusApproved); err != nil {
			return nil, err
		}
	}

	if _, err := w.session.RecordApproval(chosen); err != nil {
		return nil, err
	}

	payload, err := entity.NewHandoffPayload(w.session.ID, chosen, w.queries)
	if err != nil {
		return nil, err
	}

	if err := w.publisher.PublishHandoff(ctx, *payload); err != nil {
		return nil, capabilityFailure("publish handoff: " + err.Error())
	}

	w.state = StateHandedOff
	return payload, nil
}

// Reject discards the presented candidates without side effects.
func (w *DiscoveryWorkflow) Reject(reviewID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateAwaitingApproval {
		return invalidState(fmt.Sprintf("cannot reject in state %s", w.state))
	}
	if w.review == nil || w.review.ReviewID != reviewID {
		return missingApproval("rejection does not reference the presented review")
	}
	w.review = nil
	w.state = StateClarifyingCriteria
	return nil
}

// Cancel aborts whatever is in flight and returns to criteria clarification.
// Nothing already handed off is undone.
func (w *DiscoveryWorkflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.review = nil
	w.queries = nil
	w.state = StateClarifyingCriteria
}

// Reenter starts a new iteration after a completed handoff.
func (w *DiscoveryWorkflow) Reenter() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateHandedOff {
		return invalidState(fmt.Sprintf("cannot re-enter in state %s", w.state))
	}
	w.review = nil
	w.queries = nil
	w.state = StateClarifyingCriteria
	return nil
}

func pickLeads(leads []entity.Lead, ids []string) []entity.Lead {
	if len(ids) == 0 {
		return append([]entity.Lead(nil), leads...)
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var chosen []entity.Lead
	for _, lead := range leads {
		if wanted[lead.ID] {
			chosen = append(chosen, lead)
		}
	}
	return chosen
}

// buildQueries derives search queries from the profile. Later rounds vary
// the phrasing to widen recall when the first pass comes up short.
func buildQueries(criteria entity.SearchCriteria, round int) []string {
	var queries []string
	for _, role := range criteria.Roles {
		parts := []string{role, criteria.Industry, criteria.Geography}
		if criteria.CompanySize != "" {
			parts = append(parts, criteria.CompanySize)
		}
		switch round {
		case 1:
			parts = append(parts, "contact email")
		case 2:
			parts = append(parts, "linkedin profile")
		}
		queries = append(queries, strings.Join(parts, " "))
	}
	return queries
}
