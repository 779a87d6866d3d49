package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/growthkit/leadflow/internal/entity"
)

// Outreach workflow states.
const (
	StateResolvingDatabase    = "RESOLVING_DATABASE"
	StateDeduping             = "DEDUPING"
	StateCapturing            = "CAPTURING"
	StateDraftingSend         = "DRAFTING_SEND"
	StateAwaitingSendApproval = "AWAITING_SEND_APPROVAL"
	StateDispatching          = "DISPATCHING"
	StateReporting            = "REPORTING"
)

// Property names used when the user supplies no mapping of their own.
var defaultPropertyNames = map[string]string{
	"name":       "Name",
	"company":    "Company",
	"role":       "Role",
	"email":      "Email",
	"source_url": "Source URL",
	"status":     "Status",
	"notes":      "Notes",
}

// CaptureResult reports one lead's independent create-or-update outcome.
type CaptureResult struct {
	LeadID   string `json:"lead_id"`
	RecordID string `json:"record_id,omitempty"`
	Action   string `json:"action"` // created, updated
	Error    string `json:"error,omitempty"`
}

// DraftSendInput is the user-supplied material for a send plan. Recipients
// may be given directly or selected from already-captured leads by id.
type DraftSendInput struct {
	From        string     `json:"from"`
	Recipients  []string   `json:"recipients,omitempty"`
	LeadIDs     []string   `json:"lead_ids,omitempty"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	Mode        string     `json:"mode"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// DeliveryReport aggregates per-recipient outcomes for a dispatched plan.
type DeliveryReport struct {
	PlanID    string           `json:"plan_id"`
	Items     []DeliveryStatus `json:"items"`
	Delivered int              `json:"delivered"`
	Failed    int              `json:"failed"`
}

// dispatchPayload is the exact shape an approval is recorded against. Any
// drift between approval and dispatch invalidates the approval.
type dispatchPayload struct {
	From        string     `json:"from"`
	Recipients  []string   `json:"recipients"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	Mode        string     `json:"mode"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// OutreachWorkflow owns the authoritative lead copies after handoff, the
// confirmed database target and every send plan. One instance is shared by
// the HTTP handlers, the queue worker and the report worker, so a single
// mutex serializes every entry point; capability calls block under it, which
// keeps leads captured sequentially with independent success or failure.
type OutreachWorkflow struct {
	session  *Session
	store    LeadStore
	delivery EmailDelivery

	mu        sync.Mutex
	state     string
	listed    []entity.DatabaseTarget
	leads     map[string]*entity.Lead
	order     []string          // capture order of lead ids
	approvals map[string]string // plan id -> approval id
	mapping   map[string]string
}

func NewOutreachWorkflow(session *Session, store LeadStore, delivery EmailDelivery) *OutreachWorkflow {
	return &OutreachWorkflow{
		session:   session,
		store:     store,
		delivery:  delivery,
		state:     StateResolvingDatabase,
		leads:     make(map[string]*entity.Lead),
		approvals: make(map[string]string),
	}
}

func (w *OutreachWorkflow) State() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SetPropertyMapping overrides the default lead-field to store-property
// mapping. Keys are the lead field names from defaultPropertyNames.
func (w *OutreachWorkflow) SetPropertyMapping(mapping map[string]string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mapping = mapping
}

// ReceiveHandoff takes ownership of the approved leads from discovery.
func (w *OutreachWorkflow) ReceiveHandoff(payload entity.HandoffPayload) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range payload.Leads {
		lead := payload.Leads[i]
		if lead.Status != entity.LeadStatusApproved {
			return &DomainError{Code: CodeValidationFailure, Message: fmt.Sprintf("handoff lead %q is not approved", lead.Name)}
		}
		if _, exists := w.leads[lead.ID]; !exists {
			w.order = append(w.order, lead.ID)
		}
		w.leads[lead.ID] = &lead
	}
	return nil
}

func (w *OutreachWorkflow) Lead(id string) (entity.Lead, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	lead, ok := w.leads[id]
	if !ok {
		return entity.Lead{}, false
	}
	return *lead, true
}

func (w *OutreachWorkflow) Leads() []entity.Lead {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]entity.Lead, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, *w.leads[id])
	}
	return out
}

// ListDatabases returns the candidate targets for user confirmation. When a
// target is already cached for the session it is returned alone and no
// listing call is made.
func (w *OutreachWorkflow) ListDatabases(ctx context.Context) ([]entity.DatabaseTarget, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if target, ok := w.session.DatabaseTarget(); ok {
		return []entity.DatabaseTarget{*target}, nil
	}

	targets, err := w.store.ListDatabases(ctx)
	if err != nil {
		return nil, capabilityFailure("list databases: " + err.Error())
	}
	w.listed = targets
	return targets, nil
}

// ConfirmDatabase caches exactly one listed target for the session.
func (w *OutreachWorkflow) ConfirmDatabase(dbID string) (*entity.DatabaseTarget, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if target, ok := w.session.DatabaseTarget(); ok {
		if target.ID == dbID {
			return target, nil
		}
		return nil, invalidState(fmt.Sprintf("session already confirmed database %q", target.ID))
	}

	for _, candidate := range w.listed {
		if candidate.ID == dbID {
			w.session.ConfirmDatabaseTarget(candidate)
			w.state = StateCapturing
			return &candidate, nil
		}
	}
	return nil, unresolvedTarget(fmt.Sprintf("database %q was not among the listed candidates", dbID))
}

// Capture writes each received lead to the confirmed target, one at a time.
// A store-side duplicate turns the write into an update; so does a lead that
// already carries a record id. Failures are collected per lead and never
// abort the rest of the batch.
func (w *OutreachWorkflow) Capture(ctx context.Context) ([]CaptureResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	target, ok := w.session.DatabaseTarget()
	if !ok {
		return nil, unresolvedTarget("no confirmed database target for this session")
	}

	results := make([]CaptureResult, 0, len(w.order))
	for _, id := range w.order {
		lead := w.leads[id]
		if lead.Status == entity.LeadStatusRejected {
			continue
		}
		results = append(results, w.captureOne(ctx, target.ID, lead))
	}

	w.state = StateCapturing
	return results, nil
}

func (w *OutreachWorkflow) captureOne(ctx context.Context, dbID string, lead *entity.Lead) CaptureResult {
	result := CaptureResult{LeadID: lead.ID}
	properties := w.buildProperties(lead)

	pageID := lead.RecordID
	if pageID == "" {
		w.state = StateDeduping
		found, err := w.findDuplicate(ctx, dbID, lead)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		pageID = found
	}

	if pageID != "" {
		if err := w.store.UpdatePage(ctx, pageID, properties); err != nil {
			result.Error = capabilityFailure("update page: " + err.Error()).Error()
			return result
		}
		result.Action = "updated"
	} else {
		created, err := w.store.CreatePage(ctx, dbID, properties)
		if err != nil {
			result.Error = capabilityFailure("create page: " + err.Error()).Error()
			return result
		}
		pageID = created
		result.Action = "created"
	}

	lead.RecordID = pageID
	if lead.Status != entity.LeadStatusStored && lead.Status != entity.LeadStatusContacted {
		if err := lead.AdvanceStatus(entity.LeadStatusStored); err != nil {
			result.Error = err.Error()
			return result
		}
	}
	result.RecordID = pageID
	return result
}

// findDuplicate asks the store for an existing record with the same match
// key. The store-side verdict wins over anything decided during discovery.
func (w *OutreachWorkflow) findDuplicate(ctx context.Context, dbID string, lead *entity.Lead) (string, error) {
	if email := entity.NormalizeEmail(lead.Email); email != "" {
		records, err := w.store.QueryDatabase(ctx, dbID, StoreFilter{Property: w.propertyName("email"), Equals: email})
		if err != nil {
			return "", capabilityFailure("duplicate query: " + err.Error())
		}
		if len(records) > 0 {
			return records[0].PageID, nil
		}
		return "", nil
	}

	records, err := w.store.QueryDatabase(ctx, dbID, StoreFilter{Property: w.propertyName("name"), Equals: lead.Name})
	if err != nil {
		return "", capabilityFailure("duplicate query: " + err.Error())
	}
	for _, record := range records {
		company := record.Properties[w.propertyName("company")]
		if entity.NormalizeText(company) == entity.NormalizeText(lead.Company) {
			return record.PageID, nil
		}
	}
	return "", nil
}

func (w *OutreachWorkflow) propertyName(field string) string {
	if w.mapping != nil {
		if name, ok := w.mapping[field]; ok {
			return name
		}
	}
	return defaultPropertyNames[field]
}

func (w *OutreachWorkflow) buildProperties(lead *entity.Lead) map[string]string {
	return map[string]string{
		w.propertyName("name"):       lead.Name,
		w.propertyName("company"):    lead.Company,
		w.propertyName("role"):       lead.Role,
		w.propertyName("email"):      lead.Email,
		w.propertyName("source_url"): lead.SourceURL,
		w.propertyName("status"):     lead.Status,
		w.propertyName("notes"):      lead.Notes,
	}
}

// DraftSend composes a plan from user-supplied material and presents it.
// Recipients given as lead ids resolve to the captured leads' emails; the
// workflow never auto-populates a sender or a recipient list.
func (w *OutreachWorkflow) DraftSend(input DraftSendInput) (*entity.SendPlan, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	recipients := append([]string(nil), input.Recipients...)
	var leadIDs []string
	for _, id := range input.LeadIDs {
		lead, ok := w.leads[id]
		if !ok {
			return nil, incompleteInput(fmt.Sprintf("lead %q is not held by this workflow", id))
		}
		if lead.Email == "" {
			return nil, incompleteInput(fmt.Sprintf("lead %q has no email address", lead.Name))
		}
		recipients = append(recipients, lead.Email)
		leadIDs = append(leadIDs, id)
	}

	plan, err := entity.NewSendPlan(input.From, recipients, input.Subject, input.Body, input.Mode)
	if err != nil {
		return nil, incompleteInput(err.Error())
	}
	plan.ScheduledAt = input.ScheduledAt
	plan.LeadIDs = leadIDs

	if err := plan.SetStatus(entity.PlanStatusPresented); err != nil {
		return nil, err
	}
	w.session.PutPlan(plan)
	w.state = StateAwaitingSendApproval
	return plan, nil
}

// ApproveSend records explicit approval for the exact presented plan. Every
// plan needs its own approval; nothing carries over from earlier plans.
func (w *OutreachWorkflow) ApproveSend(planID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	plan, ok := w.session.Plan(planID)
	if !ok {
		return missingApproval(fmt.Sprintf("no presented plan %q", planID))
	}
	if plan.Status != entity.PlanStatusPresented {
		return invalidState(fmt.Sprintf("plan %q is %s, not awaiting approval", planID, plan.Status))
	}

	approvalID, err := w.session.RecordApproval(planPayload(plan))
	if err != nil {
		return err
	}
	w.approvals[planID] = approvalID
	return plan.SetStatus(entity.PlanStatusApproved)
}

// Dispatch invokes the delivery capability for an approved plan. A missing
// or stale approval is an invariant violation: the call refuses up front.
func (w *OutreachWorkflow) Dispatch(ctx context.Context, planID string) (*entity.SendPlan, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	plan, ok := w.session.Plan(planID)
	if !ok {
		return nil, missingApproval(fmt.Sprintf("no plan %q", planID))
	}

	approvalID, ok := w.approvals[planID]
	if !ok || !w.session.Approved(approvalID, planPayload(plan)) {
		return nil, missingApproval("dispatch refused: no recorded approval for this exact plan")
	}
	if plan.Status != entity.PlanStatusApproved {
		return nil, invalidState(fmt.Sprintf("plan %q is %s, not approved", planID, plan.Status))
	}

	w.state = StateDispatching
	switch plan.Mode {
	case entity.SendModeSingle:
		sendID, err := w.delivery.SendEmail(ctx, EmailMessage{
			From:        plan.From,
			To:          plan.Recipients,
			Subject:     plan.Subject,
			Body:        plan.Body,
			ScheduledAt: plan.ScheduledAt,
		})
		if err != nil {
			return nil, capabilityFailure("send email: " + err.Error())
		}
		plan.SendIDs = []string{sendID}
	case entity.SendModeBatch:
		msgs := make([]EmailMessage, len(plan.Recipients))
		for i, recipient := range plan.Recipients {
			msgs[i] = EmailMessage{
				From:        plan.From,
				To:          []string{recipient},
				Subject:     plan.Subject,
				Body:        plan.Body,
				ScheduledAt: plan.ScheduledAt,
			}
		}
		sendIDs, err := w.delivery.SendBatch(ctx, msgs)
		if err != nil {
			return nil, capabilityFailure("send batch: " + err.Error())
		}
		plan.SendIDs = sendIDs
	}

	return plan, plan.SetStatus(entity.PlanStatusDispatched)
}

// UpdateDispatch reschedules a dispatched email by its provider send id.
func (w *OutreachWorkflow) UpdateDispatch(ctx context.Context, sendID string, changes EmailChanges) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.session.PlanBySendID(sendID); !ok {
		return invalidState(fmt.Sprintf("send id %q does not belong to a dispatched plan", sendID))
	}
	if err := w.delivery.UpdateEmail(ctx, sendID, changes); err != nil {
		return capabilityFailure("update email: " + err.Error())
	}
	return nil
}

// CancelDispatch aborts a dispatched email before delivery.
func (w *OutreachWorkflow) CancelDispatch(ctx context.Context, sendID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	plan, ok := w.session.PlanBySendID(sendID)
	if !ok {
		return invalidState(fmt.Sprintf("send id %q does not belong to a dispatched plan", sendID))
	}
	if err := w.delivery.CancelEmail(ctx, sendID); err != nil {
		return capabilityFailure("cancel email: " + err.Error())
	}
	if len(plan.SendIDs) == 1 {
		return plan.SetStatus(entity.PlanStatusCanceled)
	}
	return nil
}

// DispatchStatus retrieves the provider-side status of one send.
func (w *OutreachWorkflow) DispatchStatus(ctx context.Context, sendID string) (*DeliveryStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	status, err := w.delivery.GetEmail(ctx, sendID)
	if err != nil {
		return nil, capabilityFailure("get email: " + err.Error())
	}
	return status, nil
}

// Dispatches lists every send the delivery provider knows about.
func (w *OutreachWorkflow) Dispatches(ctx context.Context) ([]DeliveryStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	statuses, err := w.delivery.ListEmails(ctx)
	if err != nil {
		return nil, capabilityFailure("list emails: " + err.Error())
	}
	return statuses, nil
}

// Attachments lists delivery artifacts held by the provider.
func (w *OutreachWorkflow) Attachments(ctx context.Context) ([]Attachment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	attachments, err := w.delivery.ListAttachments(ctx)
	if err != nil {
		return nil, capabilityFailure("list attachments: " + err.Error())
	}
	return attachments, nil
}

func (w *OutreachWorkflow) Attachment(ctx context.Context, id string) (*Attachment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	attachment, err := w.delivery.GetAttachment(ctx, id)
	if err != nil {
		return nil, capabilityFailure("get attachment: " + err.Error())
	}
	return attachment, nil
}

// Report collects per-recipient delivery outcomes for a dispatched plan.
// Individual status failures are reported inline, not fatal.
func (w *OutreachWorkflow) Report(ctx context.Context, planID string) (*DeliveryReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.report(ctx, planID)
}

func (w *OutreachWorkflow) report(ctx context.Context, planID string) (*DeliveryReport, error) {
	plan, ok := w.session.Plan(planID)
	if !ok {
		return nil, invalidState(fmt.Sprintf("no plan %q", planID))
	}
	if len(plan.SendIDs) == 0 {
		return nil, invalidState(fmt.Sprintf("plan %q was not dispatched", planID))
	}

	w.state = StateReporting
	report := &DeliveryReport{PlanID: planID}
	for i, sendID := range plan.SendIDs {
		status, err := w.delivery.GetEmail(ctx, sendID)
		if err != nil {
			status = &DeliveryStatus{SendID: sendID, Status: "unknown", Reason: err.Error()}
		}
		if status.Recipient == "" && i < len(plan.Recipients) {
			status.Recipient = plan.Recipients[i]
		}
		report.Items = append(report.Items, *status)
		switch status.Status {
		case "delivered", "sent":
			report.Delivered++
		case "bounced", "failed":
			report.Failed++
		}
	}

	if report.Failed == 0 && report.Delivered == len(plan.SendIDs) {
		_ = plan.SetStatus(entity.PlanStatusDelivered)
	} else if report.Failed == len(plan.SendIDs) {
		_ = plan.SetStatus(entity.PlanStatusFailed)
	}
	return report, nil
}

// FinalizeReports polls delivery once for every dispatched, non-final plan.
// This is the background poller's entry point; it shares the workflow mutex
// so plan state never changes under a concurrent dispatch.
func (w *OutreachWorkflow) FinalizeReports(ctx context.Context) []DeliveryReport {
	w.mu.Lock()
	defer w.mu.Unlock()

	var reports []DeliveryReport
	for _, plan := range w.session.DispatchedPlans() {
		report, err := w.report(ctx, plan.ID)
		if err != nil {
			continue
		}
		reports = append(reports, *report)
	}
	return reports
}

// MarkContacted writes the contacted status back to the originating lead
// records in the store, when the user asks for it after a report.
func (w *OutreachWorkflow) MarkContacted(ctx context.Context, planID string) ([]CaptureResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	plan, ok := w.session.Plan(planID)
	if !ok {
		return nil, invalidState(fmt.Sprintf("no plan %q", planID))
	}

	var results []CaptureResult
	for _, id := range plan.LeadIDs {
		lead, ok := w.leads[id]
		if !ok {
			continue
		}
		result := CaptureResult{LeadID: id, RecordID: lead.RecordID}
		if err := lead.AdvanceStatus(entity.LeadStatusContacted); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		if lead.RecordID != "" {
			if err := w.store.UpdatePage(ctx, lead.RecordID, w.buildProperties(lead)); err != nil {
				result.Error = capabilityFailure("update page: " + err.Error()).Error()
			} else {
				result.Action = "updated"
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func planPayload(plan *entity.SendPlan) dispatchPayload {
	return dispatchPayload{
		From:        plan.From,
		Recipients:  plan.Recipients,
		Subject:     plan.Subject,
		Body:        plan.Body,
		Mode:        plan.Mode,
		ScheduledAt: plan.ScheduledAt,
	}
}
