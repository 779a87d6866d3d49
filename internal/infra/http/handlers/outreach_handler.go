package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/growthkit/leadflow/internal/entity"
	"github.com/growthkit/leadflow/internal/infra/http/middleware"
	"github.com/growthkit/leadflow/internal/usecase"
)

// OutreachHandler exposes the outreach workflow: database resolution,
// capture, send plan drafting, approval, dispatch and reporting.
type OutreachHandler struct {
	Workflow *usecase.OutreachWorkflow
}

func NewOutreachHandler(workflow *usecase.OutreachWorkflow) *OutreachHandler {
	return &OutreachHandler{Workflow: workflow}
}

func (h *OutreachHandler) Routes(r chi.Router) {
	r.Get("/databases", h.ListDatabases)
	r.Post("/databases/{dbID}/confirm", h.ConfirmDatabase)
	r.Post("/handoffs", h.ReceiveHandoff)
	r.Post("/capture", h.Capture)
	r.Post("/sendplans", h.DraftSend)
	r.Post("/sendplans/{planID}/approve", h.ApproveSend)
	r.Post("/sendplans/{planID}/dispatch", h.Dispatch)
	r.Get("/sendplans/{planID}/report", h.Report)
	r.Post("/sendplans/{planID}/contacted", h.MarkContacted)
	r.Get("/dispatches", h.Dispatches)
	r.Patch("/dispatches/{sendID}", h.UpdateDispatch)
	r.Post("/dispatches/{sendID}/cancel", h.CancelDispatch)
	r.Get("/dispatches/{sendID}", h.DispatchStatus)
	r.Get("/attachments", h.Attachments)
	r.Get("/attachments/{id}", h.Attachment)
	r.Get("/state", h.State)
}

func (h *OutreachHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"state": h.Workflow.State()})
}

func (h *OutreachHandler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	targets, err := h.Workflow.ListDatabases(r.Context())
	if err != nil {
		middleware.RecordIntegrationError("store")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

func (h *OutreachHandler) ConfirmDatabase(w http.ResponseWriter, r *http.Request) {
	target, err := h.Workflow.ConfirmDatabase(chi.URLParam(r, "dbID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// ReceiveHandoff accepts a handoff payload directly, for deployments that
// skip the queue.
func (h *OutreachHandler) ReceiveHandoff(w http.ResponseWriter, r *http.Request) {
	var payload entity.HandoffPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_JSON", Message: "invalid JSON"})
		return
	}

	if err := h.Workflow.ReceiveHandoff(payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"leads": len(payload.Leads)})
}

func (h *OutreachHandler) Capture(w http.ResponseWriter, r *http.Request) {
	results, err := h.Workflow.Capture(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	for _, result := range results {
		if result.Error != "" {
			middleware.RecordIntegrationError("store")
			continue
		}
		middleware.RecordCaptureWrite(result.Action)
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *OutreachHandler) DraftSend(w http.ResponseWriter, r *http.Request) {
	var input usecase.DraftSendInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_JSON", Message: "invalid JSON"})
		return
	}

	plan, err := h.Workflow.DraftSend(input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *OutreachHandler) ApproveSend(w http.ResponseWriter, r *http.Request) {
	if err := h.Workflow.ApproveSend(chi.URLParam(r, "planID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": entity.PlanStatusApproved})
}

func (h *OutreachHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Workflow.Dispatch(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("delivery")
		}
		writeError(w, err)
		return
	}

	middleware.RecordDispatch(plan.Mode, len(plan.SendIDs))
	writeJSON(w, http.StatusOK, plan)
}

func (h *OutreachHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.Workflow.Report(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *OutreachHandler) MarkContacted(w http.ResponseWriter, r *http.Request) {
	results, err := h.Workflow.MarkContacted(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type updateDispatchRequest struct {
	Changes usecase.EmailChanges `json:"changes"`
}

func (h *OutreachHandler) UpdateDispatch(w http.ResponseWriter, r *http.Request) {
	var req updateDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_JSON", Message: "invalid JSON"})
		return
	}

	if err := h.Workflow.UpdateDispatch(r.Context(), chi.URLParam(r, "sendID"), req.Changes); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *OutreachHandler) CancelDispatch(w http.ResponseWriter, r *http.Request) {
	if err := h.Workflow.CancelDispatch(r.Context(), chi.URLParam(r, "sendID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *OutreachHandler) Dispatches(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Workflow.Dispatches(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *OutreachHandler) DispatchStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Workflow.DispatchStatus(r.Context(), chi.URLParam(r, "sendID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *OutreachHandler) Attachments(w http.ResponseWriter, r *http.Request) {
	attachments, err := h.Workflow.Attachments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attachments)
}

func (h *OutreachHandler) Attachment(w http.ResponseWriter, r *http.Request) {
	attachment, err := h.Workflow.Attachment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attachment)
}
