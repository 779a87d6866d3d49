package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/growthkit/leadflow/internal/entity"
	"github.com/growthkit/leadflow/internal/infra/http/middleware"
	"github.com/growthkit/leadflow/internal/usecase"
)

// DiscoveryHandler exposes the discovery workflow's checkpoints: each
// blocking approval point becomes a pending object the client resumes with
// a distinct confirm call.
type DiscoveryHandler struct {
	Workflow *usecase.DiscoveryWorkflow
}

func NewDiscoveryHandler(workflow *usecase.DiscoveryWorkflow) *DiscoveryHandler {
	return &DiscoveryHandler{Workflow: workflow}
}

func (h *DiscoveryHandler) Routes(r chi.Router) {
	r.Post("/criteria", h.SubmitCriteria)
	r.Post("/criteria/confirm", h.ConfirmCriteria)
	r.Post("/search", h.Search)
	r.Get("/review", h.Review)
	r.Post("/review/{reviewID}/approve", h.Approve)
	r.Post("/review/{reviewID}/reject", h.Reject)
	r.Post("/cancel", h.Cancel)
	r.Post("/reenter", h.Reenter)
	r.Get("/state", h.State)
}

func (h *DiscoveryHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"state": h.Workflow.State()})
}

func (h *DiscoveryHandler) SubmitCriteria(w http.ResponseWriter, r *http.Request) {
	var criteria entity.SearchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_JSON", Message: "invalid JSON"})
		return
	}

	plan, err := h.Workflow.SubmitCriteria(criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *DiscoveryHandler) ConfirmCriteria(w http.ResponseWriter, r *http.Request) {
	if err := h.Workflow.ConfirmCriteria(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": h.Workflow.State()})
}

func (h *DiscoveryHandler) Search(w http.ResponseWriter, r *http.Request) {
	review, err := h.Workflow.Search(r.Context())
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("search")
		}
		writeError(w, err)
		return
	}

	middleware.RecordLeadsPresented(len(review.Leads))
	writeJSON(w, http.StatusOK, review)
}

func (h *DiscoveryHandler) Review(w http.ResponseWriter, r *http.Request) {
	review, ok := h.Workflow.Review()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "NO_REVIEW", Message: "no candidate review in flight"})
		return
	}
	writeJSON(w, http.StatusOK, review)
}

type approveRequest struct {
	LeadIDs []string `json:"lead_ids,omitempty"` // empty approves the whole list
}

func (h *DiscoveryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if r.Body != nil {
		// An empty body is a bulk approval.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	payload, err := h.Workflow.Approve(r.Context(), chi.URLParam(r, "reviewID"), req.LeadIDs)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("handoff")
		}
		writeError(w, err)
		return
	}

	middleware.RecordHandoff()
	writeJSON(w, http.StatusOK, payload)
}

func (h *DiscoveryHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.Workflow.Reject(chi.URLParam(r, "reviewID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": h.Workflow.State()})
}

func (h *DiscoveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.Workflow.Cancel()
	writeJSON(w, http.StatusOK, map[string]string{"state": h.Workflow.State()})
}

func (h *DiscoveryHandler) Reenter(w http.ResponseWriter, r *http.Request) {
	if err := h.Workflow.Reenter(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": h.Workflow.State()})
}
