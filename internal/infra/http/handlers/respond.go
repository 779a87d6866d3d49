package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/growthkit/leadflow/internal/usecase"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps workflow errors to HTTP statuses. Capability failures are
// relayed verbatim; everything else carries its domain code.
func writeError(w http.ResponseWriter, err error) {
	if domainErr, ok := err.(*usecase.DomainError); ok {
		status := http.StatusBadRequest
		switch domainErr.Code {
		case usecase.CodeMissingApproval:
			status = http.StatusForbidden
		case usecase.CodeInvalidState, usecase.CodeUnresolvedTarget:
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Code: domainErr.Code, Message: domainErr.Message})
		return
	}

	if techErr, ok := err.(*usecase.TechnicalError); ok {
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: techErr.Code, Message: techErr.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: err.Error()})
}
