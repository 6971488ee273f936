package handler

import (
	"encoding/json"
	"net/http"

	"plantmatch/internal/model"
	"plantmatch/internal/service"
	"plantmatch/internal/transport/rest/middleware"
)

// LeadHandler handles lead capture endpoints
type LeadHandler struct {
	leadSvc *service.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadSvc *service.LeadService) *LeadHandler {
	return &LeadHandler{leadSvc: leadSvc}
}

// Submit handles POST /v1/leads
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub model.LeadSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fieldErrors, err := h.leadSvc.Submit(r.Context(), middleware.GetVisitorID(r.Context()), &sub)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": fieldErrors,
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// List handles GET /v1/leads (host only)
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leadSvc.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leads": leads,
		"count": len(leads),
	})
}
