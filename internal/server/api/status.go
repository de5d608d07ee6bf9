package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/motioncam/internal/store"
)

// Toggle is the part of the watch loop the status endpoint controls.
type Toggle interface {
	IsEnabled() bool
	SetEnabled(enabled bool)
	LastEvent() *store.Event
}

// StatusHandler reports and switches the detection state.
type StatusHandler struct {
	toggle Toggle
}

// NewStatusHandler creates a StatusHandler for t.
func NewStatusHandler(t Toggle) *StatusHandler {
	return &StatusHandler{toggle: t}
}

type statusResponse struct {
	Enabled   bool         `json:"enabled"`
	LastEvent *store.Event `json:"last_event"`
}

type updateStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and PUT /api/status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.toggle.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Enabled:   h.toggle.IsEnabled(),
		LastEvent: h.toggle.LastEvent(),
	})
}
