package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/motioncam/internal/detector"
)

// maxDetectBody bounds the size of a detection request.
const maxDetectBody = 32 << 20

// DetectHandler runs one-shot detections over posted frames.
type DetectHandler struct {
	options detector.Options
}

// NewDetectHandler creates a DetectHandler that analyzes with opts.
func NewDetectHandler(opts detector.Options) *DetectHandler {
	return &DetectHandler{options: opts}
}

// ServeHTTP handles POST /api/detect. Detection failures are part of the
// result body and still answer 200; only an unreadable body is a 400.
func (h *DetectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req detector.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDetectBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	writeJSON(w, http.StatusOK, detector.Analyze(req, h.options))
}
