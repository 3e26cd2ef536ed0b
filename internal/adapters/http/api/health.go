package api

import (
	"net/http"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	status StatusProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(status StatusProvider) *HealthHandler {
	return &HealthHandler{status: status}
}

// HandleHealth handles GET /healthz. It answers 503 while the latest pass
// failed and 200 otherwise, including before the first pass.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	st := h.status.Status()
	code := http.StatusOK
	if !st.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}
