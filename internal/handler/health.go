package handler

import (
	"net/http"
	"strconv"

	"github.com/cortexai/roster/internal/models"
)

const version = "1.0.0"

// HealthHandler handles GET /health
type HealthHandler struct {
	sessions     *SessionManager
	modelEnabled bool
}

func NewHealthHandler(sessions *SessionManager, modelEnabled bool) *HealthHandler {
	return &HealthHandler{sessions: sessions, modelEnabled: modelEnabled}
}

// Health reports the server as healthy while a session exists. A missing
// model disables turns only, so it is reported but does not degrade.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	status, code := "healthy", http.StatusOK

	if h.modelEnabled {
		checks["model"] = "ok"
	} else {
		checks["model"] = "disabled"
	}

	if s, _ := h.sessions.Current(); s != nil {
		checks["session"] = "ok"
		checks["people"] = strconv.Itoa(s.Store().People().Len())
	} else {
		checks["session"] = "unavailable"
		status, code = "degraded", http.StatusServiceUnavailable
	}

	models.WriteJSON(w, code, models.HealthResponse{
		Status:  status,
		Version: version,
		Checks:  checks,
	})
}
