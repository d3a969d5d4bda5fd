package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cortexai/roster/internal/agent"
	"github.com/cortexai/roster/internal/dispatch"
	"github.com/cortexai/roster/internal/llm"
	"github.com/cortexai/roster/internal/models"
)

// ToolsHandler lists the catalog and runs tools directly against the
// session store, bypassing the model.
type ToolsHandler struct {
	dispatcher *dispatch.Dispatcher
	sessions   *SessionManager
}

func NewToolsHandler(d *dispatch.Dispatcher, sessions *SessionManager) *ToolsHandler {
	return &ToolsHandler{dispatcher: d, sessions: sessions}
}

// List handles GET /api/v1/tools
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog := h.dispatcher.Catalog().Tools()
	infos := make([]models.ToolInfo, 0, len(catalog))
	for _, t := range catalog {
		infos = append(infos, models.ToolInfo{
			Name:        string(t.Name),
			Description: t.Description,
			Parameters:  t.Parameters,
			InputSchema: t.InputSchema,
		})
	}
	models.WriteJSON(w, http.StatusOK, models.ToolsResponse{Status: "success", Tools: infos})
}

// Call handles POST /api/v1/tools/{name}. The body is the argument object.
// Invocation failures come back as 422 with the failure in the outcome;
// domain statuses such as not_found are successful calls.
func (h *ToolsHandler) Call(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := h.dispatcher.Catalog().Lookup(name); !ok {
		models.WriteError(w, http.StatusNotFound, "unknown tool: "+name)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, models.MaxBodyBytes))
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "failed to read request body: "+err.Error())
		return
	}
	if !json.Valid(body) {
		models.WriteError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	call := llm.ToolCall{ID: "http_" + uuid.NewString(), Name: name, Arguments: string(body)}

	var out dispatch.Outcome
	err = h.sessions.Do(func(s *agent.Session) error {
		ctx := dispatch.WithSessionID(r.Context(), s.ID)
		var derr error
		out, derr = h.dispatcher.Dispatch(ctx, s.Store(), call)
		return derr
	})
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "tool dispatch failed: "+err.Error())
		return
	}

	if !out.OK() {
		code := http.StatusUnprocessableEntity
		if out.Failure != nil && out.Failure.Kind == dispatch.HandlerFailure {
			code = http.StatusInternalServerError
		}
		models.WriteJSON(w, code, models.ToolCallResponse{Status: "error", Outcome: out})
		return
	}
	models.WriteJSON(w, http.StatusOK, models.ToolCallResponse{Status: "success", Outcome: out})
}
