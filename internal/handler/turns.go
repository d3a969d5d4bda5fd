package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cortexai/roster/internal/agent"
	"github.com/cortexai/roster/internal/models"
	"github.com/cortexai/roster/internal/security"
)

// TurnsHandler handles POST /api/v1/turns
type TurnsHandler struct {
	agent       *agent.Agent
	sessions    *SessionManager
	promptVal   *security.PromptValidator
	piiDetector *security.PIIDetector
	auditLogger *security.AuditLogger
	maxTimeout  int
}

// NewTurnsHandler wires the turn endpoint. piiDetector may be nil to turn
// detection off. maxTimeout is in seconds.
func NewTurnsHandler(
	a *agent.Agent,
	sessions *SessionManager,
	promptVal *security.PromptValidator,
	piiDetector *security.PIIDetector,
	auditLogger *security.AuditLogger,
	maxTimeout int,
) *TurnsHandler {
	return &TurnsHandler{
		agent:       a,
		sessions:    sessions,
		promptVal:   promptVal,
		piiDetector: piiDetector,
		auditLogger: auditLogger,
		maxTimeout:  maxTimeout,
	}
}

func (h *TurnsHandler) Turn(w http.ResponseWriter, r *http.Request) {
	if h.agent == nil {
		models.WriteError(w, http.StatusServiceUnavailable, "language model is not configured")
		return
	}

	var req models.TurnRequest
	if err := models.DecodeJSON(r, &req, false); err != nil {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.SetDefaults(h.maxTimeout)

	s, _ := h.sessions.Current()

	// 1. PII detection
	if found, kw := h.piiDetector.Detect(req.Message); found {
		h.auditLogger.LogTurn(s.ID, req.Message, nil, true, true, 0, "pii detected: "+kw)
		models.WriteError(w, http.StatusBadRequest, "message contains sensitive data", "pii keyword: "+kw)
		return
	}

	// 2. Message validation
	if vr := h.promptVal.Validate(req.Message); !vr.Valid {
		h.auditLogger.LogTurn(s.ID, req.Message, nil, false, false, 0, vr.Message)
		models.WriteError(w, http.StatusBadRequest, "message validation failed", vr.Message)
		return
	}

	// 3. Turn
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(req.Timeout)*time.Second)
	defer cancel()

	start := time.Now()
	var (
		res       *agent.TurnResult
		sessionID string
	)
	err := h.sessions.Do(func(s *agent.Session) error {
		sessionID = s.ID
		var terr error
		res, terr = h.agent.Turn(ctx, s, req.Message)
		return terr
	})
	execMs := time.Since(start).Milliseconds()

	if err != nil {
		h.auditLogger.LogTurn(sessionID, req.Message, nil, true, false, execMs, err.Error())
		writeTurnError(w, err)
		return
	}

	h.auditLogger.LogTurn(sessionID, req.Message, res.ToolsUsed, true, false, execMs, "")
	models.WriteJSON(w, http.StatusOK, models.TurnResponse{
		Status:     "success",
		SessionID:  sessionID,
		Answer:     res.Answer,
		ToolsUsed:  nonNil(res.ToolsUsed),
		Outcomes:   res.Outcomes,
		Iterations: res.Iterations,
	})
}

func writeTurnError(w http.ResponseWriter, err error) {
	var aerr *agent.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		models.WriteError(w, http.StatusGatewayTimeout, "turn timed out")
	case errors.As(err, &aerr) && aerr.Kind == agent.LanguageModelErrorKind:
		models.WriteError(w, http.StatusBadGateway, "language model call failed", aerr.Error())
	default:
		log.Error().Err(err).Msg("turn failed")
		models.WriteError(w, http.StatusInternalServerError, "turn failed", err.Error())
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
