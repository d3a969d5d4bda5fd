package handler

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/cortexai/roster/internal/agent"
	"github.com/cortexai/roster/internal/models"
	"github.com/cortexai/roster/internal/store"
)

// SeedFunc builds the store a fresh session starts from.
type SeedFunc func() (*store.Context, error)

// SessionManager owns the server's single conversation. Turns and direct
// tool calls run under its lock so they never interleave on the store.
type SessionManager struct {
	mu      sync.Mutex
	prompt  string
	seed    SeedFunc
	session *agent.Session
	seeded  bool
}

// NewSessionManager starts the first session, seeded when seed is non-nil.
func NewSessionManager(systemPrompt string, seed SeedFunc) (*SessionManager, error) {
	m := &SessionManager{prompt: systemPrompt, seed: seed}
	if _, _, err := m.Reset(true); err != nil {
		return nil, err
	}
	return m, nil
}

// Reset replaces the session with a new conversation. The new store is
// seeded only when withSeed is set and a SeedFunc is configured.
func (m *SessionManager) Reset(withSeed bool) (*agent.Session, bool, error) {
	st := store.New(nil)
	seeded := false
	if withSeed && m.seed != nil {
		var err error
		if st, err = m.seed(); err != nil {
			return nil, false, err
		}
		seeded = true
	}

	s := agent.NewSession(m.prompt, st)
	m.mu.Lock()
	m.session, m.seeded = s, seeded
	m.mu.Unlock()

	log.Info().
		Str("session_id", s.ID).
		Bool("seeded", seeded).
		Int("people", st.People().Len()).
		Msg("session started")
	return s, seeded, nil
}

// Do runs fn with exclusive access to the current session.
func (m *SessionManager) Do(fn func(s *agent.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.session)
}

// Current returns the active session for reads. Its store and conversation
// are safe to read while a turn runs; mutations go through Do.
func (m *SessionManager) Current() (*agent.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.seeded
}

// SessionHandler exposes the session lifecycle.
type SessionHandler struct {
	sessions *SessionManager
}

func NewSessionHandler(sessions *SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get handles GET /api/v1/session. The response carries a dump of the
// session store.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, seeded := h.sessions.Current()
	models.WriteJSON(w, http.StatusOK, models.SessionResponse{
		Status:    "success",
		SessionID: s.ID,
		People:    s.Store().People().Len(),
		Seeded:    seeded,
		Messages:  s.Len(),
		Store:     s.Store().Snapshot(),
	})
}

// Reset handles DELETE /api/v1/session
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if err := models.DecodeJSON(r, &req, true); err != nil {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The swap waits for an in-flight turn, which finishes on the old session.
	s, seeded, err := h.sessions.Reset(req.ShouldSeed())
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "failed to start session: "+err.Error())
		return
	}

	models.WriteJSON(w, http.StatusOK, models.SessionResponse{
		Status:    "success",
		SessionID: s.ID,
		People:    s.Store().People().Len(),
		Seeded:    seeded,
		Messages:  s.Len(),
	})
}
