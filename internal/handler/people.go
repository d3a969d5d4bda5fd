package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cortexai/roster/internal/models"
)

// PeopleHandler serves read-only views of the session's person table.
type PeopleHandler struct {
	sessions *SessionManager
}

func NewPeopleHandler(sessions *SessionManager) *PeopleHandler {
	return &PeopleHandler{sessions: sessions}
}

// List handles GET /api/v1/people. An optional ?q= filters with the same
// keyword match lookup_person uses.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	s, _ := h.sessions.Current()
	people := s.Store().People()

	views := people.Views()
	if q := r.URL.Query().Get("q"); q != "" {
		views = people.Search(q)
	}
	models.WriteJSON(w, http.StatusOK, models.PeopleResponse{
		Status: "success",
		Count:  len(views),
		People: views,
	})
}

// Get handles GET /api/v1/people/{name}
func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s, _ := h.sessions.Current()

	p, ok := s.Store().People().View(name)
	if !ok {
		models.WriteError(w, http.StatusNotFound, "person not found: "+name)
		return
	}
	models.WriteJSON(w, http.StatusOK, models.PersonResponse{
		Status: "success",
		Person: p,
	})
}
