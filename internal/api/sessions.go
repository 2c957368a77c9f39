package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/organizer/internal/navigation"
)

// OpenSession handles POST /api/sessions. The new session starts at root.
//
//	@Summary		Start a navigation session
//	@Tags			sessions
//	@Produce		json
//	@Success		201	{object}	SessionResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	id, st := h.sessions.Open()
	writeJSON(w, http.StatusCreated, SessionResponse{ID: id, State: st})
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: id, State: st})
}

// CloseSession handles DELETE /api/sessions/{id}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Close(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// Navigate handles POST /api/sessions/{id}/navigate.
//
//	@Summary		Open a screen, pushing the current one onto history
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NavigateRequest	true	"Target view"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/navigate [post]
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var v NavigateRequest
	if !decodeBody(w, r, &v) {
		return
	}
	if err := v.Validate(); err != nil {
		writeError(w, "navigate", err)
		return
	}
	h.transition(w, r, func(s *navigation.Stack) { s.Navigate(v) })
}

// GoBack handles POST /api/sessions/{id}/back.
func (h *Handler) GoBack(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, (*navigation.Stack).GoBack)
}

// GoToRoot handles POST /api/sessions/{id}/root.
func (h *Handler) GoToRoot(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, (*navigation.Stack).GoToRoot)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(*navigation.Stack)) {
	id := chi.URLParam(r, "id")
	st, err := h.sessions.Do(id, func(s *navigation.Stack) error {
		fn(s)
		return nil
	})
	if err != nil {
		writeError(w, "session transition", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: id, State: st})
}
