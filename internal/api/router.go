package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/organizer/internal/navigation"
	"github.com/starford/organizer/internal/organizer"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(svc *organizer.Service, sessions *navigation.Sessions, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, sessions)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/records/{kind}", func(r chi.Router) {
		r.Get("/", h.ListRecords)
		r.Post("/", h.CreateRecord)
		r.Get("/{id}", h.GetRecord)
		r.Put("/{id}", h.UpdateRecord)
		r.Delete("/{id}", h.DeleteRecord)
		r.Post("/{id}/move", h.MoveRecord)
		r.Post("/{id}/tasks", h.AddTask)
	})

	r.Get("/tasks", h.ListTasks)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Post("/tasks/{id}/move", h.MoveTask)

	r.Post("/sessions", h.OpenSession)
	r.Get("/sessions/{id}", h.GetSession)
	r.Delete("/sessions/{id}", h.CloseSession)
	r.Post("/sessions/{id}/navigate", h.Navigate)
	r.Post("/sessions/{id}/back", h.GoBack)
	r.Post("/sessions/{id}/root", h.GoToRoot)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
