package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/organizer/internal/apperr"
	"github.com/starford/organizer/internal/models"
	"github.com/starford/organizer/internal/navigation"
	"github.com/starford/organizer/internal/organizer"
	"github.com/starford/organizer/internal/ranking"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *organizer.Service
	sessions *navigation.Sessions
}

// NewHandler creates a new Handler.
func NewHandler(svc *organizer.Service, sessions *navigation.Sessions) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func kindParam(r *http.Request) models.Kind {
	return models.Kind(chi.URLParam(r, "kind"))
}

var errWrongKind = fmt.Errorf("%w: record is in another collection", apperr.ErrNotFound)

// recordInPath loads the {id} record and checks it belongs to {kind}. A
// record of another collection is reported as not found.
func (h *Handler) recordInPath(r *http.Request) (*models.Record, error) {
	kind := kindParam(r)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownCollection, kind)
	}
	rec, err := h.svc.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if rec.Kind != kind {
		return nil, errWrongKind
	}
	return rec, nil
}

// ListRecords handles GET /api/records/{kind}.
//
//	@Summary		List a collection in display order
//	@Tags			records
//	@Produce		json
//	@Param			kind	path		string	true	"Collection"	Enums(items, notes)
//	@Success		200		{object}	RecordListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{kind} [get]
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListRecords(r.Context(), kindParam(r))
	if err != nil {
		writeError(w, "list records", err)
		return
	}
	writeJSON(w, http.StatusOK, RecordListResponse{Records: recs})
}

// GetRecord handles GET /api/records/{kind}/{id}.
//
//	@Summary		Get a record with its tasks
//	@Tags			records
//	@Produce		json
//	@Success		200	{object}	models.Record
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{kind}/{id} [get]
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recordInPath(r)
	if err != nil {
		writeError(w, "get record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CreateRecord handles POST /api/records/{kind}.
//
//	@Summary		Append a record to a collection
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecordRequest	true	"Record fields"
//	@Success		201		{object}	models.Record
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{kind} [post]
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rec, err := h.svc.CreateRecord(r.Context(), kindParam(r), req)
	if err != nil {
		writeError(w, "create record", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateRecord handles PUT /api/records/{kind}/{id}.
//
//	@Summary		Replace a record's title, body and links
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecordRequest	true	"Record fields"
//	@Success		200		{object}	models.Record
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{kind}/{id} [put]
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rec, err := h.recordInPath(r)
	if err != nil {
		writeError(w, "update record", err)
		return
	}
	rec, err = h.svc.UpdateRecord(r.Context(), rec.ID, req)
	if err != nil {
		writeError(w, "update record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecord handles DELETE /api/records/{kind}/{id}. Deleting a record
// that does not exist still answers 204; one filed under another collection
// answers 404.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recordInPath(r)
	if errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, errWrongKind) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, "delete record", err)
		return
	}
	if err := h.svc.DeleteRecord(r.Context(), rec.ID); err != nil {
		writeError(w, "delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func directionParam(w http.ResponseWriter, r *http.Request) (ranking.Direction, bool) {
	var req MoveRequest
	if !decodeBody(w, r, &req) {
		return "", false
	}
	dir, err := ranking.ParseDirection(req.Direction)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return "", false
	}
	return dir, true
}

// MoveRecord handles POST /api/records/{kind}/{id}/move.
//
//	@Summary		Move a record one position up or down
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveRequest	true	"Direction"
//	@Success		200		{object}	RecordListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{kind}/{id}/move [post]
func (h *Handler) MoveRecord(w http.ResponseWriter, r *http.Request) {
	dir, ok := directionParam(w, r)
	if !ok {
		return
	}
	recs, err := h.svc.MoveRecord(r.Context(), kindParam(r), chi.URLParam(r, "id"), dir)
	if err != nil {
		writeError(w, "move record", err)
		return
	}
	writeJSON(w, http.StatusOK, RecordListResponse{Records: recs})
}

// AddTask handles POST /api/records/{kind}/{id}/tasks.
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req AddTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rec, err := h.recordInPath(r)
	if err != nil {
		writeError(w, "add task", err)
		return
	}
	t, err := h.svc.AddTask(r.Context(), rec.ID, req.Text)
	if err != nil {
		writeError(w, "add task", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListTasks handles GET /api/tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListTasks(r.Context())
	if err != nil {
		writeError(w, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks})
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveTask handles POST /api/tasks/{id}/move.
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	dir, ok := directionParam(w, r)
	if !ok {
		return
	}
	tasks, err := h.svc.MoveTask(r.Context(), chi.URLParam(r, "id"), dir)
	if err != nil {
		writeError(w, "move task", err)
		return
	}
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks})
}
