package api

import (
	"github.com/starford/organizer/internal/models"
	"github.com/starford/organizer/internal/navigation"
)

// RecordRequest is the request body for creating or updating a record.
type RecordRequest = models.Draft

// RecordListResponse wraps a collection in display order.
type RecordListResponse struct {
	Records []*models.Record `json:"records" validate:"required"`
}

// TaskListResponse wraps the global tasks list in display order.
type TaskListResponse struct {
	Tasks []*models.Task `json:"tasks" validate:"required"`
}

// MoveRequest is the request body for reordering.
type MoveRequest struct {
	Direction string `json:"direction" example:"up" validate:"required"`
}

// AddTaskRequest is the request body for attaching a task to a record.
type AddTaskRequest struct {
	Text string `json:"text" example:"buy milk" validate:"required"`
}

// NavigateRequest is the request body for opening a screen.
type NavigateRequest = navigation.View

// SessionResponse reports a navigation session.
type SessionResponse struct {
	ID    string           `json:"id" validate:"required"`
	State navigation.State `json:"state" validate:"required"`
}
