package store

import (
	"context"

	"github.com/starford/organizer/internal/models"
)

// RecordStore is the persistence contract the organizer service depends on.
// Consumers should depend on this interface rather than the concrete *DB type
// so failing stores can be substituted in tests.
type RecordStore interface {
	// ListByRank returns every record of kind ordered by rank.
	ListByRank(ctx context.Context, kind models.Kind) ([]*models.Record, error)
	// Get returns one record with its tasks, or apperr.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Record, error)
	// Insert adds r and its tasks atomically.
	Insert(ctx context.Context, r *models.Record) error
	// Update replaces the editable fields of r, or returns apperr.ErrNotFound.
	Update(ctx context.Context, r *models.Record) error
	// Delete removes a record and its tasks. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
	// SaveRanks persists the rank field of every given record atomically.
	SaveRanks(ctx context.Context, records ...*models.Record) error

	ListTasks(ctx context.Context) ([]*models.Task, error)
	InsertTask(ctx context.Context, t *models.Task) error
	// DeleteTask removes a task, or returns apperr.ErrNotFound.
	DeleteTask(ctx context.Context, id string) error
	SaveTaskRanks(ctx context.Context, tasks ...*models.Task) error
}

// Verify *DB satisfies RecordStore at compile time.
var _ RecordStore = (*DB)(nil)
