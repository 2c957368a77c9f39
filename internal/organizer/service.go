// Package organizer coordinates the record store with the rank ordering model.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/organizer/internal/apperr"
	"github.com/starford/organizer/internal/models"
	"github.com/starford/organizer/internal/ranking"
	"github.com/starford/organizer/internal/store"
)

// Collection name used for task events.
const tasksCollection = "tasks"

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionMoved   = "moved"
)

// Notifier receives change notifications after successful mutations.
type Notifier interface {
	PublishRecordEvent(action, collection, id string)
}

// Service exposes the organizer operations used by every front end.
// Operations that read ranks and write them back hold mu, so concurrent
// callers never compute ranks from the same snapshot.
type Service struct {
	mu       sync.Mutex
	store    store.RecordStore
	logger   *slog.Logger
	notifier Notifier
	now      func() time.Time
}

// NewService creates a new organizer service.
func NewService(st store.RecordStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier attaches n to receive change events.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) notify(action, collection, id string) {
	if s.notifier != nil {
		s.notifier.PublishRecordEvent(action, collection, id)
	}
}

func checkKind(kind models.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", apperr.ErrUnknownCollection, kind)
	}
	return nil
}

// ListRecords returns the records of kind in display order.
func (s *Service) ListRecords(ctx context.Context, kind models.Kind) ([]*models.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	recs, err := s.store.ListByRank(ctx, kind)
	if err != nil {
		return nil, err
	}
	ranking.Sort(recs)
	return recs, nil
}

// GetRecord returns one record with its tasks.
func (s *Service) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	return s.store.Get(ctx, id)
}

// CreateRecord validates d and appends a new record to the end of kind.
// Tasks in the draft are appended to the end of the tasks list in order.
func (s *Service) CreateRecord(ctx context.Context, kind models.Kind, d models.Draft) (*models.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	d = Normalize(d)
	if err := Validate(d); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ListByRank(ctx, kind)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rec := &models.Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     d.Title,
		Body:      d.Body,
		Links:     d.Links,
		Rank:      ranking.NextRank(existing),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(d.Tasks) > 0 {
		tasks, err := s.store.ListTasks(ctx)
		if err != nil {
			return nil, err
		}
		next := ranking.NextRank(tasks)
		for i, text := range d.Tasks {
			rec.Tasks = append(rec.Tasks, s.newTask(rec, text, next+i))
		}
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Debug("record created", slog.String("id", rec.ID), slog.String("kind", string(kind)), slog.Int("rank", rec.Rank))
	s.notify(ActionCreated, string(kind), rec.ID)
	for _, t := range rec.Tasks {
		s.notify(ActionCreated, tasksCollection, t.ID)
	}
	return rec, nil
}

// UpdateRecord replaces the editable fields of record id. Rank and tasks are
// unchanged.
func (s *Service) UpdateRecord(ctx context.Context, id string, d models.Draft) (*models.Record, error) {
	d = Normalize(d)
	if err := Validate(d); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Title = d.Title
	rec.Body = d.Body
	rec.Links = d.Links
	rec.UpdatedAt = s.now()
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.notify(ActionUpdated, string(rec.Kind), rec.ID)
	return rec, nil
}

// DeleteRecord removes record id and its tasks. A record that is already
// gone is not an error.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	rec, err := s.store.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		s.logger.Debug("delete of missing record ignored", slog.String("id", id))
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ActionDeleted, string(rec.Kind), id)
	return nil
}

// MoveRecord moves record id one step in dir within kind and returns the
// resulting order. Moving the first record up, the last record down, or a
// record that no longer exists changes nothing. A failed save is logged and
// otherwise ignored; the returned order then reflects what is stored.
func (s *Service) MoveRecord(ctx context.Context, kind models.Kind, id string, dir ranking.Direction) ([]*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.ListRecords(ctx, kind)
	if err != nil {
		return nil, err
	}
	changed := ranking.Move(recs, id, dir)
	if changed == nil {
		return recs, nil
	}
	if err := s.store.SaveRanks(ctx, changed...); err != nil {
		s.logger.Warn("reorder not saved",
			slog.String("id", id),
			slog.String("kind", string(kind)),
			slog.String("direction", string(dir)),
			slog.String("error", err.Error()))
		return s.ListRecords(ctx, kind)
	}
	ranking.Sort(recs)
	s.notify(ActionMoved, string(kind), id)
	return recs, nil
}

// ListTasks returns the global tasks list in display order.
func (s *Service) ListTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	ranking.Sort(tasks)
	return tasks, nil
}

// AddTask appends a task for record id to the end of the tasks list.
func (s *Service) AddTask(ctx context.Context, recordID, text string) (*models.Task, error) {
	text = normalizeTask(text)
	if text == "" {
		return nil, fmt.Errorf("%w: task text is required", apperr.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	t := s.newTask(rec, text, ranking.NextRank(existing))
	if err := s.store.InsertTask(ctx, &t); err != nil {
		return nil, err
	}
	s.notify(ActionCreated, tasksCollection, t.ID)
	return &t, nil
}

func (s *Service) newTask(rec *models.Record, text string, rank int) models.Task {
	return models.Task{
		ID:          uuid.NewString(),
		RecordID:    rec.ID,
		RecordTitle: rec.Title,
		Text:        text,
		Rank:        rank,
		CreatedAt:   s.now(),
	}
}

// DeleteTask removes task id. Missing tasks are ignored.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	err := s.store.DeleteTask(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		s.logger.Debug("delete of missing task ignored", slog.String("id", id))
		return nil
	}
	if err != nil {
		return err
	}
	s.notify(ActionDeleted, tasksCollection, id)
	return nil
}

// MoveTask moves task id one step in dir within the tasks list. It follows
// the same rules as MoveRecord.
func (s *Service) MoveTask(ctx context.Context, id string, dir ranking.Direction) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	changed := ranking.Move(tasks, id, dir)
	if changed == nil {
		return tasks, nil
	}
	if err := s.store.SaveTaskRanks(ctx, changed...); err != nil {
		s.logger.Warn("task reorder not saved",
			slog.String("id", id),
			slog.String("direction", string(dir)),
			slog.String("error", err.Error()))
		return s.ListTasks(ctx)
	}
	ranking.Sort(tasks)
	s.notify(ActionMoved, tasksCollection, id)
	return tasks, nil
}
