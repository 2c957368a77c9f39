package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/organizer/internal/apperr"
	"github.com/starford/organizer/internal/models"
)

// ListTasks returns the global tasks list with the owning record's title.
func (db *DB) ListTasks(ctx context.Context) ([]*models.Task, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT t.id, t.record_id, r.title, t.text, t.rank, t.created_at
		FROM tasks t
		JOIN records r ON r.id = t.record_id
		ORDER BY t.rank, t.created_at, t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	defer rows.Close()

	out := []*models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.RecordID, &t.RecordTitle, &t.Text, &t.Rank, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (db *DB) tasksFor(ctx context.Context, recordID string) ([]models.Task, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, record_id, text, rank, created_at
		FROM tasks
		WHERE record_id = ?
		ORDER BY rank, created_at, id
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("store: tasks for %s: %w", recordID, err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.RecordID, &t.Text, &t.Rank, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertTask adds a task to an existing record.
func (db *DB) InsertTask(ctx context.Context, t *models.Task) error {
	return insertTask(ctx, db.conn, t)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTask(ctx context.Context, ex execer, t *models.Task) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO tasks (id, record_id, text, rank, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.RecordID, t.Text, t.Rank, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: insert task: %w", err)
	}
	return nil
}

// DeleteTask removes a task, or returns apperr.ErrNotFound.
func (db *DB) DeleteTask(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SaveTaskRanks writes the rank of each task within one transaction.
func (db *DB) SaveTaskRanks(ctx context.Context, tasks ...*models.Task) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, t := range tasks {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET rank = ? WHERE id = ?`, t.Rank, t.ID); err != nil {
			return fmt.Errorf("store: save rank of task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}
