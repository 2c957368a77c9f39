package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/organizer/internal/apperr"
	"github.com/starford/organizer/internal/models"
)

const recordColumns = `id, kind, title, body, links, rank, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*models.Record, error) {
	var (
		r     models.Record
		kind  string
		links string
	)
	if err := s.Scan(&r.ID, &kind, &r.Title, &r.Body, &links, &r.Rank, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Kind = models.Kind(kind)
	if err := json.Unmarshal([]byte(links), &r.Links); err != nil {
		return nil, fmt.Errorf("store: decode links of %s: %w", r.ID, err)
	}
	if r.Links == nil {
		r.Links = []models.Link{}
	}
	return &r, nil
}

func encodeLinks(links []models.Link) string {
	if links == nil {
		links = []models.Link{}
	}
	data, _ := json.Marshal(links)
	return string(data)
}

// ListByRank returns every record of kind. Ties on rank are broken by
// creation time and id so the order is stable between calls.
func (db *DB) ListByRank(ctx context.Context, kind models.Kind) ([]*models.Record, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE kind = ?
		ORDER BY rank, created_at, id
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	defer rows.Close()

	out := []*models.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns a record with its tasks.
func (db *DB) Get(ctx context.Context, id string) (*models.Record, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get record: %w", err)
	}
	tasks, err := db.tasksFor(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Tasks = tasks
	return r, nil
}

// Insert adds a new record together with r.Tasks in one transaction.
func (db *DB) Insert(ctx context.Context, r *models.Record) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, string(r.Kind), r.Title, r.Body, encodeLinks(r.Links), r.Rank, r.CreatedAt, r.UpdatedAt); err != nil {
		return fmt.Errorf("store: insert record: %w", err)
	}
	for _, t := range r.Tasks {
		if err := insertTask(ctx, tx, &t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Update writes title, body, links and updated_at. Rank and kind are left
// alone; ranks only change through SaveRanks.
func (db *DB) Update(ctx context.Context, r *models.Record) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE records
		SET title = ?, body = ?, links = ?, updated_at = ?
		WHERE id = ?
	`, r.Title, r.Body, encodeLinks(r.Links), r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("store: update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete removes a record; its tasks cascade. The import mapping stays.
func (db *DB) Delete(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete record: %w", err)
	}
	return nil
}

// SaveRanks writes the rank of each record within one transaction.
func (db *DB) SaveRanks(ctx context.Context, records ...*models.Record) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.PrepareContext(ctx, `UPDATE records SET rank = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("store: prepare rank update: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Rank, r.ID); err != nil {
			return fmt.Errorf("store: save rank of %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
