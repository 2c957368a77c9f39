package store

import (
	"context"
	"fmt"
)

// ImportRow links an inbox file to the record created from it.
type ImportRow struct {
	Path     string
	Checksum string
	RecordID string
}

// PutImport records (or replaces) the mapping for an inbox file.
func (db *DB) PutImport(ctx context.Context, row ImportRow) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO imports (path, checksum, record_id)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum  = excluded.checksum,
			record_id = excluded.record_id
	`, row.Path, row.Checksum, row.RecordID)
	if err != nil {
		return fmt.Errorf("store: put import: %w", err)
	}
	return nil
}

// DeleteImport forgets the mapping for path. The record is kept.
func (db *DB) DeleteImport(ctx context.Context, path string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM imports WHERE path = ?`, path); err != nil {
		return fmt.Errorf("store: delete import: %w", err)
	}
	return nil
}

// AllImports returns every import mapping keyed by inbox path.
func (db *DB) AllImports(ctx context.Context) (map[string]ImportRow, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum, record_id FROM imports`)
	if err != nil {
		return nil, fmt.Errorf("store: all imports: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ImportRow)
	for rows.Next() {
		var r ImportRow
		if err := rows.Scan(&r.Path, &r.Checksum, &r.RecordID); err != nil {
			return nil, err
		}
		out[r.Path] = r
	}
	return out, rows.Err()
}
