package inbox

import (
	"context"
	"errors"
	"log/slog"

	"github.com/starford/organizer/internal/apperr"
	"github.com/starford/organizer/internal/organizer"
	"github.com/starford/organizer/internal/parser"
	"github.com/starford/organizer/internal/store"
)

// ImportStore tracks which inbox file produced which record.
type ImportStore interface {
	PutImport(ctx context.Context, row store.ImportRow) error
	DeleteImport(ctx context.Context, path string) error
	AllImports(ctx context.Context) (map[string]store.ImportRow, error)
}

// Report summarises one Sync pass.
type Report struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Forgotten int `json:"forgotten"`
	Failed    int `json:"failed"`
}

// Importer turns capture files into organizer records.
type Importer struct {
	dir     *Dir
	imports ImportStore
	svc     *organizer.Service
	logger  *slog.Logger
}

// NewImporter wires an importer.
func NewImporter(dir *Dir, imports ImportStore, svc *organizer.Service, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{dir: dir, imports: imports, svc: svc, logger: logger}
}

// Sync walks the inbox and brings the organizer up to date:
//   - new files become records appended to their collection
//   - changed files update the record they created
//   - files whose record was deleted are left alone
//   - files removed from disk only lose their mapping
//
// A file that fails to import keeps its old checksum so the next pass
// retries it.
func (im *Importer) Sync(ctx context.Context) (Report, error) {
	var rep Report

	files, err := im.dir.List()
	if err != nil {
		return rep, err
	}
	known, err := im.imports.AllImports(ctx)
	if err != nil {
		return rep, err
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}

		prev, seen := known[f.Path]
		if seen && prev.Checksum == f.Checksum {
			rep.Unchanged++
			continue
		}
		res, err := im.importFile(ctx, f, prev, seen)
		if err != nil {
			rep.Failed++
			im.logger.Warn("inbox: import failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		switch res {
		case created:
			rep.Created++
		case updated:
			rep.Updated++
		case skipped:
			rep.Skipped++
		}
		im.logger.Debug("inbox: imported", slog.String("path", f.Path), slog.String("outcome", string(res)))
	}

	for p := range known {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := im.imports.DeleteImport(ctx, p); err != nil {
			im.logger.Warn("inbox: forget failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		rep.Forgotten++
	}

	return rep, nil
}

type outcome string

const (
	created outcome = "created"
	updated outcome = "updated"
	skipped outcome = "skipped"
)

func (im *Importer) importFile(ctx context.Context, f File, prev store.ImportRow, seen bool) (outcome, error) {
	data, err := im.dir.Read(f.Path)
	if err != nil {
		return "", err
	}
	c := parser.Parse(data)

	if seen {
		_, err := im.svc.UpdateRecord(ctx, prev.RecordID, c.Draft)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return skipped, im.remember(ctx, f, prev.RecordID)
		case err != nil:
			return "", err
		}
		return updated, im.remember(ctx, f, prev.RecordID)
	}

	rec, err := im.svc.CreateRecord(ctx, c.Kind, c.Draft)
	if err != nil {
		return "", err
	}
	return created, im.remember(ctx, f, rec.ID)
}

func (im *Importer) remember(ctx context.Context, f File, recordID string) error {
	return im.imports.PutImport(ctx, store.ImportRow{Path: f.Path, Checksum: f.Checksum, RecordID: recordID})
}
