package inbox

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Watch is given a non-positive debounce.
const DefaultDebounce = 300 * time.Millisecond

// Watch runs an initial Sync and then re-syncs whenever capture files change,
// until ctx is cancelled. Bursts of events within debounce collapse into one
// pass. onSync, if non-nil, receives every report.
//
// Directories created at runtime are added to the watch list.
func (im *Importer) Watch(ctx context.Context, debounce time.Duration, onSync func(Report)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := im.dir.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	im.logger.Info("inbox: watching", slog.String("root", root), slog.Duration("debounce", debounce))

	runSync := func() {
		rep, err := im.Sync(ctx)
		if err != nil {
			im.logger.Warn("inbox: sync failed", slog.String("error", err.Error()))
			return
		}
		if rep.Created+rep.Updated+rep.Forgotten+rep.Failed > 0 {
			im.logger.Info("inbox: synced",
				slog.Int("created", rep.Created),
				slog.Int("updated", rep.Updated),
				slog.Int("forgotten", rep.Forgotten),
				slog.Int("failed", rep.Failed))
		}
		if onSync != nil {
			onSync(rep)
		}
	}
	runSync()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			im.logger.Info("inbox: watcher stopped")
			return nil

		case <-timer.C:
			runSync()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						im.logger.Warn("inbox: watch new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					timer.Reset(debounce)
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, ".md") || ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(debounce)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its non-hidden subdirectories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
