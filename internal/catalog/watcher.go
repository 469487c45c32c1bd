package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/vibeindex/internal/checksum"
)

// reloadDelay coalesces the burst of events editors emit for one save.
const reloadDelay = 200 * time.Millisecond

// ReloadCallback receives each successfully reloaded catalog.
type ReloadCallback func(c *Catalog)

// Watch reloads the catalog file at path whenever it changes, until ctx is
// cancelled. The parent directory is watched rather than the file itself so
// that atomic rename-over saves are seen. A document that fails to load is
// logged and skipped; the previously delivered catalog stays current.
// Reloads whose content is byte-identical to the last delivered one are
// dropped.
func Watch(ctx context.Context, path string, current *Catalog, logger *slog.Logger, cb ReloadCallback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", abs))

	lastSum := current.Checksum()

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(reloadDelay)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(reloadDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			c, loadErr := LoadFile(abs)
			if loadErr != nil {
				logger.Warn("watcher: reload failed, keeping previous catalog",
					slog.String("path", abs),
					slog.String("error", loadErr.Error()))
				continue
			}
			if c.Checksum() == lastSum {
				logger.Debug("watcher: content unchanged", slog.String("path", abs))
				continue
			}
			lastSum = c.Checksum()
			logger.Info("watcher: reloaded",
				slog.String("path", abs),
				slog.Int("tools", c.Len()),
				slog.String("checksum", checksum.Short(lastSum)))
			if cb != nil {
				cb(c)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
