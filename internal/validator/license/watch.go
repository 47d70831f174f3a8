package license

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watch reloads the license file at path whenever it changes and calls
// onChange with the new value. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so editors and
// deploy tools that save by renaming a temp file over path keep being seen.
// A reload that fails to parse is logged and the previous license stays active.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*ServiceInformation)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger.Info("license: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op&reloadOps == 0 {
				continue
			}

			info, err := Load(path)
			if err != nil {
				// A rename away from path also lands here; the next Create reloads.
				logger.Error("license: reload failed, keeping previous license",
					"path", path, "error", err)
				continue
			}

			logger.Info("license: reloaded", "path", path)
			onChange(info)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("license: watcher error", "error", err)
		}
	}
}
