package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/weft/internal/compiler"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// Reloader receives recompiled program files. *weft.Engine satisfies it.
type Reloader interface {
	LoadFile(path string) (*domain.Program, error)
}

// WatchPrograms recompiles program files in dir as they change, until ctx is
// done. A file that fails to compile is logged and the previously registered
// version keeps serving. Requests already running keep the graph they started with.
func WatchPrograms(ctx context.Context, dir string, target Reloader, logger *slog.Logger, changed func(*domain.Program)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info("Starting Watcher", "path", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !compiler.IsProgramFile(event.Name) {
				continue
			}
			prog, err := target.LoadFile(event.Name)
			if err != nil {
				logger.Warn("program reload failed", "file", event.Name, "err", err)
				continue
			}
			logger.Info("program reloaded", "program", prog.Name, "file", event.Name)
			if changed != nil {
				changed(prog)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
