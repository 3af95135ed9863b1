package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of write events editors produce when
// saving a file.
const debounceDelay = 200 * time.Millisecond

// Watch runs the pipeline once, then re-runs it whenever the script file
// changes, until ctx is cancelled. Runs never overlap: events arriving
// while a run is in flight are folded into the next debounce window.
// Failed runs are logged and watching continues.
func (r *Runner) Watch(ctx context.Context, opts Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file itself: editors that
	// save via rename would otherwise silently detach the watch.
	scriptDir := filepath.Dir(opts.ScriptPath)
	if err := watcher.Add(scriptDir); err != nil {
		return fmt.Errorf("watching %s: %w", scriptDir, err)
	}

	scriptName := filepath.Base(opts.ScriptPath)
	log := r.logger.With().Str("watch", opts.ScriptPath).Logger()
	log.Info().Msg("Watching script for changes")

	run := func() {
		if _, err := r.Run(ctx, opts); err != nil {
			log.Error().Err(err).Msg("Pipeline run failed")
		}
	}
	run()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != scriptName {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				log.Debug().Str("op", event.Op.String()).Msg("Script changed")
				pending = time.After(debounceDelay)
			}

		case <-pending:
			pending = nil
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}
