package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AngelCh415/adperf/internal/metrics"
	"github.com/AngelCh415/adperf/internal/utils"
)

// A save can land as several events with a half-written file in between, so
// a failed reload is retried briefly before it counts.
var reloadRetry = utils.NewBackoff(50*time.Millisecond, 3)

// Watch reloads the settings file whenever it changes and hands the result
// to onChange. A reload that fails to parse or validate goes to onError and
// the caller keeps its previous settings. Watch runs until ctx is done.
//
// The parent directory is watched rather than the file so editors that save
// by rename are picked up.
func Watch(ctx context.Context, path string, log *slog.Logger, onChange func(metrics.Settings), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)
	log.Info("settings: watching for changes", slog.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			var s metrics.Settings
			err := reloadRetry.Do(ctx, func(int) error {
				var err error
				s, err = LoadSettings(path)
				return err
			})
			if err != nil {
				log.Error("settings: reload failed, keeping previous settings", slog.String("path", path), slog.String("err", err.Error()))
				if onError != nil {
					onError(err)
				}
				continue
			}
			log.Info("settings: reloaded", slog.String("path", path))
			onChange(s)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("settings: watcher error", slog.String("err", err.Error()))
		}
	}
}
