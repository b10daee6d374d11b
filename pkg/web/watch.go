package web

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// watchAssets reparses the templates whenever a file below the asset
// directory changes. Only used in dev mode.
func watchAssets(ctx context.Context, dir string, ts *templateSet, logger *zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return eris.Wrap(err, "failed to create asset watcher")
	}

	for _, sub := range []string{"templates", "static"} {
		if err := watcher.Add(filepath.Join(dir, sub)); err != nil {
			watcher.Close()
			return eris.Wrapf(err, "failed to watch %s", filepath.Join(dir, sub))
		}
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				logger.Debug().Str("path", event.Name).Msg("asset changed, reloading templates")
				if err := ts.reload(); err != nil {
					logger.Error().Err(err).Msg("failed to reload templates")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("asset watcher error")
			}
		}
	}()

	return nil
}
