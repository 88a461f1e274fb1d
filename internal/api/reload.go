package api

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/FocuswithJustin/lectio/core/catalog"
	"github.com/FocuswithJustin/lectio/core/errors"
	"github.com/FocuswithJustin/lectio/internal/logging"
)

// Reload loads the configured catalog file and swaps it in when its
// fingerprint differs from the serving one. On failure the serving catalog
// stays in place.
func (s *Server) Reload(ctx context.Context) (bool, error) {
	path := s.cfg.CatalogPath
	if path == "" {
		return false, errors.NewValidation("catalog path", "no catalog file to reload")
	}
	start := time.Now()

	cat, closer, err := catalog.LoadFile(ctx, path, catalog.FileOptions{Lazy: s.cfg.Lazy})
	if err == nil && !s.cfg.Lazy {
		err = cat.RequireVerseCounts()
	}
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		s.metrics.reloads.WithLabelValues(ReloadFailed).Inc()
		logging.Error("catalog reload failed", "path", path, "error", err)
		return false, err
	}

	fp := cat.Fingerprint()
	if fp == s.Fingerprint() {
		closer.Close()
		s.metrics.reloads.WithLabelValues(ReloadUnchanged).Inc()
		logging.CatalogReloaded(path, fp, false)
		return false, nil
	}

	if _, err := s.swap(cat, path, closer); err != nil {
		closer.Close()
		s.metrics.reloads.WithLabelValues(ReloadFailed).Inc()
		logging.Error("catalog reload failed", "path", path, "error", err)
		return false, err
	}
	s.metrics.reloads.WithLabelValues(ReloadApplied).Inc()
	logging.CatalogReloaded(path, fp, true,
		"books", cat.Len(),
		"duration_ms", time.Since(start).Milliseconds())

	summary := s.state.Load().summary()
	s.hub.Broadcast(Message{Type: MessageCatalogReloaded, Catalog: &summary})
	return true, nil
}

// Watch reloads the catalog whenever its file is written, created or
// renamed into place, until ctx ends. Bursts of events within the reload
// debounce collapse into one reload. The parent directory is watched so
// editors that replace the file are still seen.
func (s *Server) Watch(ctx context.Context) error {
	path, err := filepath.Abs(s.cfg.CatalogPath)
	if err != nil {
		return errors.NewIO("resolve", s.cfg.CatalogPath, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create catalog watcher")
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return errors.NewIO("watch", dir, err)
	}
	logging.Info("catalog watcher started", "path", path, "debounce", s.cfg.ReloadDebounce)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				logging.Debug("catalog file changed", "path", path, "op", ev.Op.String())
				fire = time.After(s.cfg.ReloadDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("catalog watcher error", "path", path, "error", err)

		case <-fire:
			fire = nil
			// Failures are logged and counted; keep watching for a fixed file.
			_, _ = s.Reload(ctx)
		}
	}
}
