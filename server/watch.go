package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

// reloadDelay collapses the burst of events an editor produces on save.
const reloadDelay = 200 * time.Millisecond

// Watch reloads the repository from path whenever the file changes, until
// ctx is done. A file that fails to load is logged and the current
// repository stays in place.
func (s *Server) Watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	defer w.Close()
	// Watch the directory, editors often replace the file by rename.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}
	s.log.Info("watching repository file", zap.String("path", abs))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			pending = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watch error", zap.Error(err))
		case <-pending:
			pending = nil
			s.reload(abs)
		}
	}
}

func (s *Server) reload(path string) {
	repo, err := oaisim.LoadRepository(path, s.log)
	if err != nil {
		s.log.Error("reload failed, keeping current repository", zap.String("path", path), zap.Error(err))
		return
	}
	s.Swap(repo)
	s.log.Info("repository reloaded", zap.String("path", path),
		zap.Int("items", repo.Len()), zap.Int("records", repo.NumRecords()))
}
