package preset

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch calls onChange with the freshly read list whenever the backing file
// is written, created, renamed or removed, until ctx is done. The parent
// directory is watched so atomic replacements are seen. A file that fails
// to parse is logged and skipped.
func (s *FileStore) Watch(ctx context.Context, log *zap.Logger, onChange func([]*Preset)) error {
	if log == nil {
		log = zap.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer func() { _ = w.Close() }()

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			list, err := s.List()
			if err != nil {
				log.Warn("reload presets", zap.String("path", s.path), zap.Error(err))
				continue
			}
			onChange(list)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch presets", zap.Error(err))
		}
	}
}
