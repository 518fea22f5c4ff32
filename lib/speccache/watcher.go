package speccache

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Root is the directory FSLoader keys are relative to.
	Root string
	// Ignore holds doublestar patterns matched against keys.
	Ignore []string
	// OnChange runs after a key is invalidated.
	OnChange func(key string)
	Logger   *slog.Logger
}

// Watcher invalidates cache entries when their template files change. It
// watches Root and every directory below it.
type Watcher struct {
	cfg   WatcherConfig
	cache *Cache
	log   *slog.Logger

	mu sync.Mutex
	fs *fsnotify.Watcher
}

// NewWatcher starts watching cfg.Root. Call Run to process events.
func NewWatcher(cache *Cache, cfg WatcherConfig) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{cfg: cfg, cache: cache, fs: fw, log: cfg.Logger}
	if w.log == nil {
		w.log = slog.New(slog.DiscardHandler)
	}
	if err := w.addTree(cfg.Root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignored(path) {
			return filepath.SkipDir
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if err := w.fs.Add(path); err != nil {
			return err
		}
		w.log.Debug("watching directory", "path", path)
		return nil
	})
}

// Run handles events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Debug("failed to watch directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	key, ok := w.key(event.Name)
	if !ok {
		return
	}
	w.cache.Invalidate(key)
	w.log.Debug("template changed", "key", key, "op", event.Op.String())
	if w.cfg.OnChange != nil {
		w.cfg.OnChange(key)
	}
}

func (w *Watcher) key(path string) (string, bool) {
	rel, err := filepath.Rel(w.cfg.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) ignored(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	key, ok := w.key(path)
	if !ok {
		return true
	}
	for _, pattern := range w.cfg.Ignore {
		if match, _ := doublestar.Match(pattern, key); match {
			return true
		}
	}
	return false
}

// Close stops the watcher. Run returns once its channels close.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fs.Close()
}
