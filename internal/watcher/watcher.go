// Package watcher watches template directories and signals, debounced, when
// templates change so cached lookups and compiled templates can be dropped.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/goliatone/go-renderchain/pkg/cache"
)

// DefaultDebounce groups bursts of editor writes into one signal.
const DefaultDebounce = 250 * time.Millisecond

// Config holds watcher configuration options.
type Config struct {
	Dirs        []string
	DebounceDur time.Duration
	Logger      *zap.Logger
}

// DefaultConfig returns defaults for watching dirs.
func DefaultConfig(dirs ...string) Config {
	return Config{
		Dirs:        dirs,
		DebounceDur: DefaultDebounce,
	}
}

// Watcher monitors template directories, subdirectories included.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dirs      []string
	debounce  time.Duration
	logger    *zap.Logger
	onChange  chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	stopErr   error
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "watcher: create fsnotify watcher")
	}
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Watcher{
		fsWatcher: fsw,
		dirs:      cfg.Dirs,
		debounce:  cfg.DebounceDur,
		logger:    cfg.Logger.Named("watcher"),
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start watches every existing directory and returns the change channel.
// Missing directories are skipped.
func (w *Watcher) Start() (<-chan struct{}, error) {
	watched := 0
	for _, dir := range w.dirs {
		if _, err := os.Stat(dir); err != nil {
			w.logger.Debug("skipping missing directory", zap.String("dir", dir))
			continue
		}
		if err := w.addTree(dir); err != nil {
			return nil, err
		}
		watched++
	}
	if watched == 0 {
		return nil, errors.New("watcher: no existing directory to watch")
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources. Later calls return
// the result of the first one.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
		w.stopErr = w.fsWatcher.Close()
	})
	return w.stopErr
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return errors.Wrapf(err, "watcher: watch %s", path)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !isRelevantEvent(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("watch new directory", zap.Error(err))
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-timerC(timer):
			if pending {
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func timerC(timer *time.Timer) <-chan time.Time {
	if timer != nil {
		return timer.C
	}
	return nil
}

func isRelevantEvent(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// Resetter is implemented by components holding compiled templates.
type Resetter interface {
	Reset()
}

// Invalidate flushes the cache and resets every resetter.
func Invalidate(ctx context.Context, c cache.Cache, resetters ...Resetter) error {
	if flusher, ok := c.(cache.Flusher); ok {
		if err := flusher.Flush(ctx); err != nil {
			return errors.Wrap(err, "watcher: flush cache")
		}
	}
	for _, r := range resetters {
		if r != nil {
			r.Reset()
		}
	}
	return nil
}
