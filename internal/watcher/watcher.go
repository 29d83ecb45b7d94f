// Package watcher watches the transcript data directory with fsnotify and
// debounces change events into re-index callbacks.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/corpus"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the data directory recursively and invokes callbacks when
// transcript files change. New subdirectories (the per-month folders created
// on import) are picked up automatically.
type Watcher struct {
	dataDir      string
	onTranscript func(path string)
	onRemove     func(path string)
	debounce     time.Duration
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	debounceMap  map[string]*time.Timer
	done         chan struct{}
	started      bool
	stopOnce     sync.Once
	logger       *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher over dataDir. onTranscript and onRemove are called
// for transcript change and remove events respectively.
func New(dataDir string, onTranscript, onRemove func(path string), opts ...Option) *Watcher {
	w := &Watcher{
		dataDir:      dataDir,
		onTranscript: onTranscript,
		onRemove:     onRemove,
		debounce:     defaultDebounce,
		debounceMap:  make(map[string]*time.Timer),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
// The data directory is created if it does not exist.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	if w.logger != nil {
		w.logger.Debug("watcher starting", zap.String("data_dir", w.dataDir))
	}
	if err := w.addTreeLocked(w.dataDir); err != nil {
		_ = w.watcher.Close()
		w.watcher = nil
		w.started = false
		w.mu.Unlock()
		return err
	}
	w.mu.Unlock()
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if w.logger != nil {
		w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	}
	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
		if isTranscript(path) {
			w.debounceTranscript(path)
		}
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.cancelDebounce(path)
		if isTranscript(path) && w.onRemove != nil {
			w.onRemove(path)
		}
	}
}

// isTranscript reports whether path looks like a transcript file. The titles
// index and training data files also live in the data directory and must not
// trigger re-indexing.
func isTranscript(path string) bool {
	base := filepath.Base(path)
	if base == corpus.IndexFilename || base == corpus.TrainingFilename {
		return false
	}
	return filepath.Ext(base) == ".txt"
}

// handleNewDirectory adds a newly created directory (a month folder) to the
// watch list and indexes the transcripts inside it.
func (w *Watcher) handleNewDirectory(dirPath string) {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil {
		return
	}
	if w.logger != nil {
		w.logger.Debug("watcher new directory", zap.String("path", dirPath))
	}
	filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if addErr := watcher.Add(path); addErr != nil && w.logger != nil {
				w.logger.Debug("watcher failed to add directory", zap.String("path", path), zap.Error(addErr))
			}
		}
		return nil
	})
	w.syncDirectory(dirPath)
}

func (w *Watcher) debounceTranscript(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	t := time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		logger := w.logger
		w.mu.Unlock()
		if logger != nil {
			logger.Debug("watcher indexing transcript (debounced)", zap.String("path", path))
		}
		if w.onTranscript != nil {
			w.onTranscript(path)
		}
	})
	w.debounceMap[path] = t
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

func (w *Watcher) addTreeLocked(root string) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(root, 0755); err != nil {
				return err
			}
		} else {
			return err
		}
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) syncDirectory(root string) {
	w.mu.Lock()
	onTranscript := w.onTranscript
	logger := w.logger
	w.mu.Unlock()
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if isTranscript(path) {
			if logger != nil {
				logger.Debug("watcher sync indexing transcript", zap.String("path", path))
			}
			if onTranscript != nil {
				onTranscript(path)
			}
		}
		return nil
	})
}

// SyncExistingFiles indexes every transcript already present in the data
// directory. Call after Start to pick up files that predate the watcher.
func (w *Watcher) SyncExistingFiles() {
	w.syncDirectory(w.dataDir)
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
