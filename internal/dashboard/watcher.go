package dashboard

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/control-theory/plotdeck/internal/logging"
)

// DefaultDebounce coalesces the burst of events editors emit on save
const DefaultDebounce = 150 * time.Millisecond

// Update is a reload result: a definition or the error loading it
type Update struct {
	Definition *Definition
	Err        error
}

// Watcher reloads a dashboard file whenever it changes on disk
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *log.Logger

	watcher *fsnotify.Watcher
	updates chan Update
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewWatcher watches path. The parent directory is watched so that
// rename-on-save editors keep triggering reloads.
func NewWatcher(path string, logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		logger:   logger,
		watcher:  fw,
		updates:  make(chan Update, 1),
	}, nil
}

// Start begins watching; updates are delivered until ctx is done or Close
// is called
func (w *Watcher) Start(ctx context.Context) <-chan Update {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.watch(ctx)
	return w.updates
}

// Close stops watching and closes the update channel
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) watch(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.updates)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			def, err := Load(w.path)
			if err != nil {
				w.logger.Warn("dashboard reload failed", "path", w.path, "error", err)
			} else {
				w.logger.Info("dashboard reloaded", "path", w.path, "charts", len(def.Charts))
			}
			select {
			case w.updates <- Update{Definition: def, Err: err}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "path", w.path, "error", err)
		}
	}
}
