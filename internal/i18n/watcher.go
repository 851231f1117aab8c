package i18n

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"community-gateway/internal/observability/metrics"
)

// Watcher reloads the catalog when a bundle in MessagesDir changes. Bursts
// of events within the debounce interval cause one reload.
type Watcher struct {
	catalog  *Catalog
	fsw      *fsnotify.Watcher
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

var ErrWatcherRunning = errors.New("i18n: watcher already running")

// NewWatcher watches the catalog's messages directory.
func NewWatcher(c *Catalog) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("i18n: create watcher: %w", err)
	}
	if err := fsw.Add(c.cfg.MessagesDir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("i18n: watch %s: %w", c.cfg.MessagesDir, err)
	}
	interval := c.cfg.Debounce
	if interval <= 0 {
		interval = DefaultConfig().Debounce
	}
	return &Watcher{
		catalog:  c,
		fsw:      fsw,
		debounce: newDebouncer(interval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Run processes events until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrWatcherRunning
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.doneCh)

	slog.Info("translation watcher started",
		slog.String("dir", w.catalog.cfg.MessagesDir),
		slog.Duration("debounce", w.debounce.interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("translation file event", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			w.debounce.trigger(func() { w.reload(ctx) })

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("translation watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	if err := w.catalog.Load(ctx); err != nil {
		metrics.LocaleReloadsTotal.WithLabelValues("error").Inc()
		slog.Error("translation reload failed", slog.String("error", err.Error()))
		return
	}
	metrics.LocaleReloadsTotal.WithLabelValues("success").Inc()
}

// relevant keeps writes, creates, removes and renames of <locale>.json for
// a configured locale.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	if !strings.EqualFold(filepath.Ext(base), ".json") {
		return false
	}
	return w.catalog.Supported(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Stop ends Run, cancels a pending reload and closes the fsnotify watcher.
// It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	select {
	case <-w.stopCh:
		w.mu.Unlock()
		return nil
	default:
		close(w.stopCh)
	}
	w.mu.Unlock()

	if running {
		<-w.doneCh
	}
	w.debounce.stop()
	return w.fsw.Close()
}

// debouncer runs the last triggered callback once the interval passes
// without another trigger.
type debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.interval, func() {
		defer d.wg.Done()
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fn()
		}
	})
}

// stop cancels a pending callback and waits for a running one.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
	d.mu.Unlock()
	d.wg.Wait()
}
