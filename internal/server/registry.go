package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/switchlog/switchlog/internal/config"
)

// reloadDebounce coalesces bursts of write events from editors that save in
// multiple steps.
const reloadDebounce = 250 * time.Millisecond

// RegistryHolder holds the channel registry and supports hot reloading.
// Safe for concurrent use.
type RegistryHolder struct {
	path string
	log  *slog.Logger

	mu  sync.RWMutex
	reg *config.Registry

	watcher *fsnotify.Watcher
	done    chan struct{}

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// NewRegistryHolder loads the registry from path. A missing file yields an
// empty registry rather than an error, so a fresh workspace can serve.
func NewRegistryHolder(path string, log *slog.Logger) (*RegistryHolder, error) {
	h := &RegistryHolder{
		path: path,
		log:  log,
		reg:  &config.Registry{},
		done: make(chan struct{}),
	}
	if err := h.Reload(); err != nil {
		h.log.Warn("channel registry not loaded", "path", path, "err", err)
	}
	return h, nil
}

// Registry returns the current registry snapshot.
func (h *RegistryHolder) Registry() *config.Registry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.reg
}

// ByID resolves a channel by Slack ID against the current registry.
func (h *RegistryHolder) ByID(id string) *config.Channel {
	return h.Registry().ByID(id)
}

// Reload re-reads the registry from disk. On failure the previous registry
// is kept.
func (h *RegistryHolder) Reload() error {
	reg, err := config.LoadRegistry(h.path)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.reg = reg
	h.mu.Unlock()
	return nil
}

// Watch reloads the registry whenever its file changes. Call Close to stop.
func (h *RegistryHolder) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	h.watcher = watcher

	if err := watcher.Add(h.path); err != nil {
		watcher.Close()
		h.watcher = nil
		return err
	}

	go h.watchLoop()
	return nil
}

func (h *RegistryHolder) watchLoop() {
	for {
		select {
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			h.scheduleReload()
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.log.Warn("registry watcher error", "err", err)
		case <-h.done:
			return
		}
	}
}

func (h *RegistryHolder) scheduleReload() {
	h.debounceMu.Lock()
	defer h.debounceMu.Unlock()

	if h.debounce != nil {
		h.debounce.Stop()
	}
	h.debounce = time.AfterFunc(reloadDebounce, func() {
		if err := h.Reload(); err != nil {
			h.log.Warn("registry reload failed", "err", err)
			return
		}
		h.log.Info("channel registry reloaded", "channels", len(h.Registry().Channels))
	})
}

// Close stops the watcher, if started.
func (h *RegistryHolder) Close() error {
	close(h.done)
	if h.watcher != nil {
		return h.watcher.Close()
	}
	return nil
}
