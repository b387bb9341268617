// Package config provides change-notification plumbing for live
// configuration rebinding: a file watcher built on viper and fsnotify,
// and an etcd-backed change source for remote configuration.
package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"
	"github.com/spf13/viper"
)

// ChangeHandler is a callback invoked when configuration changes.
// It receives the updated viper instance and should return an error if it
// cannot handle the change.
type ChangeHandler func(v *viper.Viper) error

// Watcher manages configuration change notifications. It watches the
// configuration file through viper/fsnotify and provides a thread-safe
// subscription mechanism. Notify can also be driven directly, e.g. by a
// remote change source or an administrative trigger.
type Watcher struct {
	viper     *viper.Viper
	handlers  map[string]ChangeHandler
	mu        sync.RWMutex
	watching  bool
	armed     bool
	watchFile func()
}

// NewWatcher creates a new configuration watcher.
// The provided viper instance should already be initialized.
func NewWatcher(v *viper.Viper) *Watcher {
	w := &Watcher{
		viper:    v,
		handlers: make(map[string]ChangeHandler),
	}
	w.watchFile = w.armFileWatch
	return w
}

// Subscribe registers a change handler under the given identifier.
// A handler with the same ID replaces the previous one.
func (w *Watcher) Subscribe(id string, handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[id] = handler
	logger.Infof("Config watcher: subscribed handler '%s'", id)
}

// Unsubscribe removes a change handler by its identifier.
// Safe to call even if the handler does not exist.
func (w *Watcher) Unsubscribe(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.handlers[id]; exists {
		delete(w.handlers, id)
		logger.Infof("Config watcher: unsubscribed handler '%s'", id)
	}
}

// Start begins watching the configuration file for changes. Each detected
// change fires Notify. Idempotent. The underlying file watch is armed once
// per Watcher: viper has no way to tear it down, so a Stop/Start cycle must
// not arm a second fsnotify watcher.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return
	}
	w.watching = true
	arm := !w.armed
	w.armed = true
	w.mu.Unlock()

	if arm {
		w.watchFile()
	}

	logger.Info("Config watcher: started watching for configuration changes")
}

func (w *Watcher) armFileWatch() {
	w.viper.WatchConfig()
	w.viper.OnConfigChange(func(e fsnotify.Event) {
		if !w.IsWatching() {
			return
		}
		logger.Infof("Config file changed: %s", e.Name)
		w.Notify()
	})
}

// Notify delivers a "configuration changed" signal to every subscribed
// handler, sequentially. Handler errors are logged but do not stop later
// handlers. The signal carries no payload; handlers re-read current
// configuration themselves. N signals produce N passes: correctness
// relies on handlers being idempotent, not on deduplication here.
func (w *Watcher) Notify() {
	w.mu.RLock()
	handlers := make(map[string]ChangeHandler, len(w.handlers))
	for id, handler := range w.handlers {
		handlers[id] = handler
	}
	w.mu.RUnlock()

	for id, handler := range handlers {
		if err := handler(w.viper); err != nil {
			logger.Errorf("Config watcher: handler '%s' failed: %v", id, err)
		} else {
			logger.Debugf("Config watcher: handler '%s' processed change", id)
		}
	}
}

// Stop marks the watcher as inactive. Viper provides no mechanism to stop
// watching the file; the flag keeps Start idempotent across restarts.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watching {
		return
	}
	w.watching = false
	logger.Info("Config watcher: stopped")
}

// IsWatching returns whether the watcher is currently active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// HandlerCount returns the number of registered handlers.
func (w *Watcher) HandlerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.handlers)
}
