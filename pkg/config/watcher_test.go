package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestNewWatcher(t *testing.T) {
	v := viper.New()
	watcher := NewWatcher(v)

	if watcher.viper != v {
		t.Error("Watcher viper instance does not match provided instance")
	}
	if watcher.IsWatching() {
		t.Error("Watcher should not be watching initially")
	}
	if count := watcher.HandlerCount(); count != 0 {
		t.Errorf("Expected 0 handlers, got %d", count)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	watcher := NewWatcher(viper.New())

	watcher.Subscribe("test-handler", func(*viper.Viper) error { return nil })
	if count := watcher.HandlerCount(); count != 1 {
		t.Errorf("Expected 1 handler after subscribe, got %d", count)
	}

	// Subscribing with the same ID replaces, not appends.
	watcher.Subscribe("test-handler", func(*viper.Viper) error { return nil })
	if count := watcher.HandlerCount(); count != 1 {
		t.Errorf("Expected 1 handler after duplicate subscribe, got %d", count)
	}

	watcher.Unsubscribe("test-handler")
	if count := watcher.HandlerCount(); count != 0 {
		t.Errorf("Expected 0 handlers after unsubscribe, got %d", count)
	}

	// Unsubscribing a missing handler must not panic.
	watcher.Unsubscribe("missing")
}

func TestNotifyDispatch(t *testing.T) {
	v := viper.New()
	watcher := NewWatcher(v)

	var mu sync.Mutex
	calls := make(map[string]int)
	record := func(id string) ChangeHandler {
		return func(got *viper.Viper) error {
			if got != v {
				t.Error("handler received a different viper instance")
			}
			mu.Lock()
			calls[id]++
			mu.Unlock()
			return nil
		}
	}

	watcher.Subscribe("a", record("a"))
	watcher.Subscribe("b", record("b"))

	watcher.Notify()
	watcher.Notify()

	mu.Lock()
	defer mu.Unlock()
	if calls["a"] != 2 || calls["b"] != 2 {
		t.Errorf("calls = %v, want both handlers called twice", calls)
	}
}

func TestNotifyContinuesPastFailure(t *testing.T) {
	watcher := NewWatcher(viper.New())

	called := false
	watcher.Subscribe("failing", func(*viper.Viper) error {
		return errors.New("handler rejected change")
	})
	watcher.Subscribe("healthy", func(*viper.Viper) error {
		called = true
		return nil
	})

	watcher.Notify()
	if !called {
		t.Error("a failing handler must not stop the remaining handlers")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rebind.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  ttl: 60\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	watcher := NewWatcher(v)
	watcher.Start()
	watcher.Start()
	if !watcher.IsWatching() {
		t.Error("watcher should be watching after Start")
	}

	watcher.Stop()
	watcher.Stop()
	if watcher.IsWatching() {
		t.Error("watcher should not be watching after Stop")
	}
}

func TestRestartArmsWatchOnce(t *testing.T) {
	watcher := NewWatcher(viper.New())

	arms := 0
	watcher.watchFile = func() { arms++ }

	watcher.Start()
	watcher.Stop()
	watcher.Start()

	if arms != 1 {
		t.Errorf("file watch armed %d times across restart, want 1", arms)
	}
	if !watcher.IsWatching() {
		t.Error("watcher should be watching after restart")
	}
}

func TestFileChangeFiresNotify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rebind.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  ttl: 60\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	watcher := NewWatcher(v)
	changed := make(chan struct{}, 1)
	watcher.Subscribe("listener", func(*viper.Viper) error {
		select {
		case changed <- struct{}{}:
		default:
		}
		return nil
	})
	watcher.Start()

	// Give fsnotify a moment to establish the watch before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("cache:\n  ttl: 120\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file change notification")
	}

	if got := v.GetInt("cache.ttl"); got != 120 {
		t.Errorf("cache.ttl = %d after change, want 120", got)
	}
}
