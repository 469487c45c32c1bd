package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const watchedDoc = `
sections:
  - category: Design
    tools:
      - name: Vibe Design
        url: https://uizard.io/
`

const watchedDocUpdated = `
sections:
  - category: Design
    tools:
      - name: Vibe Design
        url: https://uizard.io/
      - name: Vibe Product Design
        url: https://www.usegalileo.ai/
`

// watcherTestEnv writes an initial catalog file and loads it.
func watcherTestEnv(t *testing.T) (string, *Catalog) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tools.yaml")
	if err := os.WriteFile(path, []byte(watchedDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return path, c
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// startWatch runs Watch in the background and returns a getter for the
// latest delivered catalog and the number of deliveries.
func startWatch(t *testing.T, path string, initial *Catalog) func() (*Catalog, int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	latest := initial
	deliveries := 0

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, path, initial, quietLogger(), func(c *Catalog) {
			mu.Lock()
			latest = c
			deliveries++
			mu.Unlock()
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	time.Sleep(100 * time.Millisecond)

	return func() (*Catalog, int) {
		mu.Lock()
		defer mu.Unlock()
		return latest, deliveries
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path, initial := watcherTestEnv(t)
	get := startWatch(t, path, initial)

	_ = os.WriteFile(path, []byte(watchedDocUpdated), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		c, _ := get()
		return c.Len() == 2
	}, "updated catalog not delivered by watcher")

	c, _ := get()
	if c == initial {
		t.Error("expected a new catalog reference after reload")
	}
}

func TestWatcher_InvalidDocumentKeepsPrevious(t *testing.T) {
	path, initial := watcherTestEnv(t)
	get := startWatch(t, path, initial)

	_ = os.WriteFile(path, []byte("tools: [ {{{ "), 0o644)
	time.Sleep(500 * time.Millisecond)

	c, n := get()
	if n != 0 || c != initial {
		t.Fatalf("invalid document should not be delivered (deliveries=%d)", n)
	}

	_ = os.WriteFile(path, []byte(watchedDocUpdated), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		c, _ := get()
		return c.Len() == 2
	}, "watcher did not recover after a valid write")
}

func TestWatcher_RenameOverReloads(t *testing.T) {
	path, initial := watcherTestEnv(t)
	get := startWatch(t, path, initial)

	tmp := filepath.Join(filepath.Dir(path), ".tools.yaml.tmp")
	_ = os.WriteFile(tmp, []byte(watchedDocUpdated), 0o644)
	_ = os.Rename(tmp, path)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		c, _ := get()
		return c.Len() == 2
	}, "rename-over save not picked up")
}

func TestWatcher_UnchangedContentIgnored(t *testing.T) {
	path, initial := watcherTestEnv(t)
	get := startWatch(t, path, initial)

	_ = os.WriteFile(path, []byte(watchedDoc), 0o644)
	time.Sleep(500 * time.Millisecond)

	if _, n := get(); n != 0 {
		t.Errorf("identical rewrite delivered %d reloads, want 0", n)
	}
}
