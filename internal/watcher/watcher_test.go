package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFilters(t *testing.T) {
	md := Extension(".md")
	if !md("/x/feed.md") || !md("/x/FEED.MD") || md("/x/feed.md.tmp") {
		t.Error("Extension filter mismatch")
	}
	snap := Base("default.json")
	if !snap("/store/default.json") || snap("/store/other.json") {
		t.Error("Base filter mismatch")
	}
}

func TestWatcherDebouncesMatchingEvents(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	fired := make(chan struct{}, 10)

	w, err := New([]string{dir}, func() {
		calls.Add(1)
		fired <- struct{}{}
	}, WithDelay(50*time.Millisecond), WithFilter(Extension(".md")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, nil)

	for _, name := range []string{"a.md", "b.md", "c.md", "ignored.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired")
	}
	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback fired %d times, want 1", got)
	}
}

func TestWatcherIgnoresFilteredEvents(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32

	w, err := New([]string{dir}, func() { calls.Add(1) },
		WithDelay(20*time.Millisecond), WithFilter(Base("default.json")))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, nil)

	_ = os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o600)
	time.Sleep(200 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("callback fired for a filtered path")
	}
}

func TestNewFailsOnMissingPath(t *testing.T) {
	if _, err := New([]string{filepath.Join(t.TempDir(), "absent")}, func() {}); err == nil {
		t.Error("New on a missing path should fail")
	}
}
