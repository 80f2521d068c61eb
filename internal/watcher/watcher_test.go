package watcher

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/billie-coop/minefile/internal/channel"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		path   string
		ignore bool
	}{
		{"/data/board.txt", false},
		{"/data/wordcount.out.txt", false},
		{"/data/.board.txt.123.tmp", true},
		{"/data/board.txt.tmp", true},
		{"/data/.gitignore", true},
		{"/data/board.txt.swp", true},
	}
	for _, tt := range tests {
		if got := shouldIgnore(tt.path); got != tt.ignore {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.ignore)
		}
	}
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	fired := make(chan struct{}, 10)

	d := NewDebouncer(30*time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
		fired <- struct{}{}
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Touch("/data/board.txt")
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("fire never called")
	}
	// Give a stray second fire the chance to show up
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("fire called %d times, want 1", calls)
	}
}

func TestDebouncer_IgnoresTempFiles(t *testing.T) {
	fired := make(chan struct{}, 1)
	d := NewDebouncer(10*time.Millisecond, func() { fired <- struct{}{} })
	defer d.Stop()

	d.Touch("/data/.board.txt.123.tmp")
	select {
	case <-fired:
		t.Error("fired for a temp file")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	fired := make(chan struct{}, 1)
	d := NewDebouncer(20*time.Millisecond, func() { fired <- struct{}{} })
	d.Touch("/data/board.txt")
	d.Stop()
	d.Touch("/data/board.txt")

	select {
	case <-fired:
		t.Error("fired after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotify_PulsesOnAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "board.txt")

	n, err := Notify(target, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	if err := channel.WriteFileAtomic(target, []byte("5 5 3"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-n.C():
	case <-time.After(2 * time.Second):
		t.Fatal("no pulse after write")
	}
}

func TestNotify_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	n, err := Notify(filepath.Join(dir, "board.txt"), 10*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	if err := channel.WriteFileAtomic(filepath.Join(dir, "wordcount.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-n.C():
		t.Error("pulse for unrelated file")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestNotify_MissingDir(t *testing.T) {
	if _, err := Notify(filepath.Join(t.TempDir(), "nope", "board.txt"), 0, nil); err == nil {
		t.Error("Notify on missing directory succeeded")
	}
}

func TestNotify_CloseTwice(t *testing.T) {
	n, err := Notify(filepath.Join(t.TempDir(), "board.txt"), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Close(); err != nil {
		t.Fatal(err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
