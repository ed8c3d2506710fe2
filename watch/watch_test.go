package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatcherReportsFilteredChanges(t *testing.T) {
	dir := t.TempDir()
	group := filepath.Join(dir, "walls")
	if err := os.MkdirAll(group, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	w, err := New(func(p string) bool { return strings.HasSuffix(p, ".png") }, dir, filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(group, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	want := filepath.Join(group, "brick.png")
	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case got := <-w.Events:
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestCloseTwice(t *testing.T) {
	w, err := New(nil, t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_ = w.Close()
	if _, ok := <-w.Events; ok {
		t.Fatalf("expected Events closed")
	}
}

func TestBase(t *testing.T) {
	f := Base("conf/tilemap.yaml")
	if !f("/home/u/conf/tilemap.yaml") || f("/home/u/conf/other.yaml") {
		t.Fatalf("Base filter mismatch")
	}
}
