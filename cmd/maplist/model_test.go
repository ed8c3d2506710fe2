package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/milk9111/tilemap/catalog"
	"github.com/milk9111/tilemap/editor"
	"github.com/milk9111/tilemap/store"
	"github.com/milk9111/tilemap/tilemap"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back into m.
func run(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(model)
}

func press(t *testing.T, m model, s string) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(s))
	return next.(model), cmd
}

func seed(t *testing.T, st store.Store, name string, rows, cols int) int64 {
	t.Helper()
	tm, err := tilemap.New(rows, cols)
	if err != nil {
		t.Fatalf("tilemap.New: %v", err)
	}
	tm.Name = name
	data, err := tm.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	id, err := st.Create(name, data, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return id
}

func newTestModel(t *testing.T) (model, store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewJSONStore(filepath.Join(dir, "maps.json"), filepath.Join(dir, "thumbs"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	exports := filepath.Join(dir, "exports")
	m := newModel(st, catalog.New(catalog.BuiltinGroup()), editor.DefaultOptions(16), exports)
	return m, st, exports
}

func TestListAndDelete(t *testing.T) {
	m, st, _ := newTestModel(t)
	seed(t, st, "first", 2, 3)
	seed(t, st, "second", 4, 4)

	m = run(t, m, m.Init())
	if len(m.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.entries))
	}
	if !strings.Contains(m.View(), "first") {
		t.Fatalf("expected view to list maps, got:\n%s", m.View())
	}

	m, _ = press(t, m, "j")
	if m.cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.cursor)
	}
	target := m.entries[1]

	m, cmd := press(t, m, "d")
	if cmd != nil || m.confirm != confirmDelete {
		t.Fatalf("expected delete confirmation, got confirm=%v cmd=%v", m.confirm, cmd != nil)
	}
	m, cmd = press(t, m, "n")
	if cmd != nil || m.confirm != confirmNone {
		t.Fatalf("expected cancel to clear confirmation")
	}

	m, _ = press(t, m, "d")
	m, cmd = press(t, m, "y")
	m = run(t, m, cmd) // delete
	m = run(t, m, loadEntries(m.st))
	if len(m.entries) != 1 {
		t.Fatalf("expected 1 entry after delete, got %d", len(m.entries))
	}
	if m.entries[0].ID == target.ID {
		t.Fatalf("expected %d to be deleted", target.ID)
	}
	if m.cursor != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", m.cursor)
	}
}

func TestDeleteAll(t *testing.T) {
	m, st, _ := newTestModel(t)
	seed(t, st, "a", 1, 1)
	seed(t, st, "b", 1, 1)
	m = run(t, m, m.Init())

	m, _ = press(t, m, "D")
	if m.confirm != confirmDeleteAll {
		t.Fatalf("expected delete-all confirmation")
	}
	m, cmd := press(t, m, "y")
	m = run(t, m, cmd)
	m = run(t, m, loadEntries(m.st))
	if len(m.entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(m.entries))
	}
}

func TestExport(t *testing.T) {
	m, st, exports := newTestModel(t)
	seed(t, st, "export me", 2, 2)
	m = run(t, m, m.Init())

	for _, k := range []string{"e", "t"} {
		next, cmd := press(t, m, k)
		next = run(t, next, cmd)
		if strings.HasPrefix(next.status, "error") {
			t.Fatalf("%s: unexpected %s", k, next.status)
		}
	}

	files, err := os.ReadDir(exports)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected exported files in %s", exports)
	}
	for _, f := range files {
		if !strings.HasPrefix(f.Name(), "TiledMap_") || !strings.HasSuffix(f.Name(), ".png") {
			t.Fatalf("unexpected export file %s", f.Name())
		}
	}
}
