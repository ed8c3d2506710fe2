package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const thumbPrefix = "tn_"

// thumbs keeps one PNG per map in a directory, named tn_<id>.png.
type thumbs struct {
	dir string
}

func (t thumbs) path(id int64) string {
	return filepath.Join(t.dir, fmt.Sprintf("%s%d.png", thumbPrefix, id))
}

func (t thumbs) write(id int64, data []byte) error {
	if data == nil {
		return nil
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("store: thumbnails dir: %w", err)
	}
	if err := os.WriteFile(t.path(id), data, 0o644); err != nil {
		return fmt.Errorf("store: write thumbnail %d: %w", id, err)
	}
	return nil
}

// store writes a thumbnail after its record is committed. A failure only
// loses the preview, so it is logged instead of returned.
func (t thumbs) store(id int64, data []byte) {
	if err := t.write(id, data); err != nil {
		log.Printf("store: %v", err)
	}
}

func (t thumbs) read(id int64) ([]byte, error) {
	data, err := os.ReadFile(t.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("store: thumbnail %d: %w", id, ErrNotFound)
	}
	return data, err
}

func (t thumbs) remove(id int64) error {
	err := os.Remove(t.path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: remove thumbnail %d: %w", id, err)
	}
	return nil
}

func (t thumbs) removeAll() error {
	entries, err := os.ReadDir(t.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read thumbnails: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), thumbPrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(t.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("store: remove %s: %w", e.Name(), err)
		}
	}
	return nil
}
