package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// JSONStore keeps every map in a single JSON file.
type JSONStore struct {
	filePath string
	thumbs   thumbs
	mutex    sync.RWMutex
	data     *jsonData
	now      func() time.Time
}

type jsonData struct {
	NextID int64            `json:"next_id"`
	Maps   map[int64]Record `json:"maps"`
}

// NewJSONStore opens or creates the store file at filePath. Thumbnails go
// to thumbsDir, or to .thumbs next to the file when thumbsDir is empty.
func NewJSONStore(filePath, thumbsDir string) (*JSONStore, error) {
	if thumbsDir == "" {
		thumbsDir = filepath.Join(filepath.Dir(filePath), ".thumbs")
	}
	store := &JSONStore{
		filePath: filePath,
		thumbs:   thumbs{dir: thumbsDir},
		data:     &jsonData{NextID: 1, Maps: make(map[int64]Record)},
		now:      time.Now,
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("store: load %s: %w", filePath, err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", filePath, err)
		}
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", filePath, err)
		}
	}
	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Maps == nil {
		js.data.Maps = make(map[int64]Record)
	}
	for id := range js.data.Maps {
		if id >= js.data.NextID {
			js.data.NextID = id + 1
		}
	}
	return nil
}

// saveToFile must be called with the mutex held.
func (js *JSONStore) saveToFile() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := js.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, js.filePath)
}

func (js *JSONStore) Create(name string, data, thumbnail []byte) (int64, error) {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	id := js.data.NextID
	now := js.now()
	js.data.Maps[id] = Record{ID: id, Name: name, Data: string(data), Created: now, Updated: now}
	js.data.NextID++
	if err := js.saveToFile(); err != nil {
		delete(js.data.Maps, id)
		js.data.NextID--
		return 0, fmt.Errorf("store: create %q: %w", name, err)
	}
	js.thumbs.store(id, thumbnail)
	return id, nil
}

func (js *JSONStore) Update(id int64, name string, data, thumbnail []byte) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	prev, ok := js.data.Maps[id]
	if !ok {
		return fmt.Errorf("store: update %d: %w", id, ErrNotFound)
	}
	rec := prev
	rec.Name = name
	rec.Data = string(data)
	rec.Updated = js.now()
	js.data.Maps[id] = rec
	if err := js.saveToFile(); err != nil {
		js.data.Maps[id] = prev
		return fmt.Errorf("store: update %d: %w", id, err)
	}
	js.thumbs.store(id, thumbnail)
	return nil
}

func (js *JSONStore) Get(id int64) (Record, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	rec, ok := js.data.Maps[id]
	if !ok {
		return Record{}, fmt.Errorf("store: get %d: %w", id, ErrNotFound)
	}
	return rec, nil
}

func (js *JSONStore) List() ([]Record, error) {
	js.mutex.RLock()
	out := make([]Record, 0, len(js.data.Maps))
	for _, rec := range js.data.Maps {
		out = append(out, rec)
	}
	js.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Updated.Equal(out[j].Updated) {
			return out[i].Updated.After(out[j].Updated)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (js *JSONStore) Delete(id int64) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	prev, ok := js.data.Maps[id]
	if !ok {
		return fmt.Errorf("store: delete %d: %w", id, ErrNotFound)
	}
	delete(js.data.Maps, id)
	if err := js.saveToFile(); err != nil {
		js.data.Maps[id] = prev
		return fmt.Errorf("store: delete %d: %w", id, err)
	}
	return js.thumbs.remove(id)
}

func (js *JSONStore) DeleteAll() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	prev := js.data.Maps
	js.data.Maps = make(map[int64]Record)
	if err := js.saveToFile(); err != nil {
		js.data.Maps = prev
		return fmt.Errorf("store: delete all: %w", err)
	}
	return js.thumbs.removeAll()
}

func (js *JSONStore) Thumbnail(id int64) ([]byte, error) {
	return js.thumbs.read(id)
}

func (js *JSONStore) Close() error { return nil }
