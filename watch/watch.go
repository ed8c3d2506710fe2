// Package watch reports changes to tile directories and settings files.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// Filter decides whether a changed path is worth reporting.
type Filter func(path string) bool

type Watcher struct {
	watcher *fsnotify.Watcher
	filter  Filter
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// New watches each path. Directories are watched together with their
// immediate subdirectories so new tiles in a group are seen; paths that do
// not exist are skipped. A nil filter reports everything.
func New(filter Filter, paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			// editors replace files on save, so watch the parent
			p = filepath.Dir(p)
		}
		if err := w.Add(p); err != nil {
			_ = w.Close()
			return nil, err
		}
		if info.IsDir() {
			entries, _ := os.ReadDir(p)
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				if err := w.Add(filepath.Join(p, e.Name())); err != nil {
					_ = w.Close()
					return nil, err
				}
			}
		}
	}

	watcher := &Watcher{
		watcher: w,
		filter:  filter,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if w.filter != nil && !w.filter(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// Base returns a filter that matches a single file name.
func Base(name string) Filter {
	return func(path string) bool { return filepath.Base(path) == filepath.Base(name) }
}
