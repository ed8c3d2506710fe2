package editor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/milk9111/tilemap/render"
)

// Destination receives exported image bytes.
type Destination interface {
	// Write stores data under name and returns where it went.
	Write(name string, data []byte) (string, error)
}

// DirDestination writes exports into a directory.
type DirDestination struct {
	Dir string
}

func (d DirDestination) Write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("editor: export dir: %w", err)
	}
	path := filepath.Join(d.Dir, name)
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("editor: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("editor: write %s: %w", path, err)
	}
	return path, nil
}

// ExportName returns the file name for an export made at t.
func ExportName(t time.Time, f render.Format) string {
	return "TiledMap_" + t.Format("2006_01_02_1504") + f.Ext()
}

// ExportResult reports how an export ended.
type ExportResult struct {
	Location string
	Bytes    int
	Elapsed  time.Duration
	Err      error
}

// ExportKind selects full resolution or thumbnail output.
type ExportKind int

const (
	ExportFull ExportKind = iota
	ExportThumbnail
)

// Export renders the map in the background and delivers the bytes to dst.
// The map and its tile images are captured before Export returns, so edits
// made afterwards do not show up in the output. The channel receives one
// result and is then closed.
func (s *Session) Export(dst Destination, kind ExportKind) <-chan ExportResult {
	return s.ExportAs(dst, kind, s.opts.Format, s.opts.Quality)
}

// ExportAs is Export with an explicit format and quality.
func (s *Session) ExportAs(dst Destination, kind ExportKind, format render.Format, quality int) <-chan ExportResult {
	m := s.Map.Clone()
	imgs := s.cache.Snapshot()
	r := render.New(s.renderer.Options())
	name := ExportName(time.Now(), format)

	out := make(chan ExportResult, 1)
	s.exports.Add(1)
	go func() {
		defer s.exports.Done()
		defer close(out)

		start := time.Now()
		var (
			data []byte
			err  error
		)
		if kind == ExportThumbnail {
			data, err = r.ExportThumbnail(m, imgs, format, quality)
		} else {
			data, err = r.ExportFull(m, imgs, format, quality)
		}
		if err != nil {
			log.Printf("editor: export %q: %v", m.Name, err)
			out <- ExportResult{Err: err, Elapsed: time.Since(start)}
			return
		}
		loc, err := dst.Write(name, data)
		if err != nil {
			log.Printf("editor: export %q: %v", m.Name, err)
		} else {
			log.Printf("editor: exported %q to %s in %v", m.Name, loc, time.Since(start))
		}
		out <- ExportResult{Location: loc, Bytes: len(data), Elapsed: time.Since(start), Err: err}
	}()
	return out
}
