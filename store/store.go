// Package store persists named maps with their thumbnails.
package store

import (
	"errors"
	"fmt"
	"os"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Record is one stored map. Data holds the serialized map document.
type Record struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Data    string    `json:"data"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Store keeps maps and their thumbnails. Deleting a map removes its
// thumbnail too. A thumbnail that cannot be written is logged and does not
// fail Create or Update.
type Store interface {
	Create(name string, data, thumbnail []byte) (int64, error)
	Update(id int64, name string, data, thumbnail []byte) error
	Get(id int64) (Record, error)
	// List returns every map, most recently updated first.
	List() ([]Record, error)
	Delete(id int64) error
	DeleteAll() error
	Thumbnail(id int64) ([]byte, error)
	Close() error
}

type Config struct {
	Driver string
	Path   string
	Thumbs string
	DSN    string
}

// Open returns the backend named by cfg.Driver. An empty DSN falls back to
// the DATABASE_URL environment variable.
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "json":
		return NewJSONStore(cfg.Path, cfg.Thumbs)
	case "postgres":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = os.Getenv("DATABASE_URL")
		}
		return NewPostgresStore(dsn, cfg.Thumbs)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
