// Package catalog lists the tiles a map can be drawn with. Tiles come in
// ordered groups; each group is preceded by a random marker that stands for
// "any tile of the group that follows".
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrNotFound = errors.New("catalog: not found")

// Identifier prefixes.
const (
	AssetPrefix    = "assets:"
	ExternalPrefix = "external:"
	BuiltinPrefix  = "builtin:"
	randomPrefix   = "random_"
)

type Kind int

const (
	KindTile Kind = iota
	KindRandom
)

// Item is one entry in the catalog. Random markers carry the number of
// entries that follow them in their group.
type Item struct {
	ID    string
	Group string
	Kind  Kind
	Count int
}

func (it Item) Random() bool { return it.Kind == KindRandom }

// Group is a named, ordered set of tile identifiers.
type Group struct {
	Name  string
	Tiles []string
}

// Catalog is an ordered list of items plus the means to read their bytes.
type Catalog struct {
	items  []Item
	assets map[string]fs.FS
}

// New builds a catalog from groups in the order given. Empty groups are skipped.
func New(groups ...Group) *Catalog {
	c := &Catalog{assets: make(map[string]fs.FS)}
	for _, g := range groups {
		c.add(g)
	}
	return c
}

func (c *Catalog) add(g Group) {
	if len(g.Tiles) == 0 {
		return
	}
	c.items = append(c.items, Item{
		ID:    randomPrefix + strconv.Itoa(len(g.Tiles)),
		Group: g.Name,
		Kind:  KindRandom,
		Count: len(g.Tiles),
	})
	for _, id := range g.Tiles {
		c.items = append(c.items, Item{ID: id, Group: g.Name, Kind: KindTile})
	}
}

// AddFS appends the image groups found in fsys. Later roots shadow earlier
// ones for identical identifiers.
func (c *Catalog) AddFS(fsys fs.FS) error {
	groups, err := ScanGroups(fsys)
	if err != nil {
		return err
	}
	for _, g := range groups {
		for _, id := range g.Tiles {
			c.assets[id] = fsys
		}
		c.add(g)
	}
	return nil
}

// Load builds a catalog from tile directories on disk, optionally starting
// with the built-in set. Missing directories are skipped.
func Load(dirs []string, builtin bool) (*Catalog, error) {
	c := New()
	if builtin {
		c.add(BuiltinGroup())
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := c.AddFS(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("catalog: load %s: %w", dir, err)
		}
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.items) }

func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Item(i int) (Item, error) {
	if i < 0 || i >= len(c.items) {
		return Item{}, fmt.Errorf("catalog: item %d: %w", i, ErrNotFound)
	}
	return c.items[i], nil
}

// Siblings returns the entries a random marker at index i stands for: the
// next Count items in catalog order.
func (c *Catalog) Siblings(i int) ([]Item, error) {
	it, err := c.Item(i)
	if err != nil {
		return nil, err
	}
	if !it.Random() {
		return []Item{it}, nil
	}
	end := min(i+1+it.Count, len(c.items))
	return c.items[i+1 : end], nil
}

// Pick resolves the item at index i to a concrete tile. Tiles resolve to
// themselves; random markers choose uniformly among their siblings.
func (c *Catalog) Pick(i int, rng *rand.Rand) (Item, error) {
	sib, err := c.Siblings(i)
	if err != nil {
		return Item{}, err
	}
	if len(sib) == 0 {
		return Item{}, fmt.Errorf("catalog: random item %d has no siblings: %w", i, ErrNotFound)
	}
	if len(sib) == 1 {
		return sib[0], nil
	}
	var n int
	if rng != nil {
		n = rng.IntN(len(sib))
	} else {
		n = rand.IntN(len(sib))
	}
	return sib[n], nil
}

// Open returns the raw bytes of a tile.
func (c *Catalog) Open(id string) ([]byte, error) {
	switch {
	case strings.HasPrefix(id, AssetPrefix):
		fsys, ok := c.assets[id]
		if !ok {
			return nil, fmt.Errorf("catalog: open %s: %w", id, ErrNotFound)
		}
		return fs.ReadFile(fsys, strings.TrimPrefix(id, AssetPrefix))
	case strings.HasPrefix(id, ExternalPrefix):
		return os.ReadFile(filepath.FromSlash(strings.TrimPrefix(id, ExternalPrefix)))
	case strings.HasPrefix(id, BuiltinPrefix):
		data, ok := builtinTile(strings.TrimPrefix(id, BuiltinPrefix))
		if !ok {
			return nil, fmt.Errorf("catalog: open %s: %w", id, ErrNotFound)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("catalog: open %s: unknown source: %w", id, ErrNotFound)
	}
}

// External returns the identifier for a user-picked image file.
func External(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return ExternalPrefix + filepath.ToSlash(path)
}
