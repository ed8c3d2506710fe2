// Package editor runs one map editing session: it routes gestures to the
// map, keeps the tile cache in step with the cells, and saves and exports
// the result.
package editor

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/milk9111/tilemap/catalog"
	"github.com/milk9111/tilemap/config"
	"github.com/milk9111/tilemap/gesture"
	"github.com/milk9111/tilemap/render"
	"github.com/milk9111/tilemap/store"
	"github.com/milk9111/tilemap/tilecache"
	"github.com/milk9111/tilemap/tilemap"
)

// DefaultName is used when a map is renamed to nothing.
const DefaultName = "Untitled"

type Options struct {
	Policy      tilemap.ViewPolicy
	Gesture     gesture.Config
	Render      render.Options
	Format      render.Format
	Quality     int
	WheelFactor float64
	Rand        *rand.Rand
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Policy:      cfg.ViewPolicy(),
		Gesture:     cfg.GestureConfig(),
		Render:      cfg.RenderOptions(),
		Format:      cfg.ExportFormat(),
		Quality:     cfg.Export.Quality,
		WheelFactor: cfg.Zoom.WheelFactor,
	}
}

func DefaultOptions(tileSize int) Options {
	ro := render.DefaultOptions()
	ro.TileSize = tileSize
	return Options{
		Policy:      tilemap.DefaultViewPolicy(float64(tileSize)),
		Gesture:     gesture.DefaultConfig(float64(tileSize)),
		Render:      ro,
		Format:      render.PNG,
		Quality:     90,
		WheelFactor: 1.1,
	}
}

// Prompt is a question the session needs the user to answer.
type Prompt int

const (
	PromptNone Prompt = iota
	PromptPickTile
	PromptDeleteTile
)

func (p Prompt) String() string {
	switch p {
	case PromptPickTile:
		return "pick-tile"
	case PromptDeleteTile:
		return "delete-tile"
	default:
		return "none"
	}
}

// Pending is the prompt waiting for an answer and the cell it is about.
type Pending struct {
	Prompt   Prompt
	Row, Col int
}

// Session owns a map and everything derived from it. Apart from Export, its
// methods must be called from a single goroutine.
type Session struct {
	Map *tilemap.Map
	ID  int64

	opts     Options
	catalog  *catalog.Catalog
	cache    *tilecache.Cache
	gestures *gesture.Interpreter
	renderer *render.Renderer
	viewport tilemap.Viewport
	rng      *rand.Rand

	pending Pending
	dirty   bool
	exports sync.WaitGroup
}

// New starts a session on m, resolving the tiles its cells reference. Cells
// whose tile cannot be decoded are cleared.
func New(m *tilemap.Map, cat *catalog.Catalog, opts Options) *Session {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cat == nil {
		cat = catalog.New()
	}
	s := &Session{
		Map:      m,
		opts:     opts,
		catalog:  cat,
		cache:    tilecache.New(cat, opts.Render.TileSize),
		gestures: gesture.NewInterpreter(opts.Gesture),
		renderer: render.New(opts.Render),
		rng:      rng,
	}
	s.hydrate()
	return s
}

// NewMap creates an empty rows x columns map after checking that a full
// resolution export of it would fit in memory.
func NewMap(rows, columns int, cat *catalog.Catalog, opts Options) (*Session, error) {
	m, err := tilemap.New(rows, columns)
	if err != nil {
		return nil, err
	}
	if err := checkBudget(m, opts); err != nil {
		return nil, fmt.Errorf("editor: new %dx%d map: %w", rows, columns, err)
	}
	return New(m, cat, opts), nil
}

// checkBudget reports whether a full resolution render of m fits in the
// configured pixel budget.
func checkBudget(m *tilemap.Map, opts Options) error {
	ts := opts.Render.TileSize
	return render.CheckBudget(m.Columns*ts, m.Rows*ts, opts.Render.MaxPixels)
}

// Load opens a stored map.
func Load(st store.Store, id int64, cat *catalog.Catalog, opts Options) (*Session, error) {
	rec, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	m, err := tilemap.Deserialize([]byte(rec.Data))
	if err != nil {
		return nil, fmt.Errorf("editor: load %d: %w", id, err)
	}
	if m.Name == "" {
		m.Name = rec.Name
	}
	if err := checkBudget(m, opts); err != nil {
		return nil, fmt.Errorf("editor: load %d: %w", id, err)
	}
	s := New(m, cat, opts)
	s.ID = id
	return s, nil
}

// Resume rebuilds a session from a suspend snapshot.
func Resume(snap tilemap.Snapshot, id int64, cat *catalog.Catalog, opts Options) (*Session, error) {
	m, err := tilemap.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("editor: resume: %w", err)
	}
	if err := checkBudget(m, opts); err != nil {
		return nil, fmt.Errorf("editor: resume: %w", err)
	}
	s := New(m, cat, opts)
	s.ID = id
	return s, nil
}

func (s *Session) hydrate() {
	var failed []tilecache.Pos
	s.Map.Occupied(func(row, col int, c tilemap.Cell) {
		if _, err := s.cache.Place(row, col, c.Tile); err != nil {
			log.Printf("editor: tile %s at (%d,%d): %v", c.Tile, row, col, err)
			failed = append(failed, tilecache.Pos{Row: row, Col: col})
		}
	})
	for _, p := range failed {
		_ = s.Map.ClearCell(p.Row, p.Col)
	}
}

func (s *Session) Options() Options { return s.opts }

// Configure applies new settings. A tile size change re-decodes every tile.
func (s *Session) Configure(opts Options) {
	if opts.Rand == nil {
		opts.Rand = s.opts.Rand
	}
	resize := opts.Render.TileSize != s.opts.Render.TileSize
	s.opts = opts
	s.gestures.SetConfig(opts.Gesture)
	s.renderer.SetOptions(opts.Render)
	if resize {
		s.cache.ReleaseAll()
		s.cache = tilecache.New(s.catalog, opts.Render.TileSize)
		s.hydrate()
	}
}

// SetCatalog swaps the tile catalog, keeping tiles already decoded.
func (s *Session) SetCatalog(cat *catalog.Catalog) {
	s.catalog = cat
	s.cache.SetSource(cat)
}

func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

func (s *Session) Cache() *tilecache.Cache { return s.cache }

func (s *Session) Renderer() *render.Renderer { return s.renderer }

func (s *Session) GestureState() gesture.State { return s.gestures.State() }

func (s *Session) SetViewport(vp tilemap.Viewport) { s.viewport = vp }

func (s *Session) Viewport() tilemap.Viewport { return s.viewport }

func (s *Session) Pending() Pending { return s.pending }

func (s *Session) ClearPending() { s.pending = Pending{} }

// Dirty reports whether the map changed since it was loaded or saved.
func (s *Session) Dirty() bool { return s.dirty }

// Feed passes a touch sample through the gesture interpreter and acts on
// the result. It reports whether the view needs redrawing.
func (s *Session) Feed(t gesture.Touch) bool {
	redraw := false
	for _, ev := range s.gestures.Feed(t, s.Map) {
		if s.HandleEvent(ev) {
			redraw = true
		}
	}
	return redraw
}

// HandleEvent acts on one gesture event. A short press on an empty cell asks
// for a tile and on a filled cell rotates it; a long press on a filled cell
// asks to delete it. It reports whether the event was handled.
func (s *Session) HandleEvent(ev gesture.Event) bool {
	switch e := ev.(type) {
	case gesture.Tap:
		if e.Empty {
			s.pending = Pending{Prompt: PromptPickTile, Row: e.Row, Col: e.Col}
			return true
		}
		return s.RotateTile(e.Row, e.Col) == nil
	case gesture.LongPress:
		if e.Empty {
			return false
		}
		s.pending = Pending{Prompt: PromptDeleteTile, Row: e.Row, Col: e.Col}
		return true
	case gesture.PanZoom:
		scale := s.Map.ClampScale(s.viewport, s.opts.Policy, e.Scale)
		ox, oy := e.OffsetAt(scale)
		return s.Map.UpdateView(s.viewport, s.opts.Policy, scale, ox, oy)
	}
	return false
}

// ZoomAt scales the view by factor around the screen point (x, y).
func (s *Session) ZoomAt(x, y, factor float64) bool {
	scale, ox, oy := s.Map.View()
	next := s.Map.ClampScale(s.viewport, s.opts.Policy, scale*factor)
	px := (x - ox) / scale
	py := (y - oy) / scale
	return s.Map.UpdateView(s.viewport, s.opts.Policy, next, x-px*next, y-py*next)
}

// Wheel zooms one step in or out around (x, y) for a wheel delta.
func (s *Session) Wheel(x, y, delta float64) bool {
	if delta == 0 {
		return false
	}
	f := s.opts.WheelFactor
	if f <= 1 {
		f = 1.1
	}
	if delta < 0 {
		f = 1 / f
	}
	return s.ZoomAt(x, y, f)
}

// PlaceTile puts tile id at (row, col). If the tile cannot be decoded the
// cell is left as it was and the error is returned for the user.
func (s *Session) PlaceTile(row, col int, id string) error {
	if !s.Map.Contains(row, col) {
		_, err := s.Map.Cell(row, col)
		return err
	}
	if _, err := s.cache.Place(row, col, id); err != nil {
		log.Printf("editor: place %s at (%d,%d): %v", id, row, col, err)
		return err
	}
	if err := s.Map.SetCell(row, col, id, 0); err != nil {
		s.cache.Release(row, col)
		return err
	}
	s.dirty = true
	return nil
}

// PlaceItem places the catalog entry at index, drawing from its group when
// the entry is a random marker.
func (s *Session) PlaceItem(row, col, index int) (catalog.Item, error) {
	it, err := s.catalog.Pick(index, s.rng)
	if err != nil {
		return catalog.Item{}, err
	}
	return it, s.PlaceTile(row, col, it.ID)
}

func (s *Session) RotateTile(row, col int) error {
	c, err := s.Map.Cell(row, col)
	if err != nil {
		return err
	}
	if c.Empty() {
		return nil
	}
	if _, err := s.Map.RotateCell(row, col); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *Session) ClearTile(row, col int) error {
	if err := s.Map.ClearCell(row, col); err != nil {
		return err
	}
	s.cache.Release(row, col)
	s.dirty = true
	return nil
}

// Resolve answers the pending prompt. For a pick it places the catalog
// entry at index; for a delete, confirm decides whether the tile goes.
func (s *Session) Resolve(index int, confirm bool) error {
	p := s.pending
	s.pending = Pending{}
	switch p.Prompt {
	case PromptPickTile:
		if index < 0 {
			return nil
		}
		_, err := s.PlaceItem(p.Row, p.Col, index)
		return err
	case PromptDeleteTile:
		if !confirm {
			return nil
		}
		return s.ClearTile(p.Row, p.Col)
	}
	return nil
}

// ResolveFile answers a pending pick with an image file outside the
// catalog. An empty path cancels the pick.
func (s *Session) ResolveFile(path string) error {
	p := s.pending
	s.pending = Pending{}
	if p.Prompt != PromptPickTile || strings.TrimSpace(path) == "" {
		return nil
	}
	return s.PlaceTile(p.Row, p.Col, catalog.External(strings.TrimSpace(path)))
}

// Rename sets the map name. Blank names become DefaultName.
func (s *Session) Rename(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	if name != s.Map.Name {
		s.Map.Name = name
		s.dirty = true
	}
}

// Draw renders the visible part of the map and returns the tiles drawn.
func (s *Session) Draw(c render.Canvas) int {
	return s.renderer.DrawViewport(c, s.viewport, s.Map, s.cache)
}

// Snapshot captures the map for a later Resume.
func (s *Session) Snapshot() tilemap.Snapshot { return s.Map.Snapshot() }

// Thumbnail renders the map's thumbnail as PNG.
func (s *Session) Thumbnail() ([]byte, error) {
	return s.renderer.ExportThumbnail(s.Map, s.cache, render.PNG, 0)
}

// Save writes the map and its thumbnail, creating a record the first time.
// A thumbnail that cannot be rendered is skipped; the map is still saved.
func (s *Session) Save(st store.Store) (int64, error) {
	if strings.TrimSpace(s.Map.Name) == "" {
		s.Map.Name = DefaultName
	}
	data, err := s.Map.Serialize()
	if err != nil {
		return 0, err
	}
	thumb, err := s.Thumbnail()
	if err != nil {
		log.Printf("editor: thumbnail for %q: %v", s.Map.Name, err)
		thumb = nil
	}

	if s.ID != 0 {
		err = st.Update(s.ID, s.Map.Name, data, thumb)
		if err == nil {
			s.dirty = false
			return s.ID, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return 0, err
		}
	}
	id, err := st.Create(s.Map.Name, data, thumb)
	if id != 0 {
		s.ID = id
	}
	if err != nil {
		return 0, err
	}
	s.dirty = false
	return id, nil
}

// Wait blocks until every export started so far has reported.
func (s *Session) Wait() { s.exports.Wait() }

// Close releases every decoded tile. Running exports keep their own
// snapshot and finish on their own.
func (s *Session) Close() {
	s.gestures.Reset()
	s.pending = Pending{}
	s.cache.ReleaseAll()
}
