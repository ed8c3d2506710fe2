package main

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/milk9111/tilemap/catalog"
	"github.com/milk9111/tilemap/config"
	"github.com/milk9111/tilemap/editor"
	"github.com/milk9111/tilemap/gesture"
	"github.com/milk9111/tilemap/render"
	"github.com/milk9111/tilemap/store"
	"github.com/milk9111/tilemap/tilemap"
	"github.com/milk9111/tilemap/watch"
)

const statusTTL = 4 * time.Second

var backgroundColor = color.NRGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xff}

type Game struct {
	cfgPath string
	cfg     config.Config
	store   store.Store
	session *editor.Session

	input  *Input
	canvas *screenCanvas
	ui     *editorUI

	tilesWatcher  *watch.Watcher
	configWatcher *watch.Watcher

	exports  []<-chan editor.ExportResult
	status   string
	statusAt time.Time
	modal    bool
	done     bool
}

func NewGame(cfgPath string, cfg config.Config, st store.Store, s *editor.Session) *Game {
	g := &Game{
		cfgPath: cfgPath,
		cfg:     cfg,
		store:   st,
		session: s,
		input:   NewInput(),
		canvas:  newScreenCanvas(),
		ui:      newEditorUI(newTilePicker(s.Catalog())),
	}

	if cfg.Tiles.Watch {
		w, err := watch.New(catalog.IsImage, cfg.Tiles.Dirs...)
		if err != nil {
			log.Printf("watch tiles: %v", err)
		} else {
			g.tilesWatcher = w
		}
	}
	if cfgPath != "" {
		w, err := watch.New(watch.Base(cfgPath), cfgPath)
		if err != nil {
			log.Printf("watch config: %v", err)
		} else {
			g.configWatcher = w
		}
	}
	return g
}

func (g *Game) Update() error {
	now := time.Now()
	g.pollExports()
	g.pollWatchers()
	if g.done {
		return ebiten.Termination
	}
	if ebiten.IsWindowBeingClosed() && !g.ui.Modal() {
		g.requestQuit()
	}

	g.ui.Update()
	touches := g.input.Update(now)
	if g.ui.Modal() {
		if !g.modal {
			g.session.Feed(gesture.Touch{Action: gesture.Cancel, Time: now})
		}
		g.modal = true
		return nil
	}
	g.modal = false

	for _, t := range touches {
		g.session.Feed(t)
	}
	if g.input.Wheel != 0 {
		g.session.Wheel(g.input.CursorX, g.input.CursorY, g.input.Wheel)
	}
	g.prompt()

	switch {
	case g.input.Save:
		g.save()
	case g.input.Export:
		g.export(editor.DirDestination{Dir: g.cfg.Export.Dir}, editor.ExportFull, g.session.Options().Format)
	case g.input.Thumbnail:
		g.export(editor.DirDestination{Dir: g.cfg.Export.Dir}, editor.ExportThumbnail, g.session.Options().Format)
	case g.input.Share:
		g.export(clipboardDestination{}, editor.ExportFull, render.PNG)
	case g.input.ToggleGrid:
		opts := g.session.Options()
		opts.Render.ShowGrid = !opts.Render.ShowGrid
		g.session.Configure(opts)
	case g.input.Rename:
		g.ui.text.Open("Rename map", g.session.Map.Name, func(name string, ok bool) {
			if ok {
				g.session.Rename(name)
			}
		})
	case g.input.Quit:
		g.requestQuit()
	}
	return nil
}

// prompt opens the overlay that answers the session's pending question.
func (g *Game) prompt() {
	switch g.session.Pending().Prompt {
	case editor.PromptPickTile:
		g.ui.picker.Open(func(index int) {
			if err := g.session.Resolve(index, false); err != nil {
				g.setStatus(fmt.Sprintf("cannot place tile: %v", err))
			}
		}, func() {
			g.ui.text.Open("Image file", "", func(path string, ok bool) {
				if !ok {
					path = ""
				}
				if err := g.session.ResolveFile(path); err != nil {
					g.setStatus(fmt.Sprintf("cannot place image: %v", err))
				}
			})
		})
	case editor.PromptDeleteTile:
		answer := func(yes bool) func() {
			return func() {
				if err := g.session.Resolve(0, yes); err != nil {
					g.setStatus(fmt.Sprintf("cannot delete tile: %v", err))
				}
			}
		}
		g.ui.confirm.Open("Delete this tile?", answer(true), answer(false))
	}
}

func (g *Game) save() bool {
	id, err := g.session.Save(g.store)
	if err != nil {
		log.Printf("save %q: %v", g.session.Map.Name, err)
		g.setStatus(fmt.Sprintf("save failed: %v", err))
		return false
	}
	g.setStatus(fmt.Sprintf("saved %q (#%d)", g.session.Map.Name, id))
	return true
}

func (g *Game) export(dst editor.Destination, kind editor.ExportKind, format render.Format) {
	g.exports = append(g.exports, g.session.ExportAs(dst, kind, format, g.session.Options().Quality))
	g.setStatus("exporting...")
}

func (g *Game) requestQuit() {
	if !g.session.Dirty() {
		g.done = true
		return
	}
	g.ui.confirm.Open(fmt.Sprintf("Save changes to %q?", g.session.Map.Name),
		func() { g.done = g.save() },
		func() { g.done = true },
	)
}

func (g *Game) pollExports() {
	pending := g.exports[:0]
	for _, ch := range g.exports {
		select {
		case res, ok := <-ch:
			if !ok {
				continue
			}
			if res.Err != nil {
				g.setStatus(fmt.Sprintf("export failed: %v", res.Err))
			} else {
				g.setStatus(fmt.Sprintf("exported %s (%d bytes, %v)", res.Location, res.Bytes, res.Elapsed.Round(time.Millisecond)))
			}
		default:
			pending = append(pending, ch)
		}
	}
	g.exports = pending
}

func (g *Game) pollWatchers() {
	if g.tilesWatcher != nil {
		changed := false
		for drained := false; !drained; {
			select {
			case p, ok := <-g.tilesWatcher.Events:
				if !ok {
					g.tilesWatcher = nil
					drained = true
					break
				}
				log.Printf("tiles: %s changed", p)
				changed = true
			default:
				drained = true
			}
		}
		if changed {
			g.reloadTiles()
		}
	}
	if g.configWatcher != nil {
		select {
		case _, ok := <-g.configWatcher.Events:
			if !ok {
				g.configWatcher = nil
				break
			}
			g.reloadConfig()
		default:
		}
	}
}

func (g *Game) reloadTiles() {
	cat, err := catalog.Load(g.cfg.Tiles.Dirs, g.cfg.Tiles.Builtin)
	if err != nil {
		log.Printf("reload tiles: %v", err)
		return
	}
	g.session.SetCatalog(cat)
	g.ui.picker.SetCatalog(cat)
	g.setStatus(fmt.Sprintf("%d tiles", cat.Len()))
}

func (g *Game) reloadConfig() {
	cfg, err := config.Load(g.cfgPath)
	if err != nil {
		log.Printf("reload config: %v", err)
		g.setStatus(fmt.Sprintf("config: %v", err))
		return
	}
	g.cfg = cfg
	g.session.Configure(editor.OptionsFromConfig(cfg))
	g.setStatus("config reloaded")
}

func (g *Game) setStatus(s string) {
	g.status = s
	g.statusAt = time.Now()
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	g.canvas.begin(screen)
	drawn := g.session.Draw(g.canvas)
	g.canvas.end()

	g.ui.Draw(screen)

	scale, _, _ := g.session.Map.View()
	line := fmt.Sprintf("%s  %dx%d  zoom %.2f  tiles %d  FPS %.0f",
		g.session.Map.Name, g.session.Map.Rows, g.session.Map.Columns, scale, drawn, ebiten.ActualFPS())
	if g.session.Dirty() {
		line += "  *"
	}
	if g.status != "" && time.Since(g.statusAt) < statusTTL {
		line += "\n" + g.status
	}
	ebitenutil.DebugPrintAt(screen, line, 4, 4)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	vp := tilemap.Viewport{Width: float64(outsideWidth), Height: float64(outsideHeight)}
	if vp != g.session.Viewport() {
		g.session.SetViewport(vp)
	}
	return outsideWidth, outsideHeight
}

// Close waits for running exports and releases the session and store.
func (g *Game) Close() {
	g.session.Close()
	g.session.Wait()
	if g.tilesWatcher != nil {
		_ = g.tilesWatcher.Close()
	}
	if g.configWatcher != nil {
		_ = g.configWatcher.Close()
	}
	if err := g.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}
