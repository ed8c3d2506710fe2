package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/tilemap/catalog"
	"github.com/milk9111/tilemap/config"
	"github.com/milk9111/tilemap/editor"
	"github.com/milk9111/tilemap/store"
)

func main() {
	cfgPath := flag.String("config", "tilemap.yaml", "settings file (defaults apply when missing)")
	mapID := flag.Int64("map", 0, "stored map id to open")
	rows := flag.Int("rows", 0, "rows for a new map (0 uses the configured default)")
	cols := flag.Int("cols", 0, "columns for a new map (0 uses the configured default)")
	name := flag.String("name", editor.DefaultName, "name for a new map")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	cat, err := catalog.Load(cfg.Tiles.Dirs, cfg.Tiles.Builtin)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("catalog: %d entries", cat.Len())

	st, err := store.Open(cfg.StoreConfig())
	if err != nil {
		log.Fatal(err)
	}

	opts := editor.OptionsFromConfig(cfg)
	var s *editor.Session
	if *mapID != 0 {
		s, err = editor.Load(st, *mapID, cat, opts)
	} else {
		r, c := *rows, *cols
		if r <= 0 {
			r = cfg.NewMap.Rows
		}
		if c <= 0 {
			c = cfg.NewMap.Columns
		}
		if r > cfg.NewMap.Max || c > cfg.NewMap.Max {
			log.Fatalf("map size %dx%d exceeds the %d limit", r, c, cfg.NewMap.Max)
		}
		s, err = editor.NewMap(r, c, cat, opts)
		if err == nil {
			s.Map.Name = *name
		}
	}
	if err != nil {
		_ = st.Close()
		log.Fatal(err)
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("tilemap - " + s.Map.Name)
	ebiten.SetWindowClosingHandled(true)

	game := NewGame(*cfgPath, cfg, st, s)
	err = ebiten.RunGame(game)
	game.Close()
	if err != nil {
		log.Fatal(err)
	}
}
