// Command maplist browses the saved maps in a terminal. Maps can be
// exported or deleted from the list.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/milk9111/tilemap/catalog"
	"github.com/milk9111/tilemap/config"
	"github.com/milk9111/tilemap/editor"
	"github.com/milk9111/tilemap/store"
)

func main() {
	cfgPath := flag.String("config", "tilemap.yaml", "settings file (defaults apply when missing)")
	logPath := flag.String("log", "", "write log output to this file while the list is open")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	cat, err := catalog.Load(cfg.Tiles.Dirs, cfg.Tiles.Builtin)
	if err != nil {
		log.Fatal(err)
	}
	st, err := store.Open(cfg.StoreConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "maplist")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	p := tea.NewProgram(newModel(st, cat, editor.OptionsFromConfig(cfg), cfg.Export.Dir), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("maplist: %v", err)
	}
}
