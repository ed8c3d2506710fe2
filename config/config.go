// Package config loads editor settings from YAML. Built-in defaults are
// embedded; a file on disk overrides any subset of them.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/tilemap/gesture"
	"github.com/milk9111/tilemap/render"
	"github.com/milk9111/tilemap/store"
	"github.com/milk9111/tilemap/tilemap"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	TileSize      int `yaml:"tile_size"`
	ThumbnailSize int `yaml:"thumbnail_size"`

	Gesture GestureConfig `yaml:"gesture"`
	Zoom    ZoomConfig    `yaml:"zoom"`
	Display DisplayConfig `yaml:"display"`
	Export  ExportConfig  `yaml:"export"`
	Store   StoreConfig   `yaml:"store"`
	Tiles   TilesConfig   `yaml:"tiles"`
	NewMap  NewMapConfig  `yaml:"new_map"`
}

type GestureConfig struct {
	MinMove   float64       `yaml:"min_move"`
	LongPress time.Duration `yaml:"long_press"`
}

type ZoomConfig struct {
	MaxTileFactor float64 `yaml:"max_tile_factor"`
	RedrawEpsilon float64 `yaml:"redraw_epsilon"`
	WheelFactor   float64 `yaml:"wheel_factor"`
}

type DisplayConfig struct {
	ShowGrid   bool    `yaml:"show_grid"`
	ExportGrid bool    `yaml:"export_grid"`
	EmptyColor Color   `yaml:"empty_color"`
	GridColor  Color   `yaml:"grid_color"`
	GridWidth  float64 `yaml:"grid_width"`
}

type ExportConfig struct {
	Format    string `yaml:"format"`
	Quality   int    `yaml:"quality"`
	MaxPixels int64  `yaml:"max_pixels"`
	Dir       string `yaml:"dir"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Thumbs string `yaml:"thumbs"`
	DSN    string `yaml:"dsn"`
}

type TilesConfig struct {
	Dirs    []string `yaml:"dirs"`
	Watch   bool     `yaml:"watch"`
	Builtin bool     `yaml:"builtin"`
}

type NewMapConfig struct {
	Rows    int `yaml:"rows"`
	Columns int `yaml:"columns"`
	Max     int `yaml:"max"`
}

// Default returns the embedded defaults.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load returns the defaults overlaid with the file at path. A missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("tile_size must be positive, got %d", c.TileSize))
	}
	if c.ThumbnailSize <= 0 {
		errs = append(errs, fmt.Errorf("thumbnail_size must be positive, got %d", c.ThumbnailSize))
	}
	if c.Gesture.MinMove < 0 {
		errs = append(errs, fmt.Errorf("gesture.min_move must not be negative, got %v", c.Gesture.MinMove))
	}
	if c.Gesture.LongPress <= 0 {
		errs = append(errs, fmt.Errorf("gesture.long_press must be positive, got %v", c.Gesture.LongPress))
	}
	if c.Zoom.MaxTileFactor <= 0 {
		errs = append(errs, fmt.Errorf("zoom.max_tile_factor must be positive, got %v", c.Zoom.MaxTileFactor))
	}
	if c.Zoom.WheelFactor <= 1 {
		errs = append(errs, fmt.Errorf("zoom.wheel_factor must be above 1, got %v", c.Zoom.WheelFactor))
	}
	if _, err := render.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, err)
	}
	if c.NewMap.Max <= 0 || c.NewMap.Rows <= 0 || c.NewMap.Columns <= 0 ||
		c.NewMap.Rows > c.NewMap.Max || c.NewMap.Columns > c.NewMap.Max {
		errs = append(errs, fmt.Errorf("new_map: rows %d, columns %d must be within 1..%d", c.NewMap.Rows, c.NewMap.Columns, c.NewMap.Max))
	}
	return errors.Join(errs...)
}

func (c Config) ViewPolicy() tilemap.ViewPolicy {
	return tilemap.ViewPolicy{
		TileSize:      float64(c.TileSize),
		MaxTileFactor: c.Zoom.MaxTileFactor,
		RedrawEpsilon: c.Zoom.RedrawEpsilon,
	}
}

func (c Config) GestureConfig() gesture.Config {
	return gesture.Config{
		TileSize:  float64(c.TileSize),
		MinMove:   c.Gesture.MinMove,
		LongPress: c.Gesture.LongPress,
	}
}

func (c Config) RenderOptions() render.Options {
	return render.Options{
		TileSize:   c.TileSize,
		EmptyColor: c.Display.EmptyColor.Color,
		GridColor:  c.Display.GridColor.Color,
		GridWidth:  c.Display.GridWidth,
		ShowGrid:   c.Display.ShowGrid,
		ExportGrid: c.Display.ExportGrid,
		ThumbSize:  c.ThumbnailSize,
		MaxPixels:  c.Export.MaxPixels,
	}
}

// ExportFormat returns the configured export format, PNG when unset.
func (c Config) ExportFormat() render.Format {
	f, _ := render.ParseFormat(c.Export.Format)
	return f
}

func (c Config) StoreConfig() store.Config {
	return store.Config{
		Driver: c.Store.Driver,
		Path:   c.Store.Path,
		Thumbs: c.Store.Thumbs,
		DSN:    c.Store.DSN,
	}
}

// Color is a colour written as "#rrggbb" or "#rrggbbaa".
type Color struct {
	color.Color
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	col, err := ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = col
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	if c.Color == nil {
		return "", nil
	}
	n := color.NRGBAModel.Convert(c.Color).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), nil
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
}

func ParseHexColor(v string) (color.NRGBA, error) {
	s := strings.TrimPrefix(v, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", v)
	}

	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}

	r, err := parse(0)
	if err != nil {
		return color.NRGBA{}, err
	}
	g, err := parse(2)
	if err != nil {
		return color.NRGBA{}, err
	}
	b, err := parse(4)
	if err != nil {
		return color.NRGBA{}, err
	}
	a := uint8(255)
	if len(s) == 8 {
		if a, err = parse(6); err != nil {
			return color.NRGBA{}, err
		}
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
