package tilemap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Document keys. Cell entries are keyed by position and written only for
// occupied cells.
const (
	keyName    = "name"
	keyRows    = "rows"
	keyColumns = "columns"
	keyScale   = "scale"
	keyOffsetX = "xOff"
	keyOffsetY = "yOff"
)

func pathKey(row, col int) string  { return "paths_" + strconv.Itoa(row) + "_" + strconv.Itoa(col) }
func angleKey(row, col int) string { return "angles_" + strconv.Itoa(row) + "_" + strconv.Itoa(col) }

// Snapshot is the in-memory form of a map's state, used to carry a session
// across a suspend and resume without going through text.
type Snapshot map[string]any

// Snapshot returns the map's fields in structured form.
func (m *Map) Snapshot() Snapshot {
	s := Snapshot{
		keyName:    m.Name,
		keyRows:    m.Rows,
		keyColumns: m.Columns,
		keyScale:   m.Scale,
		keyOffsetX: m.OffsetX,
		keyOffsetY: m.OffsetY,
	}
	m.Occupied(func(row, col int, c Cell) {
		s[pathKey(row, col)] = c.Tile
		s[angleKey(row, col)] = int(c.Rotation)
	})
	return s
}

// Restore rebuilds a map from a snapshot.
func Restore(s Snapshot) (*Map, error) {
	return decodeFields(s)
}

// Serialize encodes the map as a flat JSON object with sorted keys.
func (m *Map) Serialize() ([]byte, error) {
	data, err := json.Marshal(map[string]any(m.Snapshot()))
	if err != nil {
		return nil, fmt.Errorf("tilemap: serialize %q: %w", m.Name, err)
	}
	return data, nil
}

// Deserialize parses a document produced by Serialize. Name, rows and
// columns are required; missing cell entries leave the cell empty.
func Deserialize(data []byte) (*Map, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("tilemap: deserialize: %v: %w", err, ErrCorruptData)
	}
	if fields == nil {
		return nil, fmt.Errorf("tilemap: deserialize: not an object: %w", ErrCorruptData)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("tilemap: deserialize: trailing data: %w", ErrCorruptData)
	}
	return decodeFields(fields)
}

func decodeFields(f map[string]any) (*Map, error) {
	raw, ok := f[keyName]
	if !ok {
		return nil, missing(keyName)
	}
	name, ok := raw.(string)
	if !ok {
		return nil, badField(keyName, raw)
	}

	rows, err := requiredInt(f, keyRows)
	if err != nil {
		return nil, err
	}
	cols, err := requiredInt(f, keyColumns)
	if err != nil {
		return nil, err
	}
	m, err := New(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("tilemap: decode: %v: %w", err, ErrCorruptData)
	}
	m.Name = name

	if m.Scale, err = optionalFloat(f, keyScale, 1); err != nil {
		return nil, err
	}
	if m.Scale <= 0 {
		m.Scale = 1
	}
	if m.OffsetX, err = optionalFloat(f, keyOffsetX, 0); err != nil {
		return nil, err
	}
	if m.OffsetY, err = optionalFloat(f, keyOffsetY, 0); err != nil {
		return nil, err
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			raw, ok := f[pathKey(r, c)]
			if !ok || raw == nil {
				continue
			}
			tile, ok := raw.(string)
			if !ok {
				return nil, badField(pathKey(r, c), raw)
			}
			if tile == "" {
				continue
			}
			angle, err := optionalFloat(f, angleKey(r, c), 0)
			if err != nil {
				return nil, err
			}
			if angle != math.Trunc(angle) {
				return nil, badField(angleKey(r, c), angle)
			}
			rot := ((int(angle) % 4) + 4) % 4
			m.cells[r*cols+c] = Cell{Tile: tile, Rotation: Rotation(rot)}
		}
	}
	return m, nil
}

func requiredInt(f map[string]any, key string) (int, error) {
	raw, ok := f[key]
	if !ok {
		return 0, missing(key)
	}
	v, ok := asFloat(raw)
	if !ok || v != math.Trunc(v) {
		return 0, badField(key, raw)
	}
	return int(v), nil
}

func optionalFloat(f map[string]any, key string, def float64) (float64, error) {
	raw, ok := f[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := asFloat(raw)
	if !ok {
		return 0, badField(key, raw)
	}
	return v, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint8:
		return float64(n), true
	default:
		return 0, false
	}
}

func missing(key string) error {
	return fmt.Errorf("tilemap: decode: missing %q: %w", key, ErrCorruptData)
}

func badField(key string, v any) error {
	return fmt.Errorf("tilemap: decode: field %q has unexpected value %v: %w", key, v, ErrCorruptData)
}
