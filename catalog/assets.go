package catalog

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsImage reports whether name has an extension the tile decoder accepts.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(path.Ext(name))]
}

// ScanGroups lists the images in fsys. Each top-level directory becomes a
// group named after it; images directly under the root form the "tiles"
// group. Groups and files are sorted by name.
func ScanGroups(fsys fs.FS) ([]Group, error) {
	byGroup := make(map[string][]string)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !IsImage(d.Name()) {
			return nil
		}
		group := "tiles"
		if i := strings.IndexByte(p, '/'); i >= 0 {
			group = p[:i]
		}
		byGroup[group] = append(byGroup[group], AssetPrefix+p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(byGroup))
	for name := range byGroup {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]Group, 0, len(names))
	for _, name := range names {
		tiles := byGroup[name]
		sort.Strings(tiles)
		groups = append(groups, Group{Name: name, Tiles: tiles})
	}
	return groups, nil
}
