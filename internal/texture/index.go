package texture

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// rank orders extensions for the same stem: formats that can carry alpha
// win over JPEG.
var rank = map[string]int{
	".jpg":  1,
	".jpeg": 1,
	".bmp":  2,
	".gif":  2,
	".tga":  3,
	".png":  3,
	".webp": 3,
}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex walks every directory for image files. Missing directories
// are ignored.
func BuildIndex(dirs ...string) *Index {
	idx := &Index{entries: make(map[string]string)}
	for _, dir := range dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			r, ok := rank[ext]
			if !ok {
				return nil
			}
			stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
			if existing, exists := idx.entries[stem]; !exists || r > rank[strings.ToLower(filepath.Ext(existing))] {
				idx.entries[stem] = path
			}
			return nil
		})
	}
	return idx
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
// Directory prefixes in either separator style and the extension are
// ignored.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
