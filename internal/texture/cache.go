// Package texture finds, sniffs and decodes the image files referenced by
// scene textures.
package texture

import (
	"fmt"
	"image"
	"sync"

	"holomesh/internal/scene"
)

// Cache is a concurrency-safe texture cache. It implements
// mesh.TextureInfo.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Lookup finds the file of a scene texture, trying the relative file name
// before the absolute one.
func (c *Cache) Lookup(t *scene.Texture) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, name := range []string{t.RelativeFileName, t.FileName, t.Name} {
		if name == "" {
			continue
		}
		if path, ok := c.index.ResolvePath(name); ok {
			return path, true
		}
	}
	return "", false
}

// Resolve loads and caches a texture by name. Failed loads are cached too.
func (c *Cache) Resolve(texName string) (*image.NRGBA, error) {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, texName)
	}
	return c.load(path)
}

func (c *Cache) load(path string) (*image.NRGBA, error) {
	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := Load(path)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[path]; exists {
		return entry.img, entry.err
	}
	c.items[path] = &cacheEntry{img: img, err: err}
	return img, err
}

// Image decodes the file behind a scene texture.
func (c *Cache) Image(t *scene.Texture) (*image.NRGBA, error) {
	path, ok := c.Lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, textureName(t))
	}
	return c.load(path)
}

// Dimensions returns the size of the image behind a scene texture.
func (c *Cache) Dimensions(t *scene.Texture) (w, h int, err error) {
	path, ok := c.Lookup(t)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotFound, textureName(t))
	}
	c.mu.RLock()
	entry, exists := c.items[path]
	c.mu.RUnlock()
	if exists && entry.img != nil {
		b := entry.img.Bounds()
		return b.Dx(), b.Dy(), nil
	}
	return Size(path)
}

func textureName(t *scene.Texture) string {
	if t == nil {
		return "<nil>"
	}
	if t.RelativeFileName != "" {
		return t.RelativeFileName
	}
	if t.FileName != "" {
		return t.FileName
	}
	return t.Name
}
