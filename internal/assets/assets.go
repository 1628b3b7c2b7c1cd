// Package assets handles export file loading and caching.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/Faultbox/wowobj/pkg/encoding"
)

// Manager reads export files from a file system rooted at the export
// directory. Every file is read at most once.
type Manager struct {
	fsys  fs.FS
	cache *Cache
}

// NewManager creates a new asset manager over fsys.
func NewManager(fsys fs.FS) *Manager {
	return &Manager{
		fsys:  fsys,
		cache: NewCache(),
	}
}

// Load reads a file. Missing files, and paths that leave the root, are
// reported as fs.ErrNotExist.
func (m *Manager) Load(path string) ([]byte, error) {
	path = encoding.NormalizePath(path)

	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	data, err := fs.ReadFile(m.fsys, path)
	switch {
	case err == nil:
		m.cache.Set(path, data)
		return data, nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid):
		return nil, fmt.Errorf("file not found: %s: %w", path, fs.ErrNotExist)
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
}

// Exists reports whether a regular file exists at path.
func (m *Manager) Exists(path string) bool {
	path = encoding.NormalizePath(path)
	if _, ok := m.cache.Peek(path); ok {
		return true
	}

	info, err := fs.Stat(m.fsys, path)
	return err == nil && !info.IsDir()
}

// Cache returns the manager's cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Cache is a simple in-memory cache for loaded files.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Peek retrieves an item without touching the stats.
func (c *Cache) Peek(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Keys returns the cached paths, sorted.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
