package resource

import (
	"log/slog"
	"sync"
)

// Cache holds the fonts and placeholder image shared by all adapters of one
// synchronization session. It is safe for concurrent use; population is
// idempotent.
type Cache struct {
	loader      Loader
	defaultFont string
	log         *slog.Logger

	mu          sync.Mutex
	fonts       map[string]*Font
	placeholder *Image
}

// NewCache creates a cache backed by loader. defaultFont names the font
// assigned to labels that have none.
func NewCache(loader Loader, defaultFont string, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		loader:      loader,
		defaultFont: defaultFont,
		log:         log,
		fonts:       make(map[string]*Font),
	}
}

// Font returns the cached font for name, loading it on first use.
// Returns nil when the font cannot be loaded; failures are not cached.
func (c *Cache) Font(name string) *Font {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.fonts[name]; ok {
		return f
	}
	f, err := c.loader.LoadFont(name)
	if err != nil || f == nil {
		c.log.Warn("Font cannot load", "font", name, "error", err)
		return nil
	}
	c.fonts[name] = f
	return f
}

// DefaultFont returns the session default font, or nil when it cannot load.
func (c *Cache) DefaultFont() *Font {
	if c.defaultFont == "" {
		return nil
	}
	return c.Font(c.defaultFont)
}

// Image loads uri. Icons are not cached here; each preference change
// reloads its image.
func (c *Cache) Image(uri string) (*Image, error) {
	return c.loader.LoadImage(uri)
}

// Placeholder returns the shared missing-image placeholder.
func (c *Cache) Placeholder() *Image {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.placeholder == nil {
		c.placeholder = Placeholder()
	}
	return c.placeholder
}

// Reset drops all cached resources. Called at session teardown.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fonts = make(map[string]*Font)
	c.placeholder = nil
}

// Len returns the number of cached fonts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fonts)
}
