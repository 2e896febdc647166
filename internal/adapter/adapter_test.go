package adapter

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OCAP2/simvis/internal/resource"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

type stubLoader struct {
	images     map[string]*resource.Image
	fonts      map[string]*resource.Font
	imageCalls int
	fontCalls  int
}

func (s *stubLoader) LoadImage(uri string) (*resource.Image, error) {
	s.imageCalls++
	if img, ok := s.images[uri]; ok {
		return img, nil
	}
	return nil, resource.ErrNotFound
}

func (s *stubLoader) LoadFont(name string) (*resource.Font, error) {
	s.fontCalls++
	if f, ok := s.fonts[name]; ok {
		return f, nil
	}
	return nil, resource.ErrNotFound
}

func testImage(uri string, w, h int) *resource.Image {
	return &resource.Image{URI: uri, Width: w, Height: h, Pix: make([]uint8, w*h*4)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestContext(t *testing.T) (*Context, *stubLoader) {
	t.Helper()
	loader := &stubLoader{
		images: map[string]*resource.Image{
			"foo.png": testImage("foo.png", 32, 16),
			"bar.png": testImage("bar.png", 8, 8),
		},
		fonts: map[string]*resource.Font{
			"arial.ttf":   {Name: "arial.ttf", Path: "/fonts/arial.ttf"},
			"arialbd.ttf": {Name: "arialbd.ttf", Path: "/fonts/arialbd.ttf"},
		},
	}
	res := resource.NewCache(loader, "arial.ttf", discardLogger())
	return NewContext(scene.NewRegistry(), res, discardLogger()), loader
}

func id(v core.ObjectID) core.Opt[core.ObjectID] {
	return core.Some(v)
}

func createPlatform(t *testing.T, a *Platform, oid core.ObjectID) scene.Handle {
	t.Helper()
	h, ok := a.Create(core.PlatformProperties{ID: id(oid)})
	require.True(t, ok)
	return h
}
