package resource

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileLoader loads images from the local filesystem or over HTTP(S), and
// resolves font names against a list of font directories.
type FileLoader struct {
	fontDirs   []string
	httpClient *http.Client
}

// NewFileLoader creates a loader. timeout bounds each HTTP fetch.
func NewFileLoader(fontDirs []string, timeout time.Duration) *FileLoader {
	return &FileLoader{
		fontDirs:   fontDirs,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LoadImage fetches and decodes the image at uri.
func (l *FileLoader) LoadImage(uri string) (*Image, error) {
	r, err := l.open(uri)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", uri, err)
	}
	return FromImage(uri, src), nil
}

func (l *FileLoader) open(uri string) (io.ReadCloser, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		resp, err := l.httpClient.Get(uri)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", uri, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("fetching %s: %w", uri, ErrNotFound)
			}
			return nil, fmt.Errorf("fetching %s: status %d", uri, resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(strings.TrimPrefix(uri, "file://"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("opening %s: %w", uri, ErrNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", uri, err)
	}
	return f, nil
}

// LoadFont resolves name to a font file. Relative names are tried as given,
// then inside each font directory, with and without a ".ttf" suffix.
func (l *FileLoader) LoadFont(name string) (*Font, error) {
	if name == "" {
		return nil, fmt.Errorf("empty font name: %w", ErrNotFound)
	}
	for _, p := range l.fontCandidates(name) {
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return &Font{Name: name, Path: p}, nil
		}
	}
	return nil, fmt.Errorf("font %q: %w", name, ErrNotFound)
}

func (l *FileLoader) fontCandidates(name string) []string {
	names := []string{name}
	if filepath.Ext(name) == "" {
		names = append(names, name+".ttf")
	}
	if filepath.IsAbs(name) {
		return names
	}

	out := append([]string{}, names...)
	for _, dir := range l.fontDirs {
		for _, n := range names {
			out = append(out, filepath.Join(dir, n))
		}
	}
	return out
}
