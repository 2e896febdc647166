// Package resource loads and caches the images and fonts render components
// refer to.
package resource

import (
	"errors"
	"image"
	"image/color"
)

// ErrNotFound is returned by a Loader when a resource does not exist.
var ErrNotFound = errors.New("resource not found")

// Image is a decoded RGBA image.
type Image struct {
	URI    string
	Width  int
	Height int
	Pix    []uint8 // RGBA, row-major, 4 bytes per pixel
}

// Valid reports whether the image has pixels.
func (i *Image) Valid() bool {
	return i != nil && i.Width > 0 && i.Height > 0 && len(i.Pix) == i.Width*i.Height*4
}

// At returns the color of pixel (x, y).
func (i *Image) At(x, y int) color.RGBA {
	o := (y*i.Width + x) * 4
	return color.RGBA{R: i.Pix[o], G: i.Pix[o+1], B: i.Pix[o+2], A: i.Pix[o+3]}
}

func (i *Image) set(x, y int, c color.RGBA) {
	o := (y*i.Width + x) * 4
	i.Pix[o], i.Pix[o+1], i.Pix[o+2], i.Pix[o+3] = c.R, c.G, c.B, c.A
}

// FromImage copies any decoded image into an Image.
func FromImage(uri string, src image.Image) *Image {
	b := src.Bounds()
	img := &Image{URI: uri, Width: b.Dx(), Height: b.Dy(), Pix: make([]uint8, b.Dx()*b.Dy()*4)}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.set(x, y, color.RGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA))
		}
	}
	return img
}

// Font is a reference to a loadable font face. Glyph rasterization is the
// renderer's concern.
type Font struct {
	Name string
	Path string
}

// Loader resolves resources. Calls block until they succeed or fail.
type Loader interface {
	LoadImage(uri string) (*Image, error)
	LoadFont(name string) (*Font, error)
}

const placeholderSize = 15

// Placeholder returns the image used when an icon cannot be loaded: a white
// square crossed by a red X, one pixel in from the border.
func Placeholder() *Image {
	img := &Image{
		URI:    "placeholder:missing",
		Width:  placeholderSize,
		Height: placeholderSize,
		Pix:    make([]uint8, placeholderSize*placeholderSize*4),
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.set(x, y, white)
		}
	}
	for i := 1; i < img.Width-1; i++ {
		img.set(i, i, red)
		img.set(i, img.Height-1-i, red)
	}
	return img
}
