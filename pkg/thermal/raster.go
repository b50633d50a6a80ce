// Package thermal decodes whole-globe land surface temperature snapshots and
// correlates their pixels with geographic coordinates.
package thermal

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
)

var (
	// ErrDecode is returned when a snapshot cannot be decoded as an image.
	ErrDecode = errors.New("thermal: decode failed")
	// ErrNoThermalData marks the absence of a usable raster.
	ErrNoThermalData = errors.New("thermal: no thermal data")
)

// Raster is a decoded snapshot: Height rows of Width pixels, Channels bytes
// per pixel, row-major in Pix.
type Raster struct {
	Width, Height int
	Channels      int
	Pix           []byte
}

// Offset returns the index in Pix of the first channel of pixel (row, col).
func (r *Raster) Offset(row, col int) int {
	return (row*r.Width + col) * r.Channels
}

// Decode reads a PNG snapshot into a four channel non-premultiplied RGBA
// raster.
func Decode(rd io.Reader) (*Raster, error) {
	src, err := png.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	return &Raster{Width: b.Dx(), Height: b.Dy(), Channels: 4, Pix: dst.Pix}, nil
}

// Load decodes the snapshot stored at path. A missing or undecodable file is
// reported as ErrNoThermalData.
func Load(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoThermalData, err)
	}
	defer f.Close()

	r, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoThermalData, path, err)
	}
	return r, nil
}

// Image wraps the raster pixels without copying. Only four channel rasters
// can be wrapped.
func (r *Raster) Image() (*image.NRGBA, error) {
	if r.Channels != 4 {
		return nil, fmt.Errorf("thermal: cannot wrap %d channel raster", r.Channels)
	}
	return &image.NRGBA{Pix: r.Pix, Stride: r.Width * 4, Rect: image.Rect(0, 0, r.Width, r.Height)}, nil
}

// Save writes the raster as a PNG file.
func (r *Raster) Save(path string) error {
	img, err := r.Image()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
