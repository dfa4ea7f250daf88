// Package imaging reads and writes image files, choosing the codec from the
// file extension.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

type codec struct {
	decode func(io.Reader) (image.Image, error)
	encode func(io.Writer, image.Image) error
}

var codecs = map[string]codec{
	".png":  {png.Decode, png.Encode},
	".jpg":  {jpeg.Decode, encodeJPEG},
	".jpeg": {jpeg.Decode, encodeJPEG},
	".bmp":  {bmp.Decode, bmp.Encode},
	".tif":  {tiff.Decode, encodeTIFF},
	".tiff": {tiff.Decode, encodeTIFF},
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

func lookup(path string) (codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	c, ok := codecs[ext]
	if !ok {
		return codec{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return c, nil
}

// Supported reports whether path has an extension this package handles.
func Supported(path string) bool {
	_, err := lookup(path)
	return err == nil
}

// Load decodes the image at path.
func Load(path string) (image.Image, error) {
	c, err := lookup(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := c.decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img to path.
func Save(path string, img image.Image) error {
	c, err := lookup(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// ToRGBA returns img as an *image.RGBA with bounds starting at (0, 0),
// copying only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
