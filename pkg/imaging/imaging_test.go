package imaging

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 100), B: 7, A: 255})
		}
	}
	return img
}

func TestLosslessRoundTrip(t *testing.T) {
	src := testImage()
	for _, ext := range []string{".png", ".bmp", ".tiff", ".TIF"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "img"+ext)
			if err := Save(path, src); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v; want %v", got.Bounds(), src.Bounds())
			}
			for y := 0; y < 3; y++ {
				for x := 0; x < 4; x++ {
					want := src.RGBAAt(x, y)
					have := color.RGBAModel.Convert(got.At(x, y)).(color.RGBA)
					if have != want {
						t.Errorf("pixel (%d,%d) = %v; want %v", x, y, have, want)
					}
				}
			}
		})
	}
}

func TestJPEGRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.jpg")
	if err := Save(path, testImage()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Bounds().Dx() != 4 || got.Bounds().Dy() != 3 {
		t.Errorf("bounds = %v", got.Bounds())
	}
}

func TestUnsupported(t *testing.T) {
	if Supported("x.gif") {
		t.Errorf("gif should not be supported")
	}
	if _, err := Load("x.gif"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load: expected ErrUnsupportedFormat, got %v", err)
	}
	if err := Save(filepath.Join(t.TempDir(), "x"), testImage()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Save: expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestToRGBA(t *testing.T) {
	src := testImage()
	if ToRGBA(src) != src {
		t.Errorf("ToRGBA copied an image that was already usable")
	}
	sub := src.SubImage(image.Rect(1, 1, 3, 3))
	out := ToRGBA(sub)
	if out.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if out.RGBAAt(0, 0) != src.RGBAAt(1, 1) {
		t.Errorf("pixel (0,0) = %v; want %v", out.RGBAAt(0, 0), src.RGBAAt(1, 1))
	}
}
