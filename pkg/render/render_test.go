package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"scriptc/pkg/codegen"
	"scriptc/pkg/cpu"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	return img
}

func TestApply(t *testing.T) {
	src := gradient(7, 5)
	tests := []struct {
		name   string
		script string
		want   func(x, y int) color.RGBA
	}{
		{
			"Identity",
			"return pixel(x, y)",
			func(x, y int) color.RGBA { return src.RGBAAt(x, y) },
		},
		{
			"Invert",
			"return rgb(255 - red(x, y), 255 - green(x, y), 255 - blue(x, y))",
			func(x, y int) color.RGBA {
				c := src.RGBAAt(x, y)
				return color.RGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: 255}
			},
		},
		{
			"MirrorX",
			"return pixel(width() - 1 - x, y)",
			func(x, y int) color.RGBA { return src.RGBAAt(6-x, y) },
		},
		{
			"Coordinates",
			"r = x * 30\ng = y * 40\nreturn rgb(r, g, 0)",
			func(x, y int) color.RGBA {
				return color.RGBA{R: uint8(min(x*30, 255)), G: uint8(min(y*40, 255)), A: 255}
			},
		},
	}
	for _, tt := range tests {
		for _, workers := range []int{1, 3} {
			out, err := Apply(context.Background(), tt.script, src, Options{Workers: workers, Chunk: 4})
			if err != nil {
				t.Fatalf("%s/%d: %v", tt.name, workers, err)
			}
			if out.Bounds() != src.Bounds() {
				t.Fatalf("%s: bounds = %v", tt.name, out.Bounds())
			}
			for y := 0; y < 5; y++ {
				for x := 0; x < 7; x++ {
					if got, want := out.RGBAAt(x, y), tt.want(x, y); got != want {
						t.Errorf("%s/%d: pixel (%d,%d) = %v; want %v", tt.name, workers, x, y, got, want)
					}
				}
			}
		}
	}
}

func TestRenderStopsOnError(t *testing.T) {
	_, err := Apply(context.Background(), "return 100 / (x - 3)", gradient(6, 6), Options{Workers: 2})
	if !errors.Is(err, cpu.ErrDivideByZero) {
		t.Errorf("expected ErrDivideByZero, got %v", err)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Apply(ctx, "return 0", gradient(4, 4), Options{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRenderValidates(t *testing.T) {
	prog, err := codegen.Build("return 1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Render(context.Background(), prog, 2, 2, Options{}); err == nil {
		t.Errorf("expected error for program without x and y")
	}
	prog, err = codegen.Build("return 1", nil, Params...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Render(context.Background(), prog, 0, 2, Options{}); err == nil {
		t.Errorf("expected error for empty image")
	}
}
