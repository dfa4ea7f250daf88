// Package render evaluates a compiled script once per pixel.
//
// The script sees the pixel position as the locals x and y and returns the
// output color packed as 0xRRGGBB.
package render

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"scriptc/pkg/codegen"
	"scriptc/pkg/grid"
	"scriptc/pkg/host"
)

// Params are the locals every pixel script receives.
var Params = []string{"x", "y"}

type Options struct {
	Workers  int // zero means GOMAXPROCS
	MaxSteps int // per pixel; zero means the CPU default
	Chunk    int // pixels claimed per worker at a time; zero means one row
}

// Build compiles src against the standard helpers plus accessors for img.
func Build(src string, img image.Image) (*codegen.Program, error) {
	lib, err := host.NewLibrary("image", append(host.Standard(), host.ImageFuncs(img)...)...)
	if err != nil {
		return nil, err
	}
	return codegen.Build(src, lib, Params...)
}

// Apply builds src for img and renders an image of the same size.
func Apply(ctx context.Context, src string, img image.Image, opts Options) (*image.RGBA, error) {
	prog, err := Build(src, img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return Render(ctx, prog, b.Dx(), b.Dy(), opts)
}

// Render runs prog for every pixel of a width x height image. Each worker
// owns a CPU; the program and its library are shared read-only. The first
// failing pixel cancels the rest.
func Render(ctx context.Context, prog *codegen.Program, width, height int, opts Options) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", width, height)
	}
	for _, p := range Params {
		if !slices.Contains(prog.Params, p) {
			return nil, fmt.Errorf("render: program was not built with parameter %q", p)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := opts.Chunk
	if chunk <= 0 {
		chunk = width
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	total := width * height
	var next atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			vm := prog.NewCPU(opts.MaxSteps)
			args := map[string]int32{"x": 0, "y": 0}
			for {
				start := int(next.Add(int64(chunk))) - chunk
				if start >= total {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				end := min(start+chunk, total)
				for i := start; i < end; i++ {
					x, y := grid.GetGridCoords(i, width)
					args["x"], args["y"] = int32(x), int32(y)
					v, err := prog.Run(vm, args)
					if err != nil {
						return fmt.Errorf("pixel (%d, %d): %w", x, y, err)
					}
					r, gr, b := host.Unpack(v)
					off := out.PixOffset(x, y)
					out.Pix[off+0] = r
					out.Pix[off+1] = gr
					out.Pix[off+2] = b
					out.Pix[off+3] = 0xFF
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
