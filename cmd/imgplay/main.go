package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"scriptc/pkg/imaging"
	"scriptc/pkg/render"
	"scriptc/pkg/utils"
)

func main() {
	settings := utils.LoadSettings()

	scriptPath := flag.String("script", "", "pixel script file")
	inPath := flag.String("in", "", "input image (.png, .jpg, .bmp, .tif)")
	outPath := flag.String("out", "", "output image (default: input with .out.png)")
	workers := flag.Int("workers", settings.Workers, "render goroutines")
	maxSteps := flag.Int("max-steps", settings.MaxSteps, "CPU step budget per pixel")
	showAsm := flag.Bool("show-asm", settings.ShowAsm, "print the generated assembly")
	flag.Parse()

	if *scriptPath == "" || *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: imgplay -script s -in a.png [-out b.png] [-workers n]")
		flag.Usage()
		os.Exit(2)
	}

	src, fullPath, err := utils.ReadScript(*scriptPath)
	if err != nil {
		log.Fatalf("Failed to read script: %v", err)
	}
	img, err := imaging.Load(*inPath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}

	fmt.Fprintln(os.Stderr, "Compiling script:", fullPath)
	prog, err := render.Build(src, img)
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}
	if *showAsm {
		fmt.Fprintf(os.Stderr, "Generated Assembly:\n%s\n", prog.Assembly)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b := img.Bounds()
	start := time.Now()
	out, err := render.Render(ctx, prog, b.Dx(), b.Dy(), render.Options{Workers: *workers, MaxSteps: *maxSteps})
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}

	output := *outPath
	if output == "" {
		output = utils.ReplaceExt(*inPath, ".out.png")
	}
	if err := imaging.Save(output, out); err != nil {
		log.Fatalf("Failed to save image: %v", err)
	}
	fmt.Fprintf(os.Stderr, "rendered %dx%d with %d workers in %s -> %s\n",
		b.Dx(), b.Dy(), *workers, time.Since(start).Round(time.Millisecond), output)
}
