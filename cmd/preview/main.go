package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"scriptc/pkg/imaging"
	"scriptc/pkg/render"
	"scriptc/pkg/utils"
)

type renderResult struct {
	img     *image.RGBA
	err     error
	elapsed time.Duration
}

type Game struct {
	scriptPath string
	source     image.Image
	opts       render.Options

	sourceImg   *ebiten.Image
	renderedImg *ebiten.Image
	showSource  bool

	results   chan renderResult
	rendering bool
	status    string
}

// renderScript reads the script from disk and renders it over src.
func renderScript(ctx context.Context, scriptPath string, src image.Image, opts render.Options) renderResult {
	start := time.Now()
	text, _, err := utils.ReadScript(scriptPath)
	if err != nil {
		return renderResult{err: err}
	}
	out, err := render.Apply(ctx, text, src, opts)
	return renderResult{img: out, err: err, elapsed: time.Since(start)}
}

// reload starts a render in the background unless one is already running.
func (g *Game) reload() {
	if g.rendering {
		return
	}
	g.rendering = true
	g.status = "rendering..."
	go func() {
		g.results <- renderScript(context.Background(), g.scriptPath, g.source, g.opts)
	}()
}

func (g *Game) Update() error {
	select {
	case res := <-g.results:
		g.rendering = false
		if res.err != nil {
			g.status = "error: " + res.err.Error()
		} else {
			g.renderedImg = ebiten.NewImageFromImage(res.img)
			g.status = fmt.Sprintf("rendered in %s", res.elapsed.Round(time.Millisecond))
		}
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reload()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.showSource = !g.showSource
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	img := g.renderedImg
	if g.showSource || img == nil {
		img = g.sourceImg
	}
	if img != nil {
		screen.DrawImage(img, &ebiten.DrawImageOptions{})
	}

	label := "result"
	if img == g.sourceImg {
		label = "source"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("[%s] R: reload  Space: toggle\n%s", label, g.status), 4, 4)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.source.Bounds()
	return b.Dx(), b.Dy()
}

func main() {
	settings := utils.LoadSettings()

	scriptPath := flag.String("script", "", "pixel script file")
	inPath := flag.String("in", "", "input image (.png, .jpg, .bmp, .tif)")
	workers := flag.Int("workers", settings.Workers, "render goroutines")
	flag.Parse()

	if *scriptPath == "" || *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: preview -script s -in a.png")
		os.Exit(2)
	}

	src, err := imaging.Load(*inPath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}

	b := src.Bounds()
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(max(b.Dx(), 256), max(b.Dy(), 256))
	ebiten.SetWindowTitle("scriptc preview - " + *scriptPath)

	game := &Game{
		scriptPath: *scriptPath,
		source:     src,
		opts:       render.Options{Workers: *workers, MaxSteps: settings.MaxSteps},
		sourceImg:  ebiten.NewImageFromImage(src),
		results:    make(chan renderResult, 1),
	}
	game.reload()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
