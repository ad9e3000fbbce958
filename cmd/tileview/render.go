package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/eak1mov/go-tileview/cache"
	"github.com/eak1mov/go-tileview/canvas"
	"github.com/eak1mov/go-tileview/colormap"
	"github.com/eak1mov/go-tileview/engine"
	"github.com/eak1mov/go-tileview/pipeline"
	"github.com/eak1mov/go-tileview/viewport"
	"github.com/google/subcommands"
	"github.com/muesli/reflow/truncate"
	"github.com/schollz/progressbar/v3"
)

const maxErrorWidth = 100

type renderCmd struct {
	inputPath   string
	outputPath  string
	width       int
	height      int
	zoom        float64
	originX     float64
	originY     float64
	palette     string
	minValue    float64
	maxValue    float64
	concurrency int
	verbose     bool
}

func (c *renderCmd) Name() string     { return "render" }
func (c *renderCmd) Synopsis() string { return "render a view of a pyramid into a PNG image" }
func (c *renderCmd) Usage() string {
	return "tileview render -i <path> -o <file.png> [-width <px> -height <px>] [-zoom <level> -x <px> -y <px>]\n" +
		"Without -zoom the whole image is fitted into the output.\n"
}
func (c *renderCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input pyramid (.mbtiles, .dzi or .json)")
	f.StringVar(&c.outputPath, "o", "", "Output PNG file")
	f.IntVar(&c.width, "width", 1024, "Output width")
	f.IntVar(&c.height, "height", 768, "Output height")
	f.Float64Var(&c.zoom, "zoom", math.NaN(), "Zoom level (fit when unset)")
	f.Float64Var(&c.originX, "x", 0, "Screen x of the image origin")
	f.Float64Var(&c.originY, "y", 0, "Screen y of the image origin")
	f.StringVar(&c.palette, "palette", "viridis", "Palette (viridis, inferno, greys)")
	f.Float64Var(&c.minValue, "min", 0, "Value mapped to the first palette color")
	f.Float64Var(&c.maxValue, "max", 1, "Value mapped to the last palette color")
	f.IntVar(&c.concurrency, "concurrency", 6, "Concurrent tile fetches")
	f.BoolVar(&c.verbose, "v", false, "Verbose logging")
	applyEnv(f)
}

func (c *renderCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	setVerbose(c.verbose)

	if c.outputPath == "" || c.width <= 0 || c.height <= 0 {
		log.Println("output path and positive size required")
		return subcommands.ExitUsageError
	}

	cfg, src, closer, err := openPyramid(c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer closer.Close()

	palette, err := colormap.ByName(c.palette)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	p, err := pipeline.NewDefault(src, cfg.Format, palette, c.minValue, c.maxValue)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	bar := progressbar.NewOptions(-1, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	e, err := engine.New(cfg, p.Fetch,
		engine.WithConcurrency(c.concurrency),
		engine.WithLogger(slog.Default()),
		engine.WithRedraw(func() { bar.Add(1) }),
	)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	e.OnResize(float64(c.width), float64(c.height))
	if math.IsNaN(c.zoom) {
		e.Fit()
	} else {
		e.Viewport().SetState(viewport.State{OriginX: c.originX, OriginY: c.originY, ZoomLevel: c.zoom})
	}

	surface := canvas.New(c.width, c.height)
	stats := e.Render(surface)
	for stats.Pending > 0 {
		e.Wait()
		surface.Fill(color.Transparent)
		stats = e.Render(surface)
	}
	bar.Finish()
	fmt.Println()

	slog.Debug("tileview: rendered", "level", stats.Level, "visible", stats.Visible, "drawn", stats.Drawn, "failed", stats.Failed)
	if stats.Failed > 0 {
		log.Printf("%v of %v tiles failed to load", stats.Failed, stats.Visible)
		for _, entry := range e.Tiles() {
			if entry.State == cache.Failed {
				log.Printf("  %v: %v", entry.Index, truncate.StringWithTail(entry.Err.Error(), maxErrorWidth, "..."))
			}
		}
	}

	if err := writePNG(c.outputPath, surface.Image); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

func writePNG(filePath string, img image.Image) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		return errors.Join(err, file.Close())
	}
	return file.Close()
}
