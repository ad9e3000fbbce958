package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/eak1mov/go-tileview/internal"
	"github.com/eak1mov/go-tileview/pyramid"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type synthCmd struct {
	outputPath string
	width      int
	height     int
	tileSize   int
	overlap    float64
	format     string
}

func (c *synthCmd) Name() string     { return "synth" }
func (c *synthCmd) Synopsis() string { return "generate a synthetic pyramid" }
func (c *synthCmd) Usage() string {
	return "tileview synth -o <path> [-width <px> -height <px> -tile <px> -format f32|png]\n"
}
func (c *synthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputPath, "o", "", "Output pyramid (.mbtiles or .json)")
	f.IntVar(&c.width, "width", 1024, "Image width")
	f.IntVar(&c.height, "height", 1024, "Image height")
	f.IntVar(&c.tileSize, "tile", 256, "Tile size")
	f.Float64Var(&c.overlap, "overlap", 0, "Tile overlap fraction")
	f.StringVar(&c.format, "format", "f32", "Tile format (f32, png)")
	applyEnv(f)
}

func (c *synthCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, err := pyramid.Load(pyramid.Metadata{Image: pyramid.Image{
		Format:   c.format,
		Overlap:  c.overlap,
		TileSize: c.tileSize,
		Size:     pyramid.Size{Width: c.width, Height: c.height},
	}})
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	writer, closer, err := createPyramid(c.outputPath, cfg)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer closer.Close()

	total := 0
	for level := 0; level <= cfg.MaxLevel; level++ {
		columns, rows := cfg.GridSize(level)
		total += columns * rows
	}
	bar := progressbar.NewOptions(total, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	err = internal.SyntheticPyramid(cfg, writer, func(tile.Index) { bar.Add(1) })
	bar.Finish()
	fmt.Println()

	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
