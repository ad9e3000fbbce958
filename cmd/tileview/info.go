package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/eak1mov/go-tileview/tile"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type infoCmd struct {
	inputPath string
	count     bool
}

func (c *infoCmd) Name() string     { return "info" }
func (c *infoCmd) Synopsis() string { return "print pyramid geometry" }
func (c *infoCmd) Usage() string {
	return "tileview info -i <path> [-count]\n"
}
func (c *infoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input pyramid (.mbtiles, .dzi or .json)")
	f.BoolVar(&c.count, "count", false, "Count stored tiles")
	applyEnv(f)
}

func (c *infoCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, src, closer, err := openPyramid(c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer closer.Close()

	fmt.Printf("size: %vx%v\n", cfg.ImageWidth, cfg.ImageHeight)
	fmt.Printf("tile size: %v, overlap: %v, format: %v\n", cfg.TileSize, cfg.Overlap, cfg.Format)
	fmt.Printf("levels: 0..%v\n", cfg.MaxLevel)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "level\tscale\tsize\tgrid\ttiles")
	total := 0
	for level := 0; level <= cfg.MaxLevel; level++ {
		width, height := cfg.LevelSize(level)
		columns, rows := cfg.GridSize(level)
		total += columns * rows
		fmt.Fprintf(w, "%v\t%v\t%vx%v\t%vx%v\t%v\n", level, cfg.ScaleFactor(float64(level)), width, height, columns, rows, columns*rows)
	}
	w.Flush()
	fmt.Printf("expected tiles: %v\n", total)

	if !c.count {
		return subcommands.ExitSuccess
	}

	stored, outside := 0, 0
	bar := progressbar.NewOptions(total, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	err = src.VisitTiles(func(index tile.Index, _ []byte) error {
		if cfg.Contains(index) {
			stored++
		} else {
			outside++
		}
		bar.Add(1)
		return nil
	})
	bar.Finish()
	fmt.Println()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("stored tiles: %v, outside of the pyramid: %v\n", stored, outside)

	return subcommands.ExitSuccess
}
