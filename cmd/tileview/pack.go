package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/eak1mov/go-tileview/tile"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type packCmd struct {
	inputPath  string
	outputPath string
	verbose    bool
}

func (c *packCmd) Name() string     { return "pack" }
func (c *packCmd) Synopsis() string { return "copy a pyramid between storages" }
func (c *packCmd) Usage() string {
	return "tileview pack -i <path> -o <path>\n" +
		"Paths are .mbtiles files or Deep Zoom descriptors (.dzi, .json) next to their _files directory.\n"
}
func (c *packCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input pyramid (.mbtiles, .dzi or .json)")
	f.StringVar(&c.outputPath, "o", "", "Output pyramid (.mbtiles or .json)")
	f.BoolVar(&c.verbose, "v", false, "Verbose logging")
	applyEnv(f)
}

func (c *packCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	setVerbose(c.verbose)

	cfg, src, srcCloser, err := openPyramid(c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer srcCloser.Close()

	writer, dstCloser, err := createPyramid(c.outputPath, cfg)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer dstCloser.Close()

	skipped := 0
	bar := progressbar.NewOptions(-1, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	err = src.VisitTiles(func(index tile.Index, tileData []byte) error {
		bar.Add(1)
		if !cfg.Contains(index) {
			skipped++
			return nil
		}
		return writer.WriteTile(index, tileData)
	})
	bar.Finish()
	fmt.Println()

	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if skipped > 0 {
		log.Printf("skipped %v tiles outside of the pyramid", skipped)
	}

	if err := writer.Finalize(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
