package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/eak1mov/go-tileview/dir"
	"github.com/eak1mov/go-tileview/mb"
	"github.com/eak1mov/go-tileview/pyramid"
	"github.com/eak1mov/go-tileview/tile"
)

// tileSource is a tile storage that can be read and visited.
type tileSource interface {
	tile.Reader
	tile.Visitor
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openPyramid opens a pyramid given either an MBTiles file or a descriptor file
// ("name.dzi" or "name.json") with tiles in the sibling directory "name_files".
func openPyramid(path string) (*pyramid.Config, tileSource, io.Closer, error) {
	if strings.HasSuffix(path, ".mbtiles") {
		reader, err := mb.NewReader(path)
		if err != nil {
			return nil, nil, nil, err
		}
		cfg, err := reader.ReadPyramid()
		if err != nil {
			reader.Close()
			return nil, nil, nil, err
		}
		return cfg, reader, reader, nil
	}

	cfg, err := readDescriptor(path)
	if err != nil {
		return nil, nil, nil, err
	}
	reader, err := dir.NewReader(dir.Pattern(tilesDir(path), cfg.Format))
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, reader, nopCloser{}, nil
}

func readDescriptor(path string) (*pyramid.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".dzi", ".xml":
		return pyramid.ParseDZI(data)
	case ".json":
		return pyramid.ParseJSON(data)
	}
	return nil, fmt.Errorf("unknown descriptor format: %q", path)
}

// tilesDir returns the Deep Zoom tiles directory of a descriptor, "name_files".
func tilesDir(descriptorPath string) string {
	return strings.TrimSuffix(descriptorPath, filepath.Ext(descriptorPath)) + "_files"
}

// createPyramid creates a tile writer for a new pyramid at path, an MBTiles file
// or a JSON descriptor next to its tiles directory.
func createPyramid(path string, cfg *pyramid.Config) (tile.Writer, io.Closer, error) {
	if strings.HasSuffix(path, ".mbtiles") {
		if _, err := os.Stat(path); err == nil {
			return nil, nil, fmt.Errorf("output file already exists: %q", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, nil, err
		}
		writer, err := mb.NewWriter(path, mb.WithPyramid(cfg), mb.WithLogger(logger()))
		if err != nil {
			return nil, nil, err
		}
		return writer, writer, nil
	}

	if filepath.Ext(path) != ".json" {
		return nil, nil, fmt.Errorf("output must be a .mbtiles or .json file: %q", path)
	}
	data, err := marshalDescriptor(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, nil, err
	}
	writer, err := dir.NewWriter(dir.Pattern(tilesDir(path), cfg.Format))
	if err != nil {
		return nil, nil, err
	}
	return writer, nopCloser{}, nil
}

func marshalDescriptor(cfg *pyramid.Config) ([]byte, error) {
	return json.MarshalIndent(cfg.Metadata(), "", "  ")
}

func logger() *slog.Logger {
	return slog.Default()
}
