package dir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eak1mov/go-tileview/tile"
)

// Writer implements tile.Writer for tiles stored as files.
type Writer struct {
	filePattern string
}

// NewWriter creates a new Writer for the given file pattern (e.g. "/data/dzdata_files/{level}/{row}_{col}.png").
func NewWriter(filePattern string) (*Writer, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}
	return &Writer{filePattern}, nil
}

// WriteTile stores the tile, creating level directories on demand.
// Indices outside of the addressable grid of their level are rejected.
func (w *Writer) WriteTile(index tile.Index, tileData []byte) error {
	if !index.Valid() {
		return fmt.Errorf("tileview: invalid tile index %v", index)
	}
	filePath := formatPattern(w.filePattern, index)

	dirPath := filepath.Dir(filePath)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return err
	}

	return os.WriteFile(filePath, tileData, 0644)
}

func (w *Writer) Finalize() error {
	return nil
}
