// Package dir provides API for reading and writing pyramid tiles stored as individual files
// with paths like "/base/level/row_col.ext".
package dir

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tileview/tile"
)

var ErrInvalidPattern = errors.New("tileview: invalid file pattern")

var placeholders = []string{"{level}", "{row}", "{col}"}

// Pattern returns the file pattern of a pyramid rooted at baseDir, "baseDir/{level}/{row}_{col}.ext".
func Pattern(baseDir, ext string) string {
	return filepath.Join(baseDir, "{level}", "{row}_{col}."+ext)
}

func validatePattern(pattern string) error {
	for _, p := range placeholders {
		if !strings.Contains(pattern, p) {
			return fmt.Errorf("%w: placeholder %v not found", ErrInvalidPattern, p)
		}
	}
	return nil
}

func formatPattern(pattern string, index tile.Index) string {
	return strings.NewReplacer(
		"{level}", strconv.FormatUint(uint64(index.Level), 10),
		"{row}", strconv.FormatUint(uint64(index.Row), 10),
		"{col}", strconv.FormatUint(uint64(index.Col), 10),
	).Replace(pattern)
}
