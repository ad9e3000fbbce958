package dir

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tileview/tile"
)

// Reader implements tile.Reader and tile.Visitor for tiles stored as files.
type Reader struct {
	filePattern string
	rootDir     string
	pathRegexp  *regexp.Regexp
}

// NewReader creates a new Reader for the given file pattern (e.g. "/data/dzdata_files/{level}/{row}_{col}.png").
func NewReader(filePattern string) (*Reader, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}

	regexPattern := regexp.QuoteMeta(filePattern)
	for _, p := range placeholders {
		name := strings.Trim(p, "{}")
		regexPattern = strings.ReplaceAll(regexPattern, regexp.QuoteMeta(p), "(?P<"+name+">\\d+)")
	}
	pathRegex, err := regexp.Compile("^" + regexPattern + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	path0 := formatPattern(filePattern, tile.Index{Level: 0, Row: 0, Col: 0})
	path1 := formatPattern(filePattern, tile.Index{Level: 1, Row: 1, Col: 1})
	for path0 != path1 {
		path0 = filepath.Dir(path0)
		path1 = filepath.Dir(path1)
	}
	rootDir := path0

	return &Reader{filePattern, rootDir, pathRegex}, nil
}

func (r *Reader) ReadTile(index tile.Index) ([]byte, error) {
	filePath := formatPattern(r.filePattern, index)
	tileData, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return make([]byte, 0), nil
	}
	if err != nil {
		return nil, err
	}
	return tileData, nil
}

// VisitTiles visits the tiles in pyramid order (tile.Index.Code).
// Files not matching the pattern are skipped.
func (r *Reader) VisitTiles(visitor func(tile.Index, []byte) error) error {
	type found struct {
		index tile.Index
		path  string
	}
	var files []found

	err := filepath.WalkDir(r.rootDir, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		matches := r.pathRegexp.FindStringSubmatch(filePath)
		if matches == nil {
			return nil
		}

		level, _ := strconv.ParseUint(matches[r.pathRegexp.SubexpIndex("level")], 10, 32)
		row, _ := strconv.ParseUint(matches[r.pathRegexp.SubexpIndex("row")], 10, 32)
		col, _ := strconv.ParseUint(matches[r.pathRegexp.SubexpIndex("col")], 10, 32)

		index := tile.Index{Level: uint32(level), Row: uint32(row), Col: uint32(col)}
		if !index.Valid() {
			return nil
		}
		files = append(files, found{index, filePath})
		return nil
	})
	if err != nil {
		return err
	}

	slices.SortFunc(files, func(a, b found) int {
		return cmp.Compare(a.index.Code(), b.index.Code())
	})

	for _, f := range files {
		tileData, err := os.ReadFile(f.path)
		if err != nil {
			return err
		}
		if err := visitor(f.index, tileData); err != nil {
			return err
		}
	}
	return nil
}
