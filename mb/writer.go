package mb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eak1mov/go-tileview/pyramid"
	"github.com/eak1mov/go-tileview/tile"
)

// Writer implements tile.Writer for MBTiles files.
type Writer struct {
	db     *sql.DB
	tx     *sql.Tx
	stmt   *sql.Stmt
	logger *slog.Logger
	count  int
}

type writerConfig struct {
	Metadata map[string]string
	Pyramid  *pyramid.Config
	Logger   *slog.Logger
}

type WriterOption func(*writerConfig)

func WithMetadata(metadata map[string]string) WriterOption {
	return func(c *writerConfig) { c.Metadata = metadata }
}

// WithPyramid stores the pyramid descriptor in the metadata row "json".
func WithPyramid(cfg *pyramid.Config) WriterOption {
	return func(c *writerConfig) { c.Pyramid = cfg }
}

func WithLogger(logger *slog.Logger) WriterOption {
	return func(c *writerConfig) { c.Logger = logger }
}

// NewWriter creates a new MBTiles file. Tiles are written in a single transaction
// committed by Finalize.
func NewWriter(filePath string, opts ...WriterOption) (*Writer, error) {
	config := writerConfig{
		Metadata: map[string]string{},
		Logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	metadata := make(map[string]string, len(config.Metadata)+1)
	for k, v := range config.Metadata {
		metadata[k] = v
	}
	if config.Pyramid != nil {
		value, err := json.Marshal(config.Pyramid.Metadata())
		if err != nil {
			return nil, err
		}
		metadata[MetadataKey] = string(value)
		if _, ok := metadata["format"]; !ok {
			metadata["format"] = config.Pyramid.Format
		}
	}

	var err error
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	_, err = db.Exec(`
		CREATE TABLE metadata (name TEXT, value TEXT);
		CREATE TABLE tiles (
			zoom_level INTEGER,
			tile_column INTEGER,
			tile_row INTEGER,
			tile_data BLOB
		);
	`)
	if err != nil {
		return nil, err
	}

	for k, v := range metadata {
		_, err = db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", k, v)
		if err != nil {
			return nil, err
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	stmt, err := tx.Prepare("INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return &Writer{db: db, tx: tx, stmt: stmt, logger: config.Logger}, nil
}

// Close releases the database. Tiles not committed by Finalize are discarded.
func (w *Writer) Close() error {
	var errs []error
	if w.stmt != nil {
		errs = append(errs, w.stmt.Close())
	}
	if w.tx != nil {
		if err := w.tx.Rollback(); !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
	}
	return errors.Join(append(errs, w.db.Close())...)
}

func (w *Writer) WriteTile(index tile.Index, tileData []byte) error {
	if !index.Valid() {
		return fmt.Errorf("tileview: invalid tile index %v", index)
	}
	_, err := w.stmt.Exec(index.Level, index.Col, flipRow(index), tileData)
	if err == nil {
		w.count++
	}
	return err
}

func (w *Writer) Finalize() error {
	w.logger.Debug("tileview: committing tiles", "count", w.count)
	if err := w.tx.Commit(); err != nil {
		return err
	}

	w.logger.Debug("tileview: creating index")
	_, err := w.db.Exec("CREATE UNIQUE INDEX tile_index ON tiles (zoom_level, tile_column, tile_row)")

	w.logger.Debug("tileview: done!")
	return err
}
