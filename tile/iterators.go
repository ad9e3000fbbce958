package tile

import (
	"errors"
	"iter"
)

var errVisitCancelled = errors.New("visit cancelled")

// IterTiles returns an iterator over all tiles in the storage.
// It yields tile indices and their data. Iteration may panic on unrecoverable errors.
func IterTiles(r Visitor) iter.Seq2[Index, []byte] {
	return func(yield func(Index, []byte) bool) {
		err := r.VisitTiles(func(index Index, tileData []byte) error {
			if !yield(index, tileData) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}
