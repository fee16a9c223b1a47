package tantivy

import (
	"errors"
	"fmt"

	"github.com/drusellers/tantivy/directory"
)

var (
	// ErrIndexExists is returned by Create when the directory already
	// holds an index.
	ErrIndexExists = errors.New("tantivy: index already exists")

	// ErrIndexDoesNotExist is returned by Open when the directory holds
	// no index metadata.
	ErrIndexDoesNotExist = errors.New("tantivy: index does not exist")

	// ErrSearcherClosed is returned when a Searcher is used after Close.
	ErrSearcherClosed = errors.New("tantivy: searcher used after close")
)

// translateMetaError maps directory-level failures around the metadata
// file onto the index-level sentinels, keeping the underlying error
// reachable through errors.Is/As.
func translateMetaError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, directory.ErrFileDoesNotExist) {
		return fmt.Errorf("%w: %w", ErrIndexDoesNotExist, err)
	}
	if errors.Is(err, directory.ErrFileAlreadyExists) {
		return fmt.Errorf("%w: %w", ErrIndexExists, err)
	}
	return err
}
