package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrFileDoesNotExist marks a lookup of a path with no file behind it.
	// It is wrapped in a FileError, so test with errors.Is.
	ErrFileDoesNotExist = errors.New("file does not exist")

	// ErrFileAlreadyExists is returned by OpenWrite when the path is taken.
	// Index files are write once, so overwriting is always a bug upstream.
	ErrFileAlreadyExists = errors.New("file already exists")

	// ErrNotADirectory is returned when a directory root is not usable.
	ErrNotADirectory = errors.New("not a directory")
)

// FileError decorates a file operation failure with the operation name and
// the path involved.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("directory: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
