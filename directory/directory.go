package directory

import "io"

// Directory is the storage abstraction the index reads and writes through.
//
// Segment files are immutable: they are written exactly once through
// OpenWrite and from then on only read and eventually deleted. The single
// mutable file, the index metadata, goes through AtomicRead/AtomicWrite
// instead so concurrent readers never see a torn update.
type Directory interface {
	// OpenRead returns an immutable byte source for the file at path.
	// The source's bytes stay stable until it is closed, even if the
	// file is deleted in the meantime.
	OpenRead(path string) (*ReadOnlySource, error)

	// OpenWrite creates the file at path for writing. The path must not
	// exist yet; ErrFileAlreadyExists is returned otherwise.
	OpenWrite(path string) (WriteCloser, error)

	// AtomicRead returns the full content of the file at path.
	AtomicRead(path string) ([]byte, error)

	// AtomicWrite replaces the file at path with data in one step.
	// Readers observe either the previous content or data, never a mix.
	AtomicWrite(path string, data []byte) error

	// Delete removes the file at path.
	Delete(path string) error

	// Exists reports whether a file exists at path.
	Exists(path string) (bool, error)

	// Close releases resources held by the directory. Sources already
	// handed out stay valid until they are closed themselves.
	Close() error
}

// WriteCloser is the handle OpenWrite returns. Sync makes the bytes
// written so far durable; Close implies a final Sync.
type WriteCloser interface {
	io.Writer
	// Sync flushes buffered bytes and forces them to stable storage.
	Sync() error
	io.Closer
}
