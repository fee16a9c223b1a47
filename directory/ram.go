package directory

import (
	"bytes"
	"sync"
)

// RAMDirectory keeps every file in process memory. It backs tests and
// throwaway indexes; nothing survives the process.
//
// Writes replace the stored slice instead of mutating it, so sources
// opened before an overwrite keep seeing the bytes they were opened on.
type RAMDirectory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ Directory = (*RAMDirectory)(nil)

// NewRAMDirectory returns an empty in-memory directory.
func NewRAMDirectory() *RAMDirectory {
	return &RAMDirectory{files: make(map[string][]byte)}
}

func (d *RAMDirectory) OpenRead(path string) (*ReadOnlySource, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.files[path]
	if !ok {
		return nil, &FileError{Op: "open", Path: path, Err: ErrFileDoesNotExist}
	}
	return NewStaticSource(data), nil
}

func (d *RAMDirectory) OpenWrite(path string) (WriteCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.files[path]; ok {
		return nil, &FileError{Op: "create", Path: path, Err: ErrFileAlreadyExists}
	}
	// Reserve the path so concurrent OpenWrite calls collide here, not
	// at Close time.
	d.files[path] = nil
	return &ramWriter{dir: d, path: path}, nil
}

func (d *RAMDirectory) AtomicRead(path string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.files[path]
	if !ok {
		return nil, &FileError{Op: "read", Path: path, Err: ErrFileDoesNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (d *RAMDirectory) AtomicWrite(path string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	d.files[path] = stored
	return nil
}

func (d *RAMDirectory) Delete(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.files[path]; !ok {
		return &FileError{Op: "delete", Path: path, Err: ErrFileDoesNotExist}
	}
	delete(d.files, path)
	return nil
}

func (d *RAMDirectory) Exists(path string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.files[path]
	return ok, nil
}

func (d *RAMDirectory) Close() error {
	return nil
}

type ramWriter struct {
	dir  *RAMDirectory
	path string
	buf  bytes.Buffer
}

func (w *ramWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *ramWriter) Sync() error {
	w.dir.mu.Lock()
	defer w.dir.mu.Unlock()

	data := make([]byte, w.buf.Len())
	copy(data, w.buf.Bytes())
	w.dir.files[w.path] = data
	return nil
}

func (w *ramWriter) Close() error {
	return w.Sync()
}
