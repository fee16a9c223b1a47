package directory

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// MmapDirectory serves index files from a local directory through shared
// memory mappings. Mappings are cached per path so that scanning the same
// segment from many goroutines costs one mmap call, not one per scan.
type MmapDirectory struct {
	root  string
	cache *mmapCache
}

var _ Directory = (*MmapDirectory)(nil)

// OpenMmapDirectory opens the directory rooted at root, which must exist.
func OpenMmapDirectory(root string) (*MmapDirectory, error) {
	fi, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileError{Op: "open", Path: root, Err: ErrFileDoesNotExist}
		}
		return nil, &FileError{Op: "open", Path: root, Err: err}
	}
	if !fi.IsDir() {
		return nil, &FileError{Op: "open", Path: root, Err: ErrNotADirectory}
	}
	return &MmapDirectory{root: root, cache: newMmapCache()}, nil
}

func (d *MmapDirectory) String() string {
	return fmt.Sprintf("MmapDirectory(%s)", d.root)
}

func (d *MmapDirectory) resolve(path string) string {
	return filepath.Join(d.root, path)
}

// CacheInfo returns counters and live mappings of the mmap cache.
func (d *MmapDirectory) CacheInfo() CacheInfo {
	return d.cache.info()
}

// OpenRead memory maps the file at path, reusing a cached mapping when
// other sources for the same path are still open.
func (d *MmapDirectory) OpenRead(path string) (*ReadOnlySource, error) {
	return d.cache.openRead(d.resolve(path))
}

// OpenWrite creates the file at path. Segment files are write once, so
// an existing file is reported as ErrFileAlreadyExists rather than
// truncated.
func (d *MmapDirectory) OpenWrite(path string) (WriteCloser, error) {
	full := d.resolve(path)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, &FileError{Op: "create", Path: path, Err: ErrFileAlreadyExists}
		}
		return nil, &FileError{Op: "create", Path: path, Err: err}
	}
	return newSafeFileWriter(f), nil
}

// AtomicRead returns the whole content of the file at path.
func (d *MmapDirectory) AtomicRead(path string) ([]byte, error) {
	data, err := os.ReadFile(d.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileError{Op: "read", Path: path, Err: ErrFileDoesNotExist}
		}
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// AtomicWrite writes data to a temporary file, syncs it and renames it
// over path, so readers see either the old or the new content.
func (d *MmapDirectory) AtomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(d.root, ".tmp-*")
	if err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &FileError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &FileError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, d.resolve(path)); err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Delete removes the file at path and drops its cache entry eagerly.
// The mapping itself is released once the last open source closes.
func (d *MmapDirectory) Delete(path string) error {
	full := d.resolve(path)
	d.cache.evict(full)
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return &FileError{Op: "delete", Path: path, Err: ErrFileDoesNotExist}
		}
		return &FileError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// Exists reports whether the file at path exists.
func (d *MmapDirectory) Exists(path string) (bool, error) {
	_, err := os.Stat(d.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &FileError{Op: "stat", Path: path, Err: err}
}

// Close drops dead cache entries. Open sources keep their mappings alive
// until they are closed themselves.
func (d *MmapDirectory) Close() error {
	d.cache.mu.Lock()
	defer d.cache.mu.Unlock()
	d.cache.purge()
	return nil
}

// safeFileWriter buffers writes and fsyncs on Sync and Close, so a
// completed segment file is durable before it is referenced by metadata.
type safeFileWriter struct {
	f  *os.File
	bw *bufio.Writer
}

func newSafeFileWriter(f *os.File) *safeFileWriter {
	return &safeFileWriter{f: f, bw: bufio.NewWriter(f)}
}

func (w *safeFileWriter) Write(p []byte) (int, error) {
	return w.bw.Write(p)
}

func (w *safeFileWriter) Sync() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.f.Sync()
}

func (w *safeFileWriter) Close() error {
	if err := w.Sync(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
