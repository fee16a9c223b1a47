package directory

import "io"

// ReadOnlySource is an immutable view over the bytes of one index file.
// The backing storage may be a shared memory mapping, so every source
// must be closed to let the mapping go once the last reader is done.
type ReadOnlySource struct {
	data  []byte
	owner io.Closer
}

// NewStaticSource wraps an in-memory byte slice as a source. Closing it
// is a no-op; the caller promises not to mutate data afterwards.
func NewStaticSource(data []byte) *ReadOnlySource {
	return &ReadOnlySource{data: data}
}

func newOwnedSource(data []byte, owner io.Closer) *ReadOnlySource {
	return &ReadOnlySource{data: data, owner: owner}
}

// Bytes returns the file content. The slice must not be mutated and is
// only valid until Close.
func (s *ReadOnlySource) Bytes() []byte {
	return s.data
}

// Len returns the file size in bytes.
func (s *ReadOnlySource) Len() int {
	return len(s.data)
}

// Close releases the reference on the backing storage.
func (s *ReadOnlySource) Close() error {
	s.data = nil
	if s.owner == nil {
		return nil
	}
	owner := s.owner
	s.owner = nil
	return owner.Close()
}
