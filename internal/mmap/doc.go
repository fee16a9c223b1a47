// Package mmap provides read-only memory-mapped access to index files.
//
// # Overview
//
// Segment files are written once and never mutated, which makes them ideal
// candidates for memory mapping: postings, norms and term dictionaries are
// served straight from the page cache without copying through read buffers,
// and multiple searchers share the same physical pages.
//
// # Usage
//
//	m, err := mmap.Open("000000000000002a.idx")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
//	// Advise the kernel when the access pattern is known.
//	m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) hints
//   - Windows: CreateFileMapping/MapViewOfFile, hints are a no-op
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch Bytes() after Close returns.
package mmap
