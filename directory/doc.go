// Package directory abstracts where index files live.
//
// # Overview
//
// An index is a set of immutable files plus one small mutable metadata
// file. The Directory interface captures exactly that split: OpenRead
// hands out immutable byte sources for segment files, while AtomicRead
// and AtomicWrite guard the metadata file so readers never observe a
// half written update.
//
// # Implementations
//
//   - MmapDirectory: local filesystem, files served through shared
//     memory mappings with a weak reference cache
//   - RAMDirectory: everything in process memory, used by tests and
//     short lived indexes
//   - s3.Directory, minio.Directory (subpackages): remote object
//     storage with a local mmap cache in front
//
// All implementations distinguish "file does not exist" from real I/O
// failures: the former unwraps to ErrFileDoesNotExist, so callers can
// treat a missing file as a state rather than a fault.
package directory
