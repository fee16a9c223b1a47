// Package segment builds and reads the immutable unit of the index.
//
// # Overview
//
// A segment is a self contained batch of documents: its own term
// dictionary, posting lists, field norms and document store, written once
// and never mutated. Deletes are tombstones in a side file; the segment
// bytes themselves never change, which is what lets the directory layer
// serve them from shared memory mappings.
//
// # Files
//
// A segment with id 000000000000002a consists of:
//
//	000000000000002a.term   term dictionary: term -> TermInfo
//	000000000000002a.idx    posting lists, located via TermInfo
//	000000000000002a.norm   one byte per document per field
//	000000000000002a.store  block compressed stored documents
//	000000000000002a.del    roaring bitmap of deleted doc ids (optional)
//
// Every file carries a magic number, a format version and a CRC32 (IEEE)
// footer so corruption is caught at open time rather than as garbage
// query results.
package segment
