// Package model defines core types shared across the index.
//
// # Identity Types
//
//   - DocID: Segment-local document identifier (uint32), strictly increasing
//     along any posting stream or scorer iteration
//   - SegmentID: Unique identifier for a segment (uint64)
//   - Field: Schema-assigned field ordinal (uint32)
//
// # Value Types
//
//   - Term: An immutable (field, byte-string) pair looked up against a
//     segment's vocabulary
//   - Score: Relevance score (float32); higher is more relevant
//   - Document: Ordered field values submitted for indexing
//
// DocIDs are only meaningful within their segment; results that cross
// segments pair the DocID with a segment ordinal.
package model
