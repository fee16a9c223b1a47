// Package postings encodes and iterates per-term posting lists.
//
// A posting list is the on-disk record of which documents contain a term,
// how often, and at which token positions. Lists are written once by the
// Serializer and then only ever walked forward by SegmentPostings, the
// cursor every scorer sits on.
//
// # Wire format
//
// One entry per document, in ascending doc id order:
//
//	docDelta  uvarint   // gap to the previous doc id (first entry: the id)
//	termFreq  uvarint   // only when the field records frequencies
//	posDelta* uvarint   // termFreq gaps, only when positions are recorded
//
// Gap encoding keeps dense lists small; uvarints come from encoding/binary
// so there is no custom bit twiddling to maintain.
package postings
