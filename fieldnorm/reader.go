package fieldnorm

import "github.com/drusellers/tantivy/model"

// Reader exposes the norm bytes of a single field inside one segment.
// The backing slice holds exactly one byte per document, indexed by DocID.
// Lookups do not range check beyond the slice itself: callers feed doc ids
// produced by the same segment, which are in range by construction.
type Reader struct {
	data []byte
}

// NewReader wraps a norm slab. The slice is retained, not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ConstReader builds a reader where every document decodes to the given
// field length. It backs fields indexed without norms and tests.
func ConstReader(numDocs uint32, length uint32) *Reader {
	data := make([]byte, numDocs)
	id := EncodeFieldLength(length)
	for i := range data {
		data[i] = id
	}
	return &Reader{data: data}
}

// NumDocs returns the number of documents covered by the slab.
func (r *Reader) NumDocs() uint32 {
	return uint32(len(r.data))
}

// NormID returns the stored one byte norm id for a document.
func (r *Reader) NormID(doc model.DocID) uint8 {
	return r.data[doc]
}

// FieldLength decodes the approximate token count of a document's field.
func (r *Reader) FieldLength(doc model.DocID) uint32 {
	return DecodeFieldNorm(r.data[doc])
}
