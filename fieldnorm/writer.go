package fieldnorm

import (
	"fmt"

	"github.com/drusellers/tantivy/model"
)

// Writer accumulates the norm byte of every document for a single field.
// Documents must be recorded in ascending doc id order with no gaps; a
// document whose field is absent is recorded with length zero.
type Writer struct {
	data []byte
}

// NewWriter returns an empty norm writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Record appends the norm byte for the next document. The doc id is checked
// against the append position to catch out of order callers early.
func (w *Writer) Record(doc model.DocID, fieldLength uint32) error {
	if uint32(doc) != uint32(len(w.data)) {
		return fmt.Errorf("fieldnorm: doc %d recorded out of order, expected %d", doc, len(w.data))
	}
	w.data = append(w.data, EncodeFieldLength(fieldLength))
	return nil
}

// NumDocs returns how many documents have been recorded so far.
func (w *Writer) NumDocs() uint32 {
	return uint32(len(w.data))
}

// Bytes returns the accumulated slab, one byte per document.
func (w *Writer) Bytes() []byte {
	return w.data
}
