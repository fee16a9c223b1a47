package model

import (
	"bytes"
	"fmt"
)

// SegmentID is the unique identifier for a segment within an index.
type SegmentID uint64

// String returns the fixed-width hex form used in segment file names.
func (id SegmentID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// DocID is a dense, segment-local identifier for a document.
// It is strictly 32-bit and unique within its segment. Posting streams and
// scorers emit DocIDs in strictly increasing order.
type DocID uint32

// TerminatedDocID is the exhaustion sentinel for cursors. It is never a
// valid document id.
const TerminatedDocID = ^DocID(0)

// Score is the relevance score attached to a matched document.
// Scorers never produce NaN or negative values.
type Score float32

// Field identifies a schema field by its ordinal.
type Field uint32

// Term is an immutable (field, byte-string) pair.
//
// Terms are owned by the query and looked up against a segment's vocabulary.
// Equality and ordering are byte-wise within a field.
type Term struct {
	field Field
	value []byte
}

// NewTerm builds a term from a field and a raw byte value.
// The value is copied; the term does not alias the caller's slice.
func NewTerm(field Field, value []byte) Term {
	v := make([]byte, len(value))
	copy(v, value)
	return Term{field: field, value: v}
}

// NewTextTerm builds a term from a field and a UTF-8 text value.
func NewTextTerm(field Field, text string) Term {
	return Term{field: field, value: []byte(text)}
}

// Field returns the field the term belongs to.
func (t Term) Field() Field {
	return t.field
}

// Value returns the raw term bytes. Callers must treat the slice as read-only.
func (t Term) Value() []byte {
	return t.value
}

// Text returns the term bytes interpreted as UTF-8 text.
func (t Term) Text() string {
	return string(t.value)
}

// Equal reports whether two terms have the same field and value.
func (t Term) Equal(other Term) bool {
	return t.field == other.field && bytes.Equal(t.value, other.value)
}

// Compare orders terms by field, then byte-wise by value.
func (t Term) Compare(other Term) int {
	if t.field != other.field {
		if t.field < other.field {
			return -1
		}
		return 1
	}
	return bytes.Compare(t.value, other.value)
}

// String returns a debug representation of the term.
func (t Term) String() string {
	return fmt.Sprintf("Term(field=%d, %q)", t.field, t.value)
}

// FieldValue is a single field's content within a document.
type FieldValue struct {
	Field Field
	Text  string
}

// Document is an ordered list of field values submitted for indexing.
// Field order is preserved; token positions within a field accumulate
// across repeated values of that field.
type Document struct {
	Values []FieldValue
}

// AddText appends a text value for the given field.
func (d *Document) AddText(field Field, text string) {
	d.Values = append(d.Values, FieldValue{Field: field, Text: text})
}
