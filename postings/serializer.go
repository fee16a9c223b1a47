package postings

import (
	"encoding/binary"
	"fmt"

	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/schema"
)

// Serializer encodes one term's posting list. Postings must arrive in
// strictly ascending doc id order; the zero value is not usable, call
// NewSerializer.
type Serializer struct {
	opts    schema.IndexRecordOption
	buf     []byte
	prevDoc model.DocID
	docFreq uint32
}

// NewSerializer returns a serializer writing entries in the shape the
// given record option dictates.
func NewSerializer(opts schema.IndexRecordOption) *Serializer {
	return &Serializer{opts: opts}
}

// Reset clears the serializer for the next term, keeping the buffer.
func (s *Serializer) Reset() {
	s.buf = s.buf[:0]
	s.prevDoc = 0
	s.docFreq = 0
}

// WritePosting appends one document entry. positions are the zero based
// token offsets of the term in the document and must be strictly
// increasing; they are ignored unless the record option tracks positions,
// in which case len(positions) must equal tf.
func (s *Serializer) WritePosting(doc model.DocID, tf uint32, positions []uint32) error {
	if s.docFreq > 0 && doc <= s.prevDoc {
		return fmt.Errorf("postings: doc %d after doc %d breaks ordering", doc, s.prevDoc)
	}
	if tf == 0 {
		return fmt.Errorf("postings: doc %d with zero term frequency", doc)
	}

	delta := uint64(doc)
	if s.docFreq > 0 {
		delta = uint64(doc - s.prevDoc)
	}
	s.buf = binary.AppendUvarint(s.buf, delta)

	if s.opts.HasFreqs() {
		s.buf = binary.AppendUvarint(s.buf, uint64(tf))
	}
	if s.opts.HasPositions() {
		if uint32(len(positions)) != tf {
			return fmt.Errorf("postings: doc %d has %d positions for term frequency %d", doc, len(positions), tf)
		}
		prev := uint32(0)
		for i, pos := range positions {
			if i > 0 && pos <= prev {
				return fmt.Errorf("postings: doc %d position %d after %d breaks ordering", doc, pos, prev)
			}
			s.buf = binary.AppendUvarint(s.buf, uint64(pos-prev))
			prev = pos
		}
	}

	s.prevDoc = doc
	s.docFreq++
	return nil
}

// DocFreq returns the number of entries written since the last Reset.
func (s *Serializer) DocFreq() uint32 {
	return s.docFreq
}

// Bytes returns the encoded list. The slice is invalidated by the next
// WritePosting or Reset.
func (s *Serializer) Bytes() []byte {
	return s.buf
}
