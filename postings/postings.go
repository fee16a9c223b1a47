package postings

import (
	"encoding/binary"
	"errors"

	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/schema"
)

// ErrCorrupt is reported by Err when a posting list cannot be decoded.
var ErrCorrupt = errors.New("postings: corrupt posting list")

// SegmentPostings is a forward-only cursor over one term's posting list.
//
// The cursor starts before the first entry: call Advance (or SkipTo) once
// before reading Doc, TermFreq or Positions. After exhaustion Doc reports
// model.TerminatedDocID and further Advance calls keep returning false.
type SegmentPostings struct {
	data      []byte
	opts      schema.IndexRecordOption
	offset    int
	remaining uint32

	started bool
	doc     model.DocID
	tf      uint32
	posBuf  []uint32
	err     error
}

// NewSegmentPostings opens a cursor over an encoded posting list. data
// must be exactly the term's slice of the postings file, docFreq the
// entry count recorded in its TermInfo.
func NewSegmentPostings(data []byte, docFreq uint32, opts schema.IndexRecordOption) *SegmentPostings {
	return &SegmentPostings{
		data:      data,
		opts:      opts,
		remaining: docFreq,
	}
}

// Advance moves to the next document and reports whether one exists.
func (p *SegmentPostings) Advance() bool {
	if p.started && p.doc == model.TerminatedDocID {
		return false
	}
	p.started = true
	if p.remaining == 0 {
		p.exhaust()
		return false
	}
	p.remaining--

	delta, ok := p.readUvarint()
	if !ok {
		return false
	}
	p.doc += model.DocID(delta)

	p.tf = 1
	if p.opts.HasFreqs() {
		tf, ok := p.readUvarint()
		if !ok {
			return false
		}
		p.tf = uint32(tf)
	}

	if p.opts.HasPositions() {
		p.posBuf = p.posBuf[:0]
		pos := uint32(0)
		for i := uint32(0); i < p.tf; i++ {
			delta, ok := p.readUvarint()
			if !ok {
				return false
			}
			pos += uint32(delta)
			p.posBuf = append(p.posBuf, pos)
		}
	}
	return true
}

// SkipTo moves to the first document with id >= target and reports
// whether one exists. It never moves backward: a cursor already at or
// past target stays put.
func (p *SegmentPostings) SkipTo(target model.DocID) bool {
	for {
		if p.started {
			if p.doc == model.TerminatedDocID {
				return false
			}
			if p.doc >= target {
				return true
			}
		}
		if !p.Advance() {
			return false
		}
	}
}

// Doc returns the current document id, or model.TerminatedDocID once the
// cursor is exhausted. It is undefined before the first Advance.
func (p *SegmentPostings) Doc() model.DocID {
	return p.doc
}

// TermFreq returns how often the term occurs in the current document.
// Fields indexed without frequencies always report 1.
func (p *SegmentPostings) TermFreq() uint32 {
	return p.tf
}

// Positions returns the term's zero based token offsets in the current
// document, or nil when the field does not record positions. The slice
// is reused by the next Advance.
func (p *SegmentPostings) Positions() []uint32 {
	if !p.opts.HasPositions() {
		return nil
	}
	return p.posBuf
}

// Err reports a decoding failure. A cursor that hit one behaves as
// exhausted from that point on.
func (p *SegmentPostings) Err() error {
	return p.err
}

func (p *SegmentPostings) exhaust() {
	p.doc = model.TerminatedDocID
	p.tf = 0
	p.posBuf = p.posBuf[:0]
}

func (p *SegmentPostings) readUvarint() (uint64, bool) {
	v, n := binary.Uvarint(p.data[p.offset:])
	if n <= 0 {
		p.err = ErrCorrupt
		p.remaining = 0
		p.exhaust()
		return 0, false
	}
	p.offset += n
	return v, true
}
