package segment

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/drusellers/tantivy/directory"
	"github.com/drusellers/tantivy/fieldnorm"
	"github.com/drusellers/tantivy/internal/blockcomp"
	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/postings"
	"github.com/drusellers/tantivy/schema"
)

// Codec selects the block compression applied to the store and the
// term dictionary.
type Codec = blockcomp.Codec

const (
	CodecNone = blockcomp.CodecNone
	CodecLZ4  = blockcomp.CodecLZ4
	CodecZSTD = blockcomp.CodecZSTD
)

// ParseCodec maps a config string ("none", "lz4", "zstd") to a Codec.
func ParseCodec(s string) (Codec, error) {
	return blockcomp.ParseCodec(s)
}

// Writer accumulates documents in memory and seals them into one
// immutable segment. It is not safe for concurrent use; the index
// writer above it serializes access.
type Writer struct {
	dir   directory.Directory
	sch   *schema.Schema
	id    model.SegmentID
	codec Codec

	inverted []map[string]*termPostings
	norms    []*fieldnorm.Writer
	totals   []uint64
	store    *storeWriter

	nextDoc model.DocID
	sealed  bool
}

// termPostings collects one term's occurrences until the segment is
// sealed.
type termPostings struct {
	docs []docEntry
}

type docEntry struct {
	doc       model.DocID
	tf        uint32
	positions []uint32
}

// NewWriter starts a segment with the given id. Files are written into
// dir when Finish is called, nothing touches storage before that.
func NewWriter(dir directory.Directory, sch *schema.Schema, id model.SegmentID, codec Codec) *Writer {
	n := sch.NumFields()
	w := &Writer{
		dir:      dir,
		sch:      sch,
		id:       id,
		codec:    codec,
		inverted: make([]map[string]*termPostings, n),
		norms:    make([]*fieldnorm.Writer, n),
		totals:   make([]uint64, n),
		store:    newStoreWriter(codec),
	}
	for i := 0; i < n; i++ {
		w.inverted[i] = make(map[string]*termPostings)
		w.norms[i] = fieldnorm.NewWriter()
	}
	return w
}

// NumDocs returns how many documents have been added so far.
func (w *Writer) NumDocs() uint32 {
	return uint32(w.nextDoc)
}

// AddDocument indexes and stores one document, returning its doc id
// within the segment. Values for unknown fields are rejected.
func (w *Writer) AddDocument(doc model.Document) (model.DocID, error) {
	if w.sealed {
		return 0, ErrSealed
	}
	for _, fv := range doc.Values {
		if int(fv.Field) >= len(w.inverted) {
			return 0, fmt.Errorf("%w: field %d", ErrUnknownField, fv.Field)
		}
	}

	docID := w.nextDoc

	// Token positions continue across multiple values of the same field,
	// so each field has a single position space per document.
	fieldLen := make([]uint32, len(w.inverted))
	occurrences := make([]map[string][]uint32, len(w.inverted))

	for _, fv := range doc.Values {
		f := int(fv.Field)
		if occurrences[f] == nil {
			occurrences[f] = make(map[string][]uint32)
		}
		for _, token := range Tokenize(fv.Text) {
			occurrences[f][token] = append(occurrences[f][token], fieldLen[f])
			fieldLen[f]++
		}
	}

	for f := range w.inverted {
		entry, err := w.sch.Entry(model.Field(f))
		if err != nil {
			return 0, err
		}
		for token, positions := range occurrences[f] {
			tp := w.inverted[f][token]
			if tp == nil {
				tp = &termPostings{}
				w.inverted[f][token] = tp
			}
			e := docEntry{doc: docID, tf: uint32(len(positions))}
			if entry.Indexing.HasPositions() {
				e.positions = positions
			}
			tp.docs = append(tp.docs, e)
		}

		if err := w.norms[f].Record(docID, fieldLen[f]); err != nil {
			return 0, err
		}
		w.totals[f] += uint64(fieldLen[f])
	}

	if err := w.store.addDocument(doc); err != nil {
		return 0, err
	}

	w.nextDoc++
	return docID, nil
}

// Finish serializes the segment files and returns the segment's Meta.
// The writer is unusable afterwards.
func (w *Writer) Finish() (Meta, error) {
	if w.sealed {
		return Meta{}, ErrSealed
	}
	w.sealed = true
	if w.nextDoc == 0 {
		return Meta{}, ErrNoDocs
	}

	if err := w.writePostingsAndTerms(); err != nil {
		return Meta{}, err
	}
	if err := w.writeNorms(); err != nil {
		return Meta{}, err
	}

	storeData, err := w.store.finish()
	if err != nil {
		return Meta{}, err
	}
	if err := w.writeFile(ExtStore, storeData); err != nil {
		return Meta{}, err
	}

	meta := Meta{ID: w.id, MaxDoc: uint32(w.nextDoc)}
	for f, total := range w.totals {
		if total > 0 {
			meta.FieldStats = append(meta.FieldStats, FieldStat{
				Field:       model.Field(f),
				TotalTokens: total,
			})
		}
	}
	return meta, nil
}

func (w *Writer) writePostingsAndTerms() error {
	idx := appendHeader(nil, magicIdx)
	payloadStart := len(idx)

	var numTerms uint64
	dictEntries := make([]byte, 0, 1024)

	for f, terms := range w.inverted {
		entry, err := w.sch.Entry(model.Field(f))
		if err != nil {
			return err
		}

		sorted := make([]string, 0, len(terms))
		for token := range terms {
			sorted = append(sorted, token)
		}
		sort.Strings(sorted)

		ser := postings.NewSerializer(entry.Indexing)
		for _, token := range sorted {
			ser.Reset()
			for _, e := range terms[token].docs {
				if err := ser.WritePosting(e.doc, e.tf, e.positions); err != nil {
					return err
				}
			}

			offset := uint64(len(idx) - payloadStart)
			idx = append(idx, ser.Bytes()...)

			dictEntries = binary.AppendUvarint(dictEntries, uint64(f))
			dictEntries = binary.AppendUvarint(dictEntries, uint64(len(token)))
			dictEntries = append(dictEntries, token...)
			dictEntries = binary.AppendUvarint(dictEntries, uint64(ser.DocFreq()))
			dictEntries = binary.AppendUvarint(dictEntries, offset)
			dictEntries = binary.AppendUvarint(dictEntries, uint64(len(ser.Bytes())))
			numTerms++
		}
	}

	if err := w.writeFile(ExtIdx, appendFooter(idx)); err != nil {
		return err
	}

	// The dictionary is decoded wholesale at open time, so it can be
	// compressed as one block.
	body := binary.AppendUvarint(nil, numTerms)
	body = append(body, dictEntries...)
	compressed, err := blockcomp.CompressBlock(body, w.codec)
	if err != nil {
		return err
	}
	dict := appendHeader(nil, magicTerms)
	dict = append(dict, byte(w.codec))
	dict = append(dict, compressed...)
	return w.writeFile(ExtTerms, appendFooter(dict))
}

func (w *Writer) writeNorms() error {
	buf := appendHeader(nil, magicNorms)
	buf = binary.AppendUvarint(buf, uint64(len(w.norms)))
	for f, nw := range w.norms {
		buf = binary.AppendUvarint(buf, uint64(f))
		buf = binary.AppendUvarint(buf, uint64(nw.NumDocs()))
		buf = append(buf, nw.Bytes()...)
	}
	return w.writeFile(ExtNorms, appendFooter(buf))
}

func (w *Writer) writeFile(ext string, data []byte) error {
	f, err := w.dir.OpenWrite(FileName(w.id, ext))
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
