package segment

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/drusellers/tantivy/directory"
	"github.com/drusellers/tantivy/fieldnorm"
	"github.com/drusellers/tantivy/internal/blockcomp"
	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/postings"
	"github.com/drusellers/tantivy/schema"
)

// Reader gives query execution access to one sealed segment: the term
// dictionary, posting lists, field norms, stored documents and delete
// tombstones. All methods are safe for concurrent use once the reader
// is open.
type Reader struct {
	meta Meta
	sch  *schema.Schema

	dict         []map[string]postings.TermInfo
	postingsData []byte
	norms        []*fieldnorm.Reader
	store        *StoreReader
	deletes      *roaring.Bitmap

	sources []*directory.ReadOnlySource
}

// OpenReader opens the segment described by meta inside dir. The term
// dictionary is decoded eagerly; postings and stored documents are
// served lazily from their byte sources until Close.
func OpenReader(dir directory.Directory, sch *schema.Schema, meta Meta) (*Reader, error) {
	r := &Reader{meta: meta, sch: sch}

	ok := false
	defer func() {
		if !ok {
			r.Close()
		}
	}()

	termsSrc, err := dir.OpenRead(FileName(meta.ID, ExtTerms))
	if err != nil {
		return nil, err
	}
	err = r.loadDict(termsSrc.Bytes())
	termsSrc.Close()
	if err != nil {
		return nil, err
	}

	idxSrc, err := dir.OpenRead(FileName(meta.ID, ExtIdx))
	if err != nil {
		return nil, err
	}
	r.sources = append(r.sources, idxSrc)
	r.postingsData, err = checkFile(idxSrc.Bytes(), magicIdx)
	if err != nil {
		return nil, err
	}

	normsSrc, err := dir.OpenRead(FileName(meta.ID, ExtNorms))
	if err != nil {
		return nil, err
	}
	r.sources = append(r.sources, normsSrc)
	if err := r.loadNorms(normsSrc.Bytes()); err != nil {
		return nil, err
	}

	storeSrc, err := dir.OpenRead(FileName(meta.ID, ExtStore))
	if err != nil {
		return nil, err
	}
	r.sources = append(r.sources, storeSrc)
	r.store, err = newStoreReader(storeSrc.Bytes(), meta.MaxDoc)
	if err != nil {
		return nil, err
	}

	if meta.NumDeleted > 0 {
		r.deletes, err = ReadDeletes(dir, meta.ID)
		if err != nil {
			return nil, err
		}
	}

	ok = true
	return r, nil
}

func (r *Reader) loadDict(data []byte) error {
	compressed, err := checkFile(data, magicTerms)
	if err != nil {
		return err
	}
	if len(compressed) < 1 {
		return ErrTruncated
	}
	codec, err := blockcomp.CodecFromByte(compressed[0])
	if err != nil {
		return err
	}
	payload, _, err := blockcomp.DecompressBlock(compressed[1:], codec)
	if err != nil {
		return err
	}

	r.dict = make([]map[string]postings.TermInfo, r.sch.NumFields())
	for f := range r.dict {
		r.dict[f] = make(map[string]postings.TermInfo)
	}

	rd := &uvarintReader{data: payload}
	numTerms := rd.uvarint()
	for i := uint64(0); i < numTerms; i++ {
		field := rd.uvarint()
		termLen := rd.uvarint()
		termBytes := rd.bytes(int(termLen))
		docFreq := rd.uvarint()
		offset := rd.uvarint()
		length := rd.uvarint()
		if rd.err != nil {
			return rd.err
		}
		if field >= uint64(len(r.dict)) {
			return fmt.Errorf("%w: field %d in term dictionary", ErrUnknownField, field)
		}
		r.dict[field][string(termBytes)] = postings.TermInfo{
			DocFreq: uint32(docFreq),
			Offset:  offset,
			Length:  uint32(length),
		}
	}
	return rd.err
}

func (r *Reader) loadNorms(data []byte) error {
	payload, err := checkFile(data, magicNorms)
	if err != nil {
		return err
	}

	r.norms = make([]*fieldnorm.Reader, r.sch.NumFields())
	rd := &uvarintReader{data: payload}
	numFields := rd.uvarint()
	for i := uint64(0); i < numFields; i++ {
		field := rd.uvarint()
		docCount := rd.uvarint()
		slab := rd.bytes(int(docCount))
		if rd.err != nil {
			return rd.err
		}
		if field >= uint64(len(r.norms)) {
			return fmt.Errorf("%w: field %d in norms file", ErrUnknownField, field)
		}
		if uint32(docCount) != r.meta.MaxDoc {
			return fmt.Errorf("segment: norms for field %d cover %d docs, segment has %d", field, docCount, r.meta.MaxDoc)
		}
		r.norms[field] = fieldnorm.NewReader(slab)
	}
	return rd.err
}

// Meta returns the segment's metadata.
func (r *Reader) Meta() Meta {
	return r.meta
}

// MaxDoc returns the number of documents in the segment.
func (r *Reader) MaxDoc() uint32 {
	return r.meta.MaxDoc
}

// Schema returns the schema the segment was built with.
func (r *Reader) Schema() *schema.Schema {
	return r.sch
}

// TermInfo looks the term up in the dictionary. The second return is
// false when the term does not occur in this segment; a present term
// always has DocFreq >= 1.
func (r *Reader) TermInfo(term model.Term) (postings.TermInfo, bool) {
	f := term.Field()
	if int(f) >= len(r.dict) {
		return postings.TermInfo{}, false
	}
	info, ok := r.dict[f][string(term.Value())]
	return info, ok
}

// OpenPostings opens a cursor over the posting list located by info,
// which must come from this reader's TermInfo.
func (r *Reader) OpenPostings(field model.Field, info postings.TermInfo) (*postings.SegmentPostings, error) {
	entry, err := r.sch.Entry(field)
	if err != nil {
		return nil, err
	}
	end := info.Offset + uint64(info.Length)
	if end > uint64(len(r.postingsData)) {
		return nil, fmt.Errorf("%w: [%d, %d) beyond %d", ErrCorruptTermIdx, info.Offset, end, len(r.postingsData))
	}
	data := r.postingsData[info.Offset:end]
	return postings.NewSegmentPostings(data, info.DocFreq, entry.Indexing), nil
}

// Postings looks up term and opens its posting list in one step. The
// bool mirrors TermInfo: false means the term is absent, which is not
// an error.
func (r *Reader) Postings(term model.Term) (*postings.SegmentPostings, bool, error) {
	info, ok := r.TermInfo(term)
	if !ok {
		return nil, false, nil
	}
	ps, err := r.OpenPostings(term.Field(), info)
	if err != nil {
		return nil, false, err
	}
	return ps, true, nil
}

// Norms returns the field norm reader for a field.
func (r *Reader) Norms(field model.Field) (*fieldnorm.Reader, error) {
	if int(field) >= len(r.norms) || r.norms[field] == nil {
		return nil, fmt.Errorf("%w: field %d", ErrUnknownField, field)
	}
	return r.norms[field], nil
}

// AvgFieldLen returns the average token count per document for a field.
func (r *Reader) AvgFieldLen(field model.Field) float64 {
	return r.meta.AvgFieldLen(field)
}

// Doc returns the stored document with the given id.
func (r *Reader) Doc(doc model.DocID) (model.Document, error) {
	return r.store.Doc(doc)
}

// HasDeletes reports whether the segment carries tombstones.
func (r *Reader) HasDeletes() bool {
	return r.deletes != nil && !r.deletes.IsEmpty()
}

// IsDeleted reports whether doc is tombstoned.
func (r *Reader) IsDeleted(doc model.DocID) bool {
	return r.deletes != nil && r.deletes.Contains(uint32(doc))
}

// Close releases the byte sources backing postings, norms and store.
func (r *Reader) Close() error {
	var firstErr error
	for _, src := range r.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.sources = nil
	return firstErr
}
