package segment

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/drusellers/tantivy/internal/blockcomp"
	"github.com/drusellers/tantivy/model"
)

// The store file keeps the original documents, block compressed. Blocks
// are self contained: a record never straddles two blocks, so reading a
// document decodes exactly one block. The block index at the tail maps
// the first doc id of each block to its byte offset.

type storeBlockEntry struct {
	firstDoc model.DocID
	offset   int64
}

type storeWriter struct {
	codec   blockcomp.Codec
	raw     bytes.Buffer
	bw      *blockcomp.Writer
	index   []storeBlockEntry
	nextDoc model.DocID
	scratch []byte
}

func newStoreWriter(codec blockcomp.Codec) *storeWriter {
	w := &storeWriter{codec: codec}
	w.bw = blockcomp.NewWriter(&w.raw, codec, blockcomp.DefaultBlockSize)
	return w
}

func (w *storeWriter) addDocument(doc model.Document) error {
	if w.bw.Buffered() == 0 {
		w.index = append(w.index, storeBlockEntry{
			firstDoc: w.nextDoc,
			offset:   w.bw.BytesWritten(),
		})
	}

	w.scratch = encodeStoredDoc(w.scratch[:0], doc)
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(w.scratch)))
	if _, err := w.bw.Write(lenBuf[:n]); err != nil {
		return err
	}
	if _, err := w.bw.Write(w.scratch); err != nil {
		return err
	}
	w.nextDoc++

	if w.bw.Full() {
		return w.bw.FlushBlock()
	}
	return nil
}

// finish flushes the last block and assembles the complete store file.
func (w *storeWriter) finish() ([]byte, error) {
	if err := w.bw.FlushBlock(); err != nil {
		return nil, err
	}

	buf := appendHeader(nil, magicStore)
	buf = append(buf, byte(w.codec))
	buf = append(buf, w.raw.Bytes()...)

	indexOffset := uint64(w.raw.Len())
	buf = binary.AppendUvarint(buf, uint64(len(w.index)))
	prevDoc, prevOff := model.DocID(0), int64(0)
	for _, e := range w.index {
		buf = binary.AppendUvarint(buf, uint64(e.firstDoc-prevDoc))
		buf = binary.AppendUvarint(buf, uint64(e.offset-prevOff))
		prevDoc, prevOff = e.firstDoc, e.offset
	}
	buf = binary.LittleEndian.AppendUint64(buf, indexOffset)
	return appendFooter(buf), nil
}

func encodeStoredDoc(buf []byte, doc model.Document) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(doc.Values)))
	for _, fv := range doc.Values {
		buf = binary.AppendUvarint(buf, uint64(fv.Field))
		buf = binary.AppendUvarint(buf, uint64(len(fv.Text)))
		buf = append(buf, fv.Text...)
	}
	return buf
}

func decodeStoredDoc(data []byte) (model.Document, error) {
	r := &uvarintReader{data: data}
	numValues := r.uvarint()
	var doc model.Document
	for i := uint64(0); i < numValues; i++ {
		field := r.uvarint()
		textLen := r.uvarint()
		text := r.bytes(int(textLen))
		if r.err != nil {
			return model.Document{}, r.err
		}
		doc.AddText(model.Field(field), string(text))
	}
	if r.err != nil {
		return model.Document{}, r.err
	}
	return doc, nil
}

// StoreReader decodes stored documents out of a segment's store file.
// Safe for concurrent use; the last decompressed block is cached since
// result pages tend to hit neighboring doc ids.
type StoreReader struct {
	codec  blockcomp.Codec
	blocks []byte
	index  []storeBlockEntry
	maxDoc uint32

	mu        sync.Mutex
	cachedIdx int
	cached    []byte
}

func newStoreReader(data []byte, maxDoc uint32) (*StoreReader, error) {
	payload, err := checkFile(data, magicStore)
	if err != nil {
		return nil, err
	}
	if len(payload) < 1+8 {
		return nil, ErrTruncated
	}
	codec, err := blockcomp.CodecFromByte(payload[0])
	if err != nil {
		return nil, err
	}
	body := payload[1 : len(payload)-8]
	indexOffset := binary.LittleEndian.Uint64(payload[len(payload)-8:])
	if indexOffset > uint64(len(body)) {
		return nil, ErrTruncated
	}

	r := &uvarintReader{data: body[indexOffset:]}
	numBlocks := r.uvarint()
	index := make([]storeBlockEntry, 0, numBlocks)
	doc, off := model.DocID(0), int64(0)
	for i := uint64(0); i < numBlocks; i++ {
		doc += model.DocID(r.uvarint())
		off += int64(r.uvarint())
		index = append(index, storeBlockEntry{firstDoc: doc, offset: off})
	}
	if r.err != nil {
		return nil, r.err
	}

	return &StoreReader{
		codec:     codec,
		blocks:    body[:indexOffset],
		index:     index,
		maxDoc:    maxDoc,
		cachedIdx: -1,
	}, nil
}

// Doc returns the stored document with the given id.
func (r *StoreReader) Doc(doc model.DocID) (model.Document, error) {
	if uint32(doc) >= r.maxDoc {
		return model.Document{}, fmt.Errorf("%w: %d (max %d)", ErrDocOutOfRange, doc, r.maxDoc)
	}
	blockIdx := sort.Search(len(r.index), func(i int) bool {
		return r.index[i].firstDoc > doc
	}) - 1
	if blockIdx < 0 {
		return model.Document{}, ErrTruncated
	}

	block, err := r.block(blockIdx)
	if err != nil {
		return model.Document{}, err
	}

	// Walk the length prefixed records from the block's first doc.
	rd := &uvarintReader{data: block}
	for d := r.index[blockIdx].firstDoc; ; d++ {
		recLen := rd.uvarint()
		rec := rd.bytes(int(recLen))
		if rd.err != nil {
			return model.Document{}, rd.err
		}
		if d == doc {
			return decodeStoredDoc(rec)
		}
	}
}

func (r *StoreReader) block(idx int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx == r.cachedIdx {
		return r.cached, nil
	}

	start := r.index[idx].offset
	end := int64(len(r.blocks))
	if idx+1 < len(r.index) {
		end = r.index[idx+1].offset
	}
	if start > end || end > int64(len(r.blocks)) {
		return nil, ErrTruncated
	}

	block, _, err := blockcomp.DecompressBlock(r.blocks[start:end], r.codec)
	if err != nil {
		return nil, err
	}
	r.cachedIdx, r.cached = idx, block
	return block, nil
}
