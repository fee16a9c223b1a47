package tantivy

import (
	"context"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/drusellers/tantivy/directory"
	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/schema"
	"github.com/drusellers/tantivy/segment"
)

// IndexWriter accumulates documents and delete terms in memory.
// Nothing becomes durable or searchable until Commit, which seals the
// buffered documents into one new segment, applies pending deletes as
// tombstones, and atomically publishes the new metadata.
type IndexWriter struct {
	ix *Index

	mu      sync.Mutex
	seg     *segment.Writer
	segID   model.SegmentID
	deletes []model.Term
}

// AddDocument buffers a document for the next commit. Field validation
// happens immediately, so a bad document fails here and not at Commit.
func (w *IndexWriter) AddDocument(doc model.Document) error {
	start := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.seg == nil {
		w.ix.mu.Lock()
		w.segID = model.SegmentID(w.ix.meta.NextSegment)
		w.ix.mu.Unlock()
		w.seg = segment.NewWriter(w.ix.dir, w.ix.sch, w.segID, w.ix.codec)
	}
	_, err := w.seg.AddDocument(doc)
	w.ix.metrics.RecordAddDocument(time.Since(start), err)
	return err
}

// NumBufferedDocs returns how many documents wait for the next commit.
func (w *IndexWriter) NumBufferedDocs() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seg == nil {
		return 0
	}
	return w.seg.NumDocs()
}

// DeleteDocuments marks every document containing term as deleted.
// The tombstones are written at the next Commit and cover both already
// committed segments and the documents buffered in this writer.
func (w *IndexWriter) DeleteDocuments(term model.Term) error {
	if _, err := w.ix.sch.Entry(term.Field()); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deletes = append(w.deletes, term)
	return nil
}

// Commit seals the buffered documents into a new segment, applies
// pending deletes, and atomically rewrites the index metadata. A
// commit with nothing buffered and no pending deletes is a no-op.
//
// A failed commit leaves the index at its previous published state.
// The buffered document batch is discarded; pending deletes stay
// pending and are retried by the next commit.
func (w *IndexWriter) Commit(ctx context.Context) error {
	start := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ix.mu.Lock()
	defer w.ix.mu.Unlock()

	if w.seg == nil && len(w.deletes) == 0 {
		return nil
	}

	next := w.ix.meta.NextSegment
	segments := append([]segment.Meta(nil), w.ix.meta.Segments...)

	var numDocs uint32
	var sealed bool
	if w.seg != nil {
		numDocs = w.seg.NumDocs()
		segMeta, err := w.seg.Finish()
		w.seg = nil
		if err != nil {
			w.ix.metrics.RecordCommit(numDocs, time.Since(start), err)
			w.ix.logger.LogCommit(ctx, w.segID, numDocs, err)
			return err
		}
		segments = append(segments, segMeta)
		next = uint64(w.segID) + 1
		sealed = true
	}

	if len(w.deletes) > 0 {
		matched, err := applyDeletes(w.ix.dir, w.ix.sch, segments, w.deletes)
		w.ix.logger.LogDelete(ctx, len(w.deletes), matched, err)
		if err != nil {
			w.ix.metrics.RecordCommit(numDocs, time.Since(start), err)
			return err
		}
	}

	newMeta := &IndexMeta{
		Version:     metaVersion,
		Schema:      w.ix.sch,
		Segments:    segments,
		NextSegment: next,
	}
	if err := saveMeta(w.ix.dir, newMeta); err != nil {
		w.ix.metrics.RecordCommit(numDocs, time.Since(start), err)
		if sealed {
			w.ix.logger.LogCommit(ctx, w.segID, numDocs, err)
		}
		return err
	}
	w.ix.meta = newMeta
	w.deletes = nil

	if sealed {
		w.ix.logger.LogCommit(ctx, w.segID, numDocs, nil)
	}
	w.ix.metrics.RecordCommit(numDocs, time.Since(start), nil)
	return nil
}

// Rollback drops the buffered documents and pending deletes without
// touching the index.
func (w *IndexWriter) Rollback() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seg = nil
	w.deletes = nil
}

// applyDeletes resolves the delete terms against every segment and
// rewrites the tombstone files that gained entries. It returns the
// number of newly tombstoned documents.
func applyDeletes(dir directory.Directory, sch *schema.Schema, segments []segment.Meta, terms []model.Term) (uint64, error) {
	var matched uint64
	for i := range segments {
		var bm *roaring.Bitmap
		if segments[i].NumDeleted > 0 {
			existing, err := segment.ReadDeletes(dir, segments[i].ID)
			if err != nil {
				return matched, err
			}
			bm = existing
		} else {
			bm = roaring.New()
		}
		before := bm.GetCardinality()

		r, err := segment.OpenReader(dir, sch, segments[i])
		if err != nil {
			return matched, err
		}
		for _, t := range terms {
			ps, ok, err := r.Postings(t)
			if err != nil {
				_ = r.Close()
				return matched, err
			}
			if !ok {
				continue
			}
			for ps.Advance() {
				if bm.CheckedAdd(uint32(ps.Doc())) {
					matched++
				}
			}
			if err := ps.Err(); err != nil {
				_ = r.Close()
				return matched, err
			}
		}
		if err := r.Close(); err != nil {
			return matched, err
		}

		if bm.GetCardinality() > before {
			if err := segment.WriteDeletes(dir, segments[i].ID, bm); err != nil {
				return matched, err
			}
			segments[i].NumDeleted = uint32(bm.GetCardinality())
		}
	}
	return matched, nil
}
