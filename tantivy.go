package tantivy

import (
	"context"
	"sync"

	"github.com/drusellers/tantivy/directory"
	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/query"
	"github.com/drusellers/tantivy/schema"
	"github.com/drusellers/tantivy/segment"
)

// Query is re-exported from the query package so simple callers only
// import the root package.
type Query = query.Query

// NewTermQuery builds a query matching documents that contain term.
func NewTermQuery(term model.Term) *query.TermQuery {
	return query.NewTermQuery(term)
}

// NewPhraseQuery builds a query matching documents that contain the
// terms at consecutive positions. The field must be indexed with
// positions.
func NewPhraseQuery(terms []model.Term) *query.PhraseQuery {
	return query.NewPhraseQuery(terms)
}

// Index ties a schema to a directory of immutable segments. Writes go
// through Writer and become visible at Commit; reads go through
// Searcher snapshots.
type Index struct {
	dir     directory.Directory
	sch     *schema.Schema
	codec   segment.Codec
	logger  *Logger
	metrics MetricsCollector

	mu     sync.Mutex
	meta   *IndexMeta
	writer *IndexWriter

	ownsDir bool
}

// Create initializes a new empty index in dir. It fails with
// ErrIndexExists when dir already holds one.
func Create(dir directory.Directory, sch *schema.Schema, optFns ...Option) (*Index, error) {
	exists, err := dir.Exists(metaFileName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrIndexExists
	}
	opts := applyOptions(optFns)
	meta := &IndexMeta{Version: metaVersion, Schema: sch, NextSegment: 1}
	if err := saveMeta(dir, meta); err != nil {
		return nil, err
	}
	return &Index{
		dir:     dir,
		sch:     sch,
		codec:   opts.codec,
		logger:  opts.logger,
		metrics: opts.metrics,
		meta:    meta,
	}, nil
}

// Open opens an existing index in dir. It fails with
// ErrIndexDoesNotExist when dir holds no index metadata.
func Open(dir directory.Directory, optFns ...Option) (*Index, error) {
	meta, err := loadMeta(dir)
	if err != nil {
		return nil, err
	}
	opts := applyOptions(optFns)
	ix := &Index{
		dir:     dir,
		sch:     meta.Schema,
		codec:   opts.codec,
		logger:  opts.logger,
		metrics: opts.metrics,
		meta:    meta,
	}
	ix.logger.LogOpen(context.Background(), len(meta.Segments), ix.aliveDocs(meta))
	return ix, nil
}

// CreateInDir creates an index backed by a local mmap directory at
// path. The index owns the directory and closes it on Close.
func CreateInDir(path string, sch *schema.Schema, optFns ...Option) (*Index, error) {
	dir, err := directory.OpenMmapDirectory(path)
	if err != nil {
		return nil, err
	}
	ix, err := Create(dir, sch, optFns...)
	if err != nil {
		_ = dir.Close()
		return nil, err
	}
	ix.ownsDir = true
	return ix, nil
}

// OpenInDir opens an index backed by a local mmap directory at path.
// The index owns the directory and closes it on Close.
func OpenInDir(path string, optFns ...Option) (*Index, error) {
	dir, err := directory.OpenMmapDirectory(path)
	if err != nil {
		return nil, err
	}
	ix, err := Open(dir, optFns...)
	if err != nil {
		_ = dir.Close()
		return nil, err
	}
	ix.ownsDir = true
	return ix, nil
}

// Schema returns the schema the index was created with.
func (ix *Index) Schema() *schema.Schema {
	return ix.sch
}

// Meta returns a copy of the current index metadata.
func (ix *Index) Meta() IndexMeta {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	m := *ix.meta
	m.Segments = append([]segment.Meta(nil), ix.meta.Segments...)
	return m
}

// Writer returns the index's writer. The writer is shared: every call
// returns the same instance, and its methods serialize internally.
func (ix *Index) Writer() *IndexWriter {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.writer == nil {
		ix.writer = &IndexWriter{ix: ix}
	}
	return ix.writer
}

// Searcher opens a point-in-time snapshot over the currently committed
// segments. The caller owns the returned searcher and must Close it.
func (ix *Index) Searcher() (*Searcher, error) {
	ix.mu.Lock()
	metas := append([]segment.Meta(nil), ix.meta.Segments...)
	ix.mu.Unlock()

	s := &Searcher{sch: ix.sch, logger: ix.logger, metrics: ix.metrics}
	for _, m := range metas {
		r, err := segment.OpenReader(ix.dir, ix.sch, m)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.readers = append(s.readers, r)
	}
	return s, nil
}

// Close releases the directory when the index owns it. Open searchers
// stay usable until they are closed themselves.
func (ix *Index) Close() error {
	if ix == nil {
		return nil
	}
	if ix.ownsDir {
		return ix.dir.Close()
	}
	return nil
}

func (ix *Index) aliveDocs(meta *IndexMeta) uint64 {
	var n uint64
	for _, m := range meta.Segments {
		n += uint64(m.AliveDocs())
	}
	return n
}
