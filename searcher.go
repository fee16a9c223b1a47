package tantivy

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/drusellers/tantivy/collector"
	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/query"
	"github.com/drusellers/tantivy/schema"
	"github.com/drusellers/tantivy/segment"
)

// Searcher is a point-in-time view over the segments that were
// committed when it was opened. Later commits are invisible to it.
// A Searcher is safe for concurrent use until Close.
type Searcher struct {
	sch     *schema.Schema
	logger  *Logger
	metrics MetricsCollector
	readers []*segment.Reader
	closed  atomic.Bool
}

// Schema returns the schema the searcher operates under.
func (s *Searcher) Schema() *schema.Schema { return s.sch }

// NumSegments returns the number of segments in the snapshot.
func (s *Searcher) NumSegments() int { return len(s.readers) }

// Reader returns the segment reader at the given ordinal.
func (s *Searcher) Reader(ord int) *segment.Reader { return s.readers[ord] }

// NumDocs returns the number of live documents across the snapshot.
func (s *Searcher) NumDocs() uint64 {
	var n uint64
	for _, r := range s.readers {
		n += uint64(r.Meta().AliveDocs())
	}
	return n
}

// DocFreq returns how many documents contain term across the snapshot.
// Tombstoned documents still count until their segment is rewritten.
func (s *Searcher) DocFreq(term model.Term) uint64 {
	var n uint64
	for _, r := range s.readers {
		if info, ok := r.TermInfo(term); ok {
			n += uint64(info.DocFreq)
		}
	}
	return n
}

// Doc fetches the stored fields of one document, addressed by segment
// ordinal and doc id within that segment.
func (s *Searcher) Doc(ord int, doc model.DocID) (model.Document, error) {
	return s.readers[ord].Doc(doc)
}

// Search runs the query against every segment in ordinal order,
// streaming live matches into the collector.
func (s *Searcher) Search(ctx context.Context, q Query, c collector.Collector) error {
	start := time.Now()
	err := s.search(ctx, q, c)
	s.metrics.RecordSearch(time.Since(start), err)
	s.logger.LogSearch(ctx, len(s.readers), err)
	return err
}

func (s *Searcher) search(ctx context.Context, q Query, c collector.Collector) error {
	if s.closed.Load() {
		return ErrSearcherClosed
	}
	w, err := q.Weight(s.sch)
	if err != nil {
		return err
	}
	for ord, r := range s.readers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := collectSegment(ord, r, w, c); err != nil {
			return err
		}
	}
	return nil
}

// SearchParallel runs the query with one goroutine per segment. The
// factory builds an independent collector for each segment; the result
// slice is indexed by segment ordinal and matches what a sequential
// Search into the same collectors would produce.
func (s *Searcher) SearchParallel(ctx context.Context, q Query, factory func() collector.Collector) ([]collector.Collector, error) {
	start := time.Now()
	cols, err := s.searchParallel(ctx, q, factory)
	s.metrics.RecordSearch(time.Since(start), err)
	s.logger.LogSearch(ctx, len(s.readers), err)
	return cols, err
}

func (s *Searcher) searchParallel(ctx context.Context, q Query, factory func() collector.Collector) ([]collector.Collector, error) {
	if s.closed.Load() {
		return nil, ErrSearcherClosed
	}
	w, err := q.Weight(s.sch)
	if err != nil {
		return nil, err
	}
	cols := make([]collector.Collector, len(s.readers))
	g, ctx := errgroup.WithContext(ctx)
	for ord, r := range s.readers {
		ord, r := ord, r
		cols[ord] = factory()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return collectSegment(ord, r, w, cols[ord])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cols, nil
}

// collectSegment drains one segment's scorer into the collector,
// skipping tombstoned documents.
func collectSegment(ord int, r *segment.Reader, w query.Weight, c collector.Collector) error {
	if err := c.SetSegment(ord, r); err != nil {
		return err
	}
	scorer, err := w.Scorer(r)
	if err != nil {
		return err
	}
	hasDeletes := r.HasDeletes()
	for scorer.Advance() {
		if hasDeletes && r.IsDeleted(scorer.Doc()) {
			continue
		}
		c.Collect(scorer.Doc(), scorer.Score())
	}
	if e, ok := scorer.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

// Close releases the snapshot's segment readers. Close is idempotent;
// all other methods fail or misbehave after it.
func (s *Searcher) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var firstErr error
	for _, r := range s.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
