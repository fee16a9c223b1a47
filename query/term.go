package query

import (
	"github.com/drusellers/tantivy/fieldnorm"
	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/postings"
)

// TermScorer walks the posting list of a single term and scores each
// document with BM25.
type TermScorer struct {
	postings *postings.SegmentPostings
	norms    *fieldnorm.Reader
	bm25     *Bm25Weight
}

// NewTermScorer wraps an unstarted posting cursor with scoring state.
func NewTermScorer(ps *postings.SegmentPostings, norms *fieldnorm.Reader, bm25 *Bm25Weight) *TermScorer {
	return &TermScorer{postings: ps, norms: norms, bm25: bm25}
}

func (s *TermScorer) Advance() bool {
	return s.postings.Advance()
}

func (s *TermScorer) SkipTo(target model.DocID) bool {
	return s.postings.SkipTo(target)
}

func (s *TermScorer) Doc() model.DocID {
	return s.postings.Doc()
}

// Score returns the BM25 score of the current document. The scorer
// must be positioned on a document.
func (s *TermScorer) Score() model.Score {
	return s.bm25.Score(s.norms.NormID(s.postings.Doc()), s.postings.TermFreq())
}

// TermFreq returns the term's frequency within the current document.
func (s *TermScorer) TermFreq() uint32 {
	return s.postings.TermFreq()
}

// Err surfaces posting stream corruption detected during iteration.
func (s *TermScorer) Err() error {
	return s.postings.Err()
}
