package query

import (
	"fmt"
	"sort"

	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/postings"
	"github.com/drusellers/tantivy/schema"
	"github.com/drusellers/tantivy/segment"
)

// Query describes a search the index can execute. Queries are immutable
// and reusable across searches.
type Query interface {
	// Weight binds the query to a schema, validating it against the
	// index capabilities before any segment is touched.
	Weight(sch *schema.Schema) (Weight, error)
}

// Weight is a query bound to an index, ready to produce one Scorer per
// segment. Scoring statistics are taken from each segment as scorers
// are built, so segments score independently.
type Weight interface {
	Scorer(r *segment.Reader) (Scorer, error)
}

// TermQuery matches the documents containing an exact term.
type TermQuery struct {
	term model.Term
}

// NewTermQuery builds a query for a single term.
func NewTermQuery(term model.Term) *TermQuery {
	return &TermQuery{term: term}
}

// Term returns the queried term.
func (q *TermQuery) Term() model.Term {
	return q.term
}

func (q *TermQuery) Weight(sch *schema.Schema) (Weight, error) {
	if _, err := sch.Entry(q.term.Field()); err != nil {
		return nil, err
	}
	return &termWeight{term: q.term}, nil
}

type termWeight struct {
	term model.Term
}

func (w *termWeight) Scorer(r *segment.Reader) (Scorer, error) {
	info, ok := r.TermInfo(w.term)
	if !ok {
		return EmptyScorer{}, nil
	}
	ps, err := r.OpenPostings(w.term.Field(), info)
	if err != nil {
		return nil, err
	}
	norms, err := r.Norms(w.term.Field())
	if err != nil {
		return nil, err
	}
	bm25 := NewBm25Weight([]uint64{uint64(info.DocFreq)}, uint64(r.MaxDoc()), r.AvgFieldLen(w.term.Field()))
	return NewTermScorer(ps, norms, bm25), nil
}

// PhraseQuery matches documents containing its terms at consecutive
// positions, or at explicit relative offsets when built with
// NewPhraseQueryWithOffsets.
type PhraseQuery struct {
	terms   []model.Term
	offsets []uint32
}

// NewPhraseQuery builds a phrase from terms at consecutive offsets
// 0, 1, 2, ...
func NewPhraseQuery(terms []model.Term) *PhraseQuery {
	offsets := make([]uint32, len(terms))
	for i := range offsets {
		offsets[i] = uint32(i)
	}
	return NewPhraseQueryWithOffsets(terms, offsets)
}

// NewPhraseQueryWithOffsets builds a phrase from terms at explicit
// offsets, which allows gaps ("a _ c" as offsets 0 and 2). Terms are
// kept sorted by offset. Validation happens in Weight.
func NewPhraseQueryWithOffsets(terms []model.Term, offsets []uint32) *PhraseQuery {
	q := &PhraseQuery{
		terms:   append([]model.Term(nil), terms...),
		offsets: append([]uint32(nil), offsets...),
	}
	if len(q.terms) != len(q.offsets) {
		return q // Weight reports the mismatch
	}
	order := make([]int, len(q.terms))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return q.offsets[order[a]] < q.offsets[order[b]] })
	sorted := &PhraseQuery{
		terms:   make([]model.Term, len(q.terms)),
		offsets: make([]uint32, len(q.offsets)),
	}
	for i, idx := range order {
		sorted.terms[i] = q.terms[idx]
		sorted.offsets[i] = q.offsets[idx]
	}
	return sorted
}

// Terms returns the phrase terms in offset order.
func (q *PhraseQuery) Terms() []model.Term {
	return q.terms
}

func (q *PhraseQuery) Weight(sch *schema.Schema) (Weight, error) {
	if len(q.terms) != len(q.offsets) {
		return nil, fmt.Errorf("query: phrase has %d terms but %d offsets", len(q.terms), len(q.offsets))
	}
	if len(q.terms) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrPhraseTooShort, len(q.terms))
	}
	field := q.terms[0].Field()
	for _, t := range q.terms[1:] {
		if t.Field() != field {
			return nil, fmt.Errorf("%w: field %d and field %d", ErrMixedFields, field, t.Field())
		}
	}
	entry, err := sch.Entry(field)
	if err != nil {
		return nil, err
	}
	if !entry.Indexing.HasPositions() {
		return nil, &CapabilityError{Field: field, FieldName: entry.Name}
	}
	return &phraseWeight{field: field, terms: q.terms, offsets: q.offsets}, nil
}

type phraseWeight struct {
	field   model.Field
	terms   []model.Term
	offsets []uint32
}

func (w *phraseWeight) Scorer(r *segment.Reader) (Scorer, error) {
	infos := make([]postings.TermInfo, len(w.terms))
	for i, t := range w.terms {
		info, ok := r.TermInfo(t)
		if !ok {
			return EmptyScorer{}, nil
		}
		infos[i] = info
	}

	// Rarest term first: the join advances its lead cursor on every
	// rejected candidate, so the lead should rule out the most.
	order := make([]int, len(w.terms))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return infos[order[a]].DocFreq < infos[order[b]].DocFreq
	})

	cursors := make([]PhraseTermCursor, 0, len(w.terms))
	for _, i := range order {
		ps, err := r.OpenPostings(w.field, infos[i])
		if err != nil {
			return nil, err
		}
		cursors = append(cursors, PhraseTermCursor{Postings: ps, Offset: w.offsets[i]})
	}

	norms, err := r.Norms(w.field)
	if err != nil {
		return nil, err
	}
	dfs := make([]uint64, len(infos))
	for i, info := range infos {
		dfs[i] = uint64(info.DocFreq)
	}
	bm25 := NewBm25Weight(dfs, uint64(r.MaxDoc()), r.AvgFieldLen(w.field))
	return NewPhraseScorer(cursors, norms, bm25), nil
}
