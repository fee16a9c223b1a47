package query

import (
	"github.com/drusellers/tantivy/fieldnorm"
	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/postings"
)

// PhraseTermCursor pairs one phrase term's posting cursor with the
// term's offset inside the phrase.
type PhraseTermCursor struct {
	Postings *postings.SegmentPostings
	Offset   uint32
}

// PhraseScorer matches documents containing all phrase terms at their
// relative offsets. Cursors are aligned on a common document with a
// leapfrog join, then token positions are verified so only true phrase
// occurrences count. The phrase frequency of the current document
// feeds BM25 the way a term frequency would.
type PhraseScorer struct {
	cursors []PhraseTermCursor
	norms   *fieldnorm.Reader
	bm25    *Bm25Weight

	// per-candidate scratch, reused across documents
	lists [][]uint32
	ptrs  []int

	doc        model.DocID
	phraseFreq uint32
	started    bool
}

// NewPhraseScorer builds a scorer over one unstarted cursor per phrase
// term. Callers order cursors by ascending document frequency so the
// rarest term leads the join.
func NewPhraseScorer(cursors []PhraseTermCursor, norms *fieldnorm.Reader, bm25 *Bm25Weight) *PhraseScorer {
	return &PhraseScorer{
		cursors: cursors,
		norms:   norms,
		bm25:    bm25,
		lists:   make([][]uint32, len(cursors)),
		ptrs:    make([]int, len(cursors)),
	}
}

func (s *PhraseScorer) Advance() bool {
	if s.doc == model.TerminatedDocID {
		return false
	}
	if !s.started {
		s.started = true
		for i := range s.cursors {
			if !s.cursors[i].Postings.Advance() {
				s.doc = model.TerminatedDocID
				return false
			}
		}
		return s.align()
	}
	if !s.cursors[0].Postings.Advance() {
		s.doc = model.TerminatedDocID
		return false
	}
	return s.align()
}

func (s *PhraseScorer) SkipTo(target model.DocID) bool {
	if s.doc == model.TerminatedDocID {
		return false
	}
	if !s.started {
		if !s.Advance() {
			return false
		}
	}
	if s.doc >= target {
		return true
	}
	if !s.cursors[0].Postings.SkipTo(target) {
		s.doc = model.TerminatedDocID
		return false
	}
	return s.align()
}

func (s *PhraseScorer) Doc() model.DocID {
	return s.doc
}

// Score returns the BM25 score of the current document, computed from
// its phrase frequency.
func (s *PhraseScorer) Score() model.Score {
	return s.bm25.Score(s.norms.NormID(s.doc), s.phraseFreq)
}

// PhraseFreq returns how often the phrase occurs in the current
// document.
func (s *PhraseScorer) PhraseFreq() uint32 {
	return s.phraseFreq
}

// Err surfaces posting stream corruption from any of the term cursors.
func (s *PhraseScorer) Err() error {
	for i := range s.cursors {
		if err := s.cursors[i].Postings.Err(); err != nil {
			return err
		}
	}
	return nil
}

// align drives the leapfrog join: starting from the cursors' current
// documents, it repeatedly skips every cursor to the largest current
// document until all sit on the same one, verifies positions there,
// and either settles on that document or moves the lead cursor past
// it and tries again. Returns false when any cursor exhausts.
func (s *PhraseScorer) align() bool {
	for {
		target := model.DocID(0)
		for i := range s.cursors {
			d := s.cursors[i].Postings.Doc()
			if d == model.TerminatedDocID {
				s.doc = model.TerminatedDocID
				return false
			}
			if d > target {
				target = d
			}
		}

		aligned := true
		for i := range s.cursors {
			c := s.cursors[i].Postings
			if c.Doc() >= target {
				continue
			}
			if !c.SkipTo(target) {
				s.doc = model.TerminatedDocID
				return false
			}
			if c.Doc() != target {
				// overshot, restart with the new maximum
				aligned = false
			}
		}
		if !aligned {
			continue
		}

		if pf := s.phraseFreqAt(); pf > 0 {
			s.doc = target
			s.phraseFreq = pf
			return true
		}
		if !s.cursors[0].Postings.Advance() {
			s.doc = model.TerminatedDocID
			return false
		}
	}
}

// phraseFreqAt counts phrase occurrences in the document all cursors
// are aligned on. The term with the fewest positions drives: each of
// its positions implies one candidate phrase start, which the other
// terms confirm or reject. Probe pointers only move forward, keeping
// the whole check linear in the total number of positions.
func (s *PhraseScorer) phraseFreqAt() uint32 {
	driver := 0
	for i := range s.cursors {
		s.lists[i] = s.cursors[i].Postings.Positions()
		if len(s.lists[i]) == 0 {
			return 0
		}
		if len(s.lists[i]) < len(s.lists[driver]) {
			driver = i
		}
		s.ptrs[i] = 0
	}

	driverOffset := s.cursors[driver].Offset
	var freq uint32
	for _, pos := range s.lists[driver] {
		if pos < driverOffset {
			// phrase would start before the document
			continue
		}
		start := pos - driverOffset

		match := true
		for i := range s.cursors {
			if i == driver {
				continue
			}
			want := start + s.cursors[i].Offset
			list := s.lists[i]
			j := s.ptrs[i]
			for j < len(list) && list[j] < want {
				j++
			}
			s.ptrs[i] = j
			if j == len(list) {
				// no positions left in this list, later starts
				// cannot match either
				return freq
			}
			if list[j] != want {
				match = false
				break
			}
		}
		if match {
			freq++
		}
	}
	return freq
}
