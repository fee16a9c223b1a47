package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/schema"
)

func TestTermScorerIterates(t *testing.T) {
	r, field := buildSegment(t, testCorpus, schema.IndexedWithFreqsAndPositions)

	q := NewTermQuery(model.NewTextTerm(field, "a"))
	s := scorerFor(t, q, r)

	wantDocs := []model.DocID{1, 2, 3, 4}
	wantTfs := []uint32{1, 2, 3, 1}
	for i, want := range wantDocs {
		require.True(t, s.Advance())
		assert.Equal(t, want, s.Doc())
		assert.Equal(t, wantTfs[i], s.(*TermScorer).TermFreq())
		assert.Greater(t, s.Score(), model.Score(0))
	}
	assert.False(t, s.Advance())
	assert.Equal(t, model.TerminatedDocID, s.Doc())
}

func TestTermScorerAbsentTermIsEmpty(t *testing.T) {
	r, field := buildSegment(t, testCorpus, schema.IndexedWithFreqsAndPositions)

	q := NewTermQuery(model.NewTextTerm(field, "zebra"))
	s := scorerFor(t, q, r)
	assert.IsType(t, EmptyScorer{}, s)
	assert.Empty(t, collectDocs(t, s))
}

func TestTermScorerSkipTo(t *testing.T) {
	r, field := buildSegment(t, testCorpus, schema.IndexedWithFreqsAndPositions)
	term := model.NewTextTerm(field, "a") // docs 1, 2, 3, 4

	t.Run("unstarted scorer lands on first match", func(t *testing.T) {
		s := scorerFor(t, NewTermQuery(term), r)
		require.True(t, s.SkipTo(0))
		assert.Equal(t, model.DocID(1), s.Doc())
	})

	t.Run("skips to present doc", func(t *testing.T) {
		s := scorerFor(t, NewTermQuery(term), r)
		require.True(t, s.SkipTo(3))
		assert.Equal(t, model.DocID(3), s.Doc())
	})

	t.Run("skipping backward does not move", func(t *testing.T) {
		s := scorerFor(t, NewTermQuery(term), r)
		require.True(t, s.SkipTo(3))
		require.True(t, s.SkipTo(1))
		assert.Equal(t, model.DocID(3), s.Doc())
	})

	t.Run("past the last doc exhausts", func(t *testing.T) {
		s := scorerFor(t, NewTermQuery(term), r)
		assert.False(t, s.SkipTo(5))
		assert.Equal(t, model.TerminatedDocID, s.Doc())
		assert.False(t, s.Advance())
	})
}

func TestTermScorerRanking(t *testing.T) {
	r, field := buildSegment(t, testCorpus, schema.IndexedWithFreqsAndPositions)

	q := NewTermQuery(model.NewTextTerm(field, "a"))
	s := scorerFor(t, q, r)

	scores := make(map[model.DocID]model.Score)
	for s.Advance() {
		scores[s.Doc()] = s.Score()
	}
	require.Len(t, scores, 4)

	// doc 3 has "a" three times, doc 2 twice, docs 1 and 4 once; among
	// the single-occurrence docs the shorter doc 4 ranks higher.
	assert.Greater(t, scores[3], scores[2])
	assert.Greater(t, scores[2], scores[4])
	assert.Greater(t, scores[4], scores[1])
}

func TestTermScorerWithoutPositionsStillScores(t *testing.T) {
	r, field := buildSegment(t, testCorpus, schema.IndexedWithFreqs)

	q := NewTermQuery(model.NewTextTerm(field, "g"))
	docs := collectDocs(t, scorerFor(t, q, r))
	assert.Equal(t, []model.DocID{0, 1}, docs)
}
