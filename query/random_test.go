package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/schema"
	"github.com/drusellers/tantivy/testutil"
)

// TestPhraseMatchesBruteForce cross-checks the leapfrog join and the
// positional verification against a naive scan over a generated corpus.
func TestPhraseMatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(1)
	vocab := testutil.Vocabulary(12)
	docs := rng.Corpus(300, 2, 14, vocab)

	r, field := buildSegment(t, docs, schema.IndexedWithFreqsAndPositions)

	for trial := 0; trial < 50; trial++ {
		phraseLen := 2 + rng.Intn(2)
		phrase := make([]string, phraseLen)
		for i := range phrase {
			phrase[i] = vocab[rng.Intn(len(vocab))]
		}

		got := collectDocs(t, scorerFor(t, phraseOf(field, phrase...), r))

		var want []model.DocID
		for _, id := range testutil.BruteForcePhrase(docs, phrase) {
			want = append(want, model.DocID(id))
		}
		assert.Equal(t, want, got, "phrase %v", phrase)
	}
}

// TestTermMatchesBruteForce does the same for single terms: the matched
// set must be exactly the documents containing the token.
func TestTermMatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(2)
	vocab := testutil.Vocabulary(12)
	docs := rng.Corpus(200, 2, 14, vocab)

	r, field := buildSegment(t, docs, schema.IndexedWithFreqs)

	for _, token := range vocab {
		got := collectDocs(t, scorerFor(t, NewTermQuery(model.NewTextTerm(field, token)), r))

		var want []model.DocID
		for id, doc := range docs {
			for _, tok := range strings.Fields(doc) {
				if tok == token {
					want = append(want, model.DocID(id))
					break
				}
			}
		}
		assert.Equal(t, want, got, "token %q", token)
	}
}
