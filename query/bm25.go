package query

import (
	"math"

	"github.com/drusellers/tantivy/fieldnorm"
	"github.com/drusellers/tantivy/model"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// idf is the BM25 inverse document frequency of a term occurring in
// docFreq out of docCount documents. Log1p keeps it positive even for
// terms present in every document.
func idf(docFreq, docCount uint64) float64 {
	x := (float64(docCount) - float64(docFreq) + 0.5) / (float64(docFreq) + 0.5)
	return math.Log1p(x)
}

// Bm25Weight holds the per-segment BM25 state shared by the scorers of
// one query: the summed idf of the query terms folded with (k1+1), and
// the norm component precomputed for each of the 256 field norm ids.
type Bm25Weight struct {
	weight float32
	cache  [256]float32
}

// NewBm25Weight derives BM25 state for query terms with the given
// document frequencies, in a segment of docCount documents whose field
// averages avgFieldLen tokens per document.
func NewBm25Weight(docFreqs []uint64, docCount uint64, avgFieldLen float64) *Bm25Weight {
	var idfSum float64
	for _, df := range docFreqs {
		idfSum += idf(df, docCount)
	}
	w := &Bm25Weight{weight: float32(idfSum * (bm25K1 + 1.0))}
	for id := 0; id < 256; id++ {
		norm := float64(fieldnorm.DecodeFieldNorm(uint8(id)))
		w.cache[id] = float32(bm25K1 * (1.0 - bm25B + bm25B*norm/avgFieldLen))
	}
	return w
}

// Score computes the BM25 score of a document from its field norm id
// and the within-document term frequency.
func (w *Bm25Weight) Score(normID uint8, termFreq uint32) model.Score {
	tf := float32(termFreq)
	return model.Score(w.weight * tf / (tf + w.cache[normID]))
}
