package query

import "github.com/drusellers/tantivy/model"

// EmptyScorer matches no documents. Weights return it when a query
// term is absent from a segment, so callers never special-case missing
// terms.
type EmptyScorer struct{}

func (EmptyScorer) Advance() bool           { return false }
func (EmptyScorer) SkipTo(model.DocID) bool { return false }
func (EmptyScorer) Doc() model.DocID        { return model.TerminatedDocID }
func (EmptyScorer) Score() model.Score      { return 0 }
