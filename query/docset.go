package query

import "github.com/drusellers/tantivy/model"

// DocSet is a cursor over a sorted set of document ids within one
// segment. A fresh DocSet is positioned before the first document;
// Doc is only meaningful after an Advance or SkipTo returned true.
// Once either returns false the set is exhausted: Doc reports
// model.TerminatedDocID and every further call returns false.
type DocSet interface {
	// Advance moves to the next document and reports whether one exists.
	Advance() bool

	// SkipTo moves forward to the first document >= target. A cursor
	// already at or past target stays put and returns true. SkipTo
	// never moves backward.
	SkipTo(target model.DocID) bool

	// Doc returns the current document id.
	Doc() model.DocID
}

// Scorer is a DocSet that can score the document it is positioned on.
type Scorer interface {
	DocSet

	// Score returns the relevance score of the current document.
	Score() model.Score
}
