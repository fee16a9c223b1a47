package postings

// TermInfo locates one term's posting list inside a segment's postings
// file and carries the statistics needed before opening the list.
type TermInfo struct {
	// DocFreq is the number of documents containing the term. It is
	// always at least 1: a term with no documents has no dictionary
	// entry at all.
	DocFreq uint32 `json:"doc_freq"`
	// Offset is the byte position of the list within the postings file
	// payload, counted from the first byte after the file header.
	Offset uint64 `json:"offset"`
	// Length is the byte length of the list.
	Length uint32 `json:"length"`
}
