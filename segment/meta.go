package segment

import (
	"fmt"

	"github.com/drusellers/tantivy/model"
)

// FieldStat carries per-field token accounting for one segment. The
// exact totals feed average field length, which the scoring formula
// needs to compare documents of different sizes fairly.
type FieldStat struct {
	Field       model.Field `json:"field"`
	TotalTokens uint64      `json:"total_tokens"`
}

// Meta describes one sealed segment. It lives in the index metadata
// file, not inside the segment files themselves.
type Meta struct {
	ID model.SegmentID `json:"segment_id"`
	// MaxDoc is the number of documents in the segment; doc ids run
	// from 0 to MaxDoc-1.
	MaxDoc     uint32      `json:"max_doc"`
	FieldStats []FieldStat `json:"field_stats,omitempty"`
	// NumDeleted is the tombstone count in the delete file. Zero means
	// there is no delete file.
	NumDeleted uint32 `json:"num_deleted,omitempty"`
}

// TotalTokens returns the token total recorded for a field.
func (m Meta) TotalTokens(field model.Field) uint64 {
	for _, fs := range m.FieldStats {
		if fs.Field == field {
			return fs.TotalTokens
		}
	}
	return 0
}

// AvgFieldLen returns the average token count of a field per document.
func (m Meta) AvgFieldLen(field model.Field) float64 {
	if m.MaxDoc == 0 {
		return 0
	}
	return float64(m.TotalTokens(field)) / float64(m.MaxDoc)
}

// AliveDocs returns how many documents are not tombstoned.
func (m Meta) AliveDocs() uint32 {
	return m.MaxDoc - m.NumDeleted
}

// File extensions of the segment files.
const (
	ExtTerms  = "term"
	ExtIdx    = "idx"
	ExtNorms  = "norm"
	ExtStore  = "store"
	ExtDelete = "del"
)

// FileName returns the name of one of the segment's files, e.g.
// "000000000000002a.idx".
func FileName(id model.SegmentID, ext string) string {
	return fmt.Sprintf("%s.%s", id, ext)
}
