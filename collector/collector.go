package collector

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/segment"
)

// Collector consumes matched documents segment by segment. Callers
// invoke SetSegment before the first Collect of each segment; Collect
// then sees ascending document ids with no duplicates.
type Collector interface {
	SetSegment(ord int, r *segment.Reader) error
	Collect(doc model.DocID, score model.Score)
}

// Hit is one scored match, addressed by segment ordinal and document
// id within that segment.
type Hit struct {
	SegmentOrd int
	Doc        model.DocID
	Score      model.Score
}

// HitCollector keeps every match in collection order.
type HitCollector struct {
	ord  int
	hits []Hit
}

func NewHitCollector() *HitCollector {
	return &HitCollector{ord: -1}
}

func (c *HitCollector) SetSegment(ord int, _ *segment.Reader) error {
	c.ord = ord
	return nil
}

func (c *HitCollector) Collect(doc model.DocID, score model.Score) {
	c.hits = append(c.hits, Hit{SegmentOrd: c.ord, Doc: doc, Score: score})
}

// Hits returns the collected matches, ordered by collection time:
// ascending document id within each segment.
func (c *HitCollector) Hits() []Hit {
	return c.hits
}

// BitmapCollector records matched document ids in one roaring bitmap
// per segment ordinal, dropping scores.
type BitmapCollector struct {
	ord     int
	bitmaps map[int]*roaring.Bitmap
}

func NewBitmapCollector() *BitmapCollector {
	return &BitmapCollector{ord: -1, bitmaps: make(map[int]*roaring.Bitmap)}
}

func (c *BitmapCollector) SetSegment(ord int, _ *segment.Reader) error {
	c.ord = ord
	if _, ok := c.bitmaps[ord]; !ok {
		c.bitmaps[ord] = roaring.New()
	}
	return nil
}

func (c *BitmapCollector) Collect(doc model.DocID, _ model.Score) {
	c.bitmaps[c.ord].Add(uint32(doc))
}

// Bitmap returns the matches of one segment, or nil when the segment
// was never announced.
func (c *BitmapCollector) Bitmap(ord int) *roaring.Bitmap {
	return c.bitmaps[ord]
}

// Cardinality returns the total number of matches across segments.
func (c *BitmapCollector) Cardinality() uint64 {
	var n uint64
	for _, bm := range c.bitmaps {
		n += bm.GetCardinality()
	}
	return n
}

// CountCollector counts matches and nothing else.
type CountCollector struct {
	count uint64
}

func NewCountCollector() *CountCollector {
	return &CountCollector{}
}

func (c *CountCollector) SetSegment(int, *segment.Reader) error {
	return nil
}

func (c *CountCollector) Collect(model.DocID, model.Score) {
	c.count++
}

// Count returns the number of collected documents.
func (c *CountCollector) Count() uint64 {
	return c.count
}
