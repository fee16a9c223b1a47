package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drusellers/tantivy/model"
)

func TestHitCollector(t *testing.T) {
	c := NewHitCollector()

	require.NoError(t, c.SetSegment(0, nil))
	c.Collect(1, 0.5)
	c.Collect(4, 0.25)
	require.NoError(t, c.SetSegment(1, nil))
	c.Collect(0, 0.75)

	assert.Equal(t, []Hit{
		{SegmentOrd: 0, Doc: 1, Score: 0.5},
		{SegmentOrd: 0, Doc: 4, Score: 0.25},
		{SegmentOrd: 1, Doc: 0, Score: 0.75},
	}, c.Hits())
}

func TestBitmapCollector(t *testing.T) {
	c := NewBitmapCollector()

	require.NoError(t, c.SetSegment(0, nil))
	c.Collect(1, 0)
	c.Collect(7, 0)
	require.NoError(t, c.SetSegment(3, nil))
	c.Collect(1, 0)

	assert.Equal(t, uint64(3), c.Cardinality())
	assert.True(t, c.Bitmap(0).Contains(1))
	assert.True(t, c.Bitmap(0).Contains(7))
	assert.False(t, c.Bitmap(0).Contains(2))
	assert.True(t, c.Bitmap(3).Contains(1))
	assert.Nil(t, c.Bitmap(2))
}

func TestBitmapCollectorRevisitedSegmentAccumulates(t *testing.T) {
	c := NewBitmapCollector()

	require.NoError(t, c.SetSegment(0, nil))
	c.Collect(1, 0)
	require.NoError(t, c.SetSegment(0, nil))
	c.Collect(2, 0)

	assert.Equal(t, uint64(2), c.Bitmap(0).GetCardinality())
}

func TestCountCollector(t *testing.T) {
	c := NewCountCollector()

	require.NoError(t, c.SetSegment(0, nil))
	for doc := model.DocID(0); doc < 5; doc++ {
		c.Collect(doc, 0)
	}
	require.NoError(t, c.SetSegment(1, nil))
	c.Collect(0, 0)

	assert.Equal(t, uint64(6), c.Count())
}

func TestTopKCollectorKeepsBest(t *testing.T) {
	c := NewTopKCollector(3)

	require.NoError(t, c.SetSegment(0, nil))
	c.Collect(0, 0.10)
	c.Collect(1, 0.90)
	c.Collect(2, 0.50)
	c.Collect(3, 0.70)
	c.Collect(4, 0.30)

	hits := c.Hits()
	require.Len(t, hits, 3)
	assert.Equal(t, model.DocID(1), hits[0].Doc)
	assert.Equal(t, model.DocID(3), hits[1].Doc)
	assert.Equal(t, model.DocID(2), hits[2].Doc)
}

func TestTopKCollectorTieBreaksOnFirstSeen(t *testing.T) {
	c := NewTopKCollector(2)

	require.NoError(t, c.SetSegment(0, nil))
	c.Collect(5, 0.5)
	c.Collect(6, 0.5)
	c.Collect(7, 0.5)

	hits := c.Hits()
	require.Len(t, hits, 2)
	assert.Equal(t, model.DocID(5), hits[0].Doc)
	assert.Equal(t, model.DocID(6), hits[1].Doc)
}

func TestTopKCollectorFewerHitsThanLimit(t *testing.T) {
	c := NewTopKCollector(10)

	require.NoError(t, c.SetSegment(2, nil))
	c.Collect(1, 0.2)
	c.Collect(2, 0.4)

	hits := c.Hits()
	require.Len(t, hits, 2)
	assert.Equal(t, Hit{SegmentOrd: 2, Doc: 2, Score: 0.4}, hits[0])
	assert.Equal(t, Hit{SegmentOrd: 2, Doc: 1, Score: 0.2}, hits[1])
}

func TestTopKCollectorZeroLimit(t *testing.T) {
	c := NewTopKCollector(0)

	require.NoError(t, c.SetSegment(0, nil))
	c.Collect(1, 1.0)

	assert.Empty(t, c.Hits())
}
