package collector

import (
	"container/heap"
	"sort"

	"github.com/drusellers/tantivy/model"
	"github.com/drusellers/tantivy/segment"
)

// TopKCollector keeps the k best hits by score. Ties break toward the
// hit collected first, so results stay deterministic across runs.
type TopKCollector struct {
	ord   int
	limit int
	seq   int
	heap  topkHeap
}

// NewTopKCollector keeps the best limit hits. A limit below one
// collects nothing.
func NewTopKCollector(limit int) *TopKCollector {
	return &TopKCollector{ord: -1, limit: limit}
}

func (c *TopKCollector) SetSegment(ord int, _ *segment.Reader) error {
	c.ord = ord
	return nil
}

func (c *TopKCollector) Collect(doc model.DocID, score model.Score) {
	if c.limit <= 0 {
		return
	}
	entry := topkEntry{
		hit: Hit{SegmentOrd: c.ord, Doc: doc, Score: score},
		seq: c.seq,
	}
	c.seq++
	if len(c.heap) < c.limit {
		heap.Push(&c.heap, entry)
		return
	}
	if !c.heap[0].less(entry) {
		return
	}
	c.heap[0] = entry
	heap.Fix(&c.heap, 0)
}

// Hits returns the best hits, highest score first.
func (c *TopKCollector) Hits() []Hit {
	out := make([]topkEntry, len(c.heap))
	copy(out, c.heap)
	sort.Slice(out, func(a, b int) bool { return out[b].less(out[a]) })
	hits := make([]Hit, len(out))
	for i, e := range out {
		hits[i] = e.hit
	}
	return hits
}

type topkEntry struct {
	hit Hit
	seq int
}

// less orders entries worst first: lower score, then later arrival.
func (e topkEntry) less(other topkEntry) bool {
	if e.hit.Score != other.hit.Score {
		return e.hit.Score < other.hit.Score
	}
	return e.seq > other.seq
}

// topkHeap keeps the worst retained entry at the root so Collect can
// evict in O(log k).
type topkHeap []topkEntry

func (h topkHeap) Len() int           { return len(h) }
func (h topkHeap) Less(a, b int) bool { return h[a].less(h[b]) }
func (h topkHeap) Swap(a, b int)      { h[a], h[b] = h[b], h[a] }
func (h *topkHeap) Push(x any)        { *h = append(*h, x.(topkEntry)) }
func (h *topkHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
