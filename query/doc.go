// Package query turns queries into per-segment scorers. A Query is
// bound to a schema with Weight, which validates it against the index
// capabilities; the Weight then produces one Scorer per segment, pulling
// document frequencies and field statistics from that segment alone.
// Scorers rank with BM25.
package query
