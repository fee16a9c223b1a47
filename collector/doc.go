// Package collector receives the (document, score) stream produced by
// query execution. The searcher announces each segment with SetSegment
// and then feeds every match of that segment in ascending document
// order, exactly once per document.
package collector
