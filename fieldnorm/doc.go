// Package fieldnorm stores a compact per-document length for each field.
//
// The number of tokens a field holds in a document is compressed to a single
// byte through a monotone 256-entry table: lengths up to 40 are exact, larger
// lengths fall into geometrically growing buckets and decode to the bucket's
// lower bound. The byte is all the scoring formula ever sees, which keeps the
// norm table at one byte per document per field regardless of document size.
package fieldnorm
