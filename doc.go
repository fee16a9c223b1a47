// Package tantivy provides an embedded full-text search engine for Go.
//
// Documents are tokenized into immutable on-disk segments; queries run
// against a point-in-time snapshot of those segments and rank matches
// with BM25. The design favors predictable, deterministic behavior:
// segment files never change after commit, and deletes are tombstone
// bitmaps applied at search time.
//
// # Quick Start
//
// Build an index in a directory and search it:
//
//	b := schema.NewBuilder()
//	body := b.AddTextField("body", schema.IndexedWithFreqsAndPositions)
//	sch := b.Build()
//
//	ix, _ := tantivy.CreateInDir("./data", sch)
//	defer ix.Close()
//
//	w := ix.Writer()
//	var doc model.Document
//	doc.AddText(body, "the old man and the sea")
//	_ = w.AddDocument(doc)
//	_ = w.Commit(ctx)
//
//	s, _ := ix.Searcher()
//	defer s.Close()
//	hits := collector.NewHitCollector()
//	_ = s.Search(tantivy.NewTermQuery(model.NewTextTerm(body, "sea")), hits)
//
// # Queries
//
// Term queries match a single token; phrase queries match tokens at
// consecutive positions (the field must be indexed with positions):
//
//	q := tantivy.NewPhraseQuery([]model.Term{
//	    model.NewTextTerm(body, "old"),
//	    model.NewTextTerm(body, "man"),
//	})
//
// # Storage
//
// Index data lives behind the directory.Directory abstraction:
//
//   - directory.NewRAMDirectory: in-memory, for tests and ephemeral indexes
//   - directory.OpenMmapDirectory: local files served through a shared
//     mmap cache
//   - directory/s3, directory/minio: remote objects with a local cache
//
// # Key Features
//
//   - Immutable segments with CRC32-checked files
//   - BM25 ranking with cached norm tables
//   - Leapfrog phrase joins with positional verification
//   - Roaring bitmap delete sets applied at search time
//   - Pull-based collectors, parallel search across segments
package tantivy
