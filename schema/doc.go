// Package schema describes the field layout of an index.
//
// A Schema assigns each text field an ordinal and an IndexRecordOption that
// fixes how much posting information is recorded for it. The option acts as
// a capability declaration at query time: phrase queries require
// IndexedWithFreqsAndPositions and fail fast on fields indexed without
// positions.
//
//	builder := schema.NewBuilder()
//	text := builder.AddTextField("text", schema.IndexedWithFreqsAndPositions)
//	sc := builder.Build()
//
// Schemas are immutable once built and serialize as JSON inside the index
// meta file.
package schema
