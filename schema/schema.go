package schema

import (
	"encoding/json"
	"fmt"

	"github.com/drusellers/tantivy/model"
)

// IndexRecordOption describes how much information is recorded in a field's
// posting lists.
type IndexRecordOption uint8

const (
	// IndexedBasic records document ids only. Term frequencies are reported
	// as 1 and positions are unavailable.
	IndexedBasic IndexRecordOption = iota
	// IndexedWithFreqs records document ids and term frequencies.
	IndexedWithFreqs
	// IndexedWithFreqsAndPositions records document ids, term frequencies
	// and token positions. Required for phrase queries.
	IndexedWithFreqsAndPositions
)

// String returns the string representation of the IndexRecordOption.
func (o IndexRecordOption) String() string {
	switch o {
	case IndexedBasic:
		return "Basic"
	case IndexedWithFreqs:
		return "WithFreqs"
	case IndexedWithFreqsAndPositions:
		return "WithFreqsAndPositions"
	default:
		return "Unknown"
	}
}

// HasFreqs reports whether term frequencies are recorded.
func (o IndexRecordOption) HasFreqs() bool {
	return o >= IndexedWithFreqs
}

// HasPositions reports whether token positions are recorded.
func (o IndexRecordOption) HasPositions() bool {
	return o >= IndexedWithFreqsAndPositions
}

// FieldEntry describes a single indexed text field.
type FieldEntry struct {
	Name     string            `json:"name"`
	Indexing IndexRecordOption `json:"indexing"`
}

// Schema is the immutable field layout of an index. Field ordinals are
// assigned in registration order and are stable for the index's lifetime.
type Schema struct {
	entries []FieldEntry
	byName  map[string]model.Field
}

// Builder accumulates field registrations and produces a Schema.
type Builder struct {
	entries []FieldEntry
}

// NewBuilder creates an empty schema builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddTextField registers a text field and returns its ordinal.
// Registering the same name twice returns the existing ordinal unchanged.
func (b *Builder) AddTextField(name string, opt IndexRecordOption) model.Field {
	for i, e := range b.entries {
		if e.Name == name {
			return model.Field(i)
		}
	}
	b.entries = append(b.entries, FieldEntry{Name: name, Indexing: opt})
	return model.Field(len(b.entries) - 1)
}

// Build freezes the registrations into a Schema.
func (b *Builder) Build() *Schema {
	s := &Schema{
		entries: append([]FieldEntry(nil), b.entries...),
		byName:  make(map[string]model.Field, len(b.entries)),
	}
	for i, e := range s.entries {
		s.byName[e.Name] = model.Field(i)
	}
	return s
}

// NumFields returns the number of registered fields.
func (s *Schema) NumFields() int {
	return len(s.entries)
}

// Entry returns the field entry for the given ordinal.
func (s *Schema) Entry(field model.Field) (FieldEntry, error) {
	if int(field) >= len(s.entries) {
		return FieldEntry{}, fmt.Errorf("schema: unknown field ordinal %d", field)
	}
	return s.entries[field], nil
}

// FieldByName looks up a field ordinal by name.
func (s *Schema) FieldByName(name string) (model.Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// FieldName returns the name registered for the given ordinal, or a
// placeholder for unknown ordinals.
func (s *Schema) FieldName(field model.Field) string {
	if int(field) >= len(s.entries) {
		return fmt.Sprintf("<field %d>", field)
	}
	return s.entries[field].Name
}

// MarshalJSON implements json.Marshaler. A schema serializes as its ordered
// entry list.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.entries)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var entries []FieldEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	s.entries = entries
	s.byName = make(map[string]model.Field, len(entries))
	for i, e := range entries {
		s.byName[e.Name] = model.Field(i)
	}
	return nil
}
