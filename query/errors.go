package query

import (
	"errors"
	"fmt"

	"github.com/drusellers/tantivy/model"
)

var (
	// ErrPositionsNotIndexed is returned when a phrase query targets a
	// field whose indexing does not record token positions.
	ErrPositionsNotIndexed = errors.New("query: field does not have positions indexed")

	// ErrPhraseTooShort is returned for phrase queries with fewer than
	// two terms.
	ErrPhraseTooShort = errors.New("query: phrase query requires at least two terms")

	// ErrMixedFields is returned when the terms of a phrase query do
	// not all target the same field.
	ErrMixedFields = errors.New("query: phrase terms must target a single field")
)

// CapabilityError reports a query that needs an index feature the
// schema does not record for the targeted field.
type CapabilityError struct {
	Field     model.Field
	FieldName string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("query: phrase query applied to field %q, which does not have positions indexed", e.FieldName)
}

func (e *CapabilityError) Unwrap() error {
	return ErrPositionsNotIndexed
}
