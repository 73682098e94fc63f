package phones

import "errors"

var (
	// ErrEmptyInput is returned when Add is called with a blank number or
	// label. The operator gets no toast for it.
	ErrEmptyInput = errors.New("phones: empty number or label")

	// ErrNotFound is returned for an unknown record id. Handled as a
	// silent no-op.
	ErrNotFound = errors.New("phones: record not found")

	// ErrLastRecord is returned when a removal would empty the collection.
	ErrLastRecord = errors.New("phones: at least one record must remain")
)
