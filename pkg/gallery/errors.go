package gallery

import "errors"

var (
	// ErrTooLarge is returned when a selected file exceeds MaxUploadSize.
	ErrTooLarge = errors.New("gallery: file too large")

	// ErrNoPending is returned by Commit when nothing is staged. Handled
	// as a silent no-op.
	ErrNoPending = errors.New("gallery: no pending upload")

	// ErrOutOfRange is returned for an index outside the sequence. Handled
	// as a silent no-op.
	ErrOutOfRange = errors.New("gallery: index out of range")
)
