package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// ErrClosed is returned when operations are attempted on a closed store.
var ErrClosed = errors.New("store: closed")

// Store is the interface for collection persistence backends.
// Implementations must be safe for concurrent use.
//
// A Store holds opaque byte payloads keyed by collection name. It has no
// knowledge of what the payloads contain; the typed helpers LoadCollection
// and SaveCollection layer JSON encoding on top.
type Store interface {
	// Load retrieves the payload stored under key.
	// Returns (nil, nil) if the key has never been written.
	// Returns (nil, err) on backend errors.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save persists the payload under key, overwriting any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// LoadCollection loads and decodes the JSON sequence stored under key.
//
// If the key is absent, the backend is unavailable, or the persisted payload
// is malformed, the caller's fallback sequence is returned instead; storage
// trouble is logged but never propagated to the operator.
func LoadCollection[T any](ctx context.Context, s Store, key string, fallback []T, logger *slog.Logger) []T {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := s.Load(ctx, key)
	if err != nil {
		logger.Warn("collection load failed, using defaults", "key", key, "error", err)
		return cloneSlice(fallback)
	}
	if data == nil {
		return cloneSlice(fallback)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("collection payload corrupt, using defaults", "key", key, "error", err)
		return cloneSlice(fallback)
	}
	return items
}

// SaveCollection encodes items as a JSON array and persists it under key.
func SaveCollection[T any](ctx context.Context, s Store, key string, items []T) error {
	// Persist [] rather than null for an empty sequence.
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.Save(ctx, key, data)
}

func cloneSlice[T any](src []T) []T {
	out := make([]T, len(src))
	copy(out, src)
	return out
}
