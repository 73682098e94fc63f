package phones

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/taksi8637-pixel/taksi2/pkg/gate"
	"github.com/taksi8637-pixel/taksi2/pkg/store"
	"github.com/taksi8637-pixel/taksi2/pkg/toast"
)

// StorageKey is the collection key the registry persists under.
const StorageKey = "denizli-taxi-phones"

// Toast texts for phone mutations.
const (
	msgAdded      = "Telefon numarası eklendi!"
	msgRemoved    = "Telefon numarası silindi!"
	msgUpdated    = "Telefon numarası güncellendi!"
	msgLastRecord = "En az bir telefon numarası kalmalı!"
)

// Record is one displayed phone number.
//
// ID is immutable once assigned. Formatted is always re-derived from Number
// via Format when Number changes; the two never diverge through registry
// operations.
type Record struct {
	ID        int64  `json:"id"`
	Number    string `json:"number"`
	Label     string `json:"label"`
	Formatted string `json:"formatted"`
}

// DefaultRecords returns the seed collection used when nothing has been
// persisted yet (or the persisted payload cannot be read).
func DefaultRecords() []Record {
	return []Record{
		{ID: 1, Number: "+905401490040", Label: "Ana Telefon", Formatted: "0540 149 00 40"},
	}
}

// fallbackPrimary is substituted if the collection is ever observed empty,
// which the length invariant should make impossible.
var fallbackPrimary = Record{Number: "+905551234567", Formatted: "0555 123 45 67"}

// Authorizer gates mutating operations. *gate.Gate satisfies it.
type Authorizer interface {
	Authorized() bool
}

// Registry is the phone number registry. All methods are safe for
// concurrent use. Mutations require authorization, enforce the non-empty
// invariant, persist synchronously, and surface exactly one toast.
type Registry struct {
	store    store.Store
	auth     Authorizer
	notifier toast.Notifier
	logger   *slog.Logger

	mu      sync.RWMutex
	records []Record
	lastID  int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithNotifier sets the notifier mutations report to.
func WithNotifier(n toast.Notifier) Option {
	return func(r *Registry) { r.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New creates a Registry backed by st, loading the persisted collection or
// falling back to DefaultRecords.
func New(ctx context.Context, st store.Store, auth Authorizer, opts ...Option) *Registry {
	r := &Registry{
		store:    st,
		auth:     auth,
		notifier: toast.Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.records = store.LoadCollection(ctx, st, StorageKey, DefaultRecords(), r.logger)
	if len(r.records) == 0 {
		// A persisted empty array would violate the invariant before the
		// first mutation; reseed instead.
		r.records = DefaultRecords()
	}
	for _, rec := range r.records {
		if rec.ID > r.lastID {
			r.lastID = rec.ID
		}
	}
	return r
}

// Add appends a new record derived from the raw number and label.
//
// Blank (after trimming) number or label is rejected as a silent no-op:
// ErrEmptyInput is returned and no toast is surfaced. On success the record
// is appended, persisted, and a success toast surfaced.
func (r *Registry) Add(ctx context.Context, number, label string) (Record, error) {
	if !r.auth.Authorized() {
		return Record{}, gate.ErrUnauthorized
	}

	number = strings.TrimSpace(number)
	label = strings.TrimSpace(label)
	if number == "" || label == "" {
		return Record{}, ErrEmptyInput
	}

	r.mu.Lock()
	rec := Record{
		ID:        r.nextID(),
		Number:    number,
		Label:     label,
		Formatted: Format(number),
	}
	r.records = append(r.records, rec)
	r.persist(ctx)
	r.mu.Unlock()

	toast.Success(r.notifier, msgAdded)
	return rec, nil
}

// Update replaces the number and label of the record with the given id,
// re-deriving Formatted. Unknown ids are a silent no-op (ErrNotFound, no
// toast); the records are unchanged.
func (r *Registry) Update(ctx context.Context, id int64, number, label string) error {
	if !r.auth.Authorized() {
		return gate.ErrUnauthorized
	}

	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return ErrNotFound
	}
	r.records[idx].Number = number
	r.records[idx].Label = label
	r.records[idx].Formatted = Format(number)
	r.persist(ctx)
	r.mu.Unlock()

	toast.Success(r.notifier, msgUpdated)
	return nil
}

// Remove deletes the record with the given id.
//
// Removal that would empty the collection is refused: an error toast is
// surfaced, ErrLastRecord returned, and nothing changes. Unknown ids are a
// silent no-op.
func (r *Registry) Remove(ctx context.Context, id int64) error {
	if !r.auth.Authorized() {
		return gate.ErrUnauthorized
	}

	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return ErrNotFound
	}
	if len(r.records) <= 1 {
		r.mu.Unlock()
		toast.Error(r.notifier, msgLastRecord)
		return ErrLastRecord
	}
	r.records = append(r.records[:idx], r.records[idx+1:]...)
	r.persist(ctx)
	r.mu.Unlock()

	toast.Success(r.notifier, msgRemoved)
	return nil
}

// Primary returns the first record of the ordered collection, the number
// used by the default call and message actions. If the collection is ever
// empty a hardcoded fallback is substituted rather than failing.
func (r *Registry) Primary() Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.records) == 0 {
		return fallbackPrimary
	}
	return r.records[0]
}

// List returns a copy of the ordered collection.
func (r *Registry) List() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// nextID derives a fresh unique id from the current time, guarding against
// two adds landing in the same millisecond. Callers hold r.mu.
func (r *Registry) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return id
}

// indexOf returns the position of id, or -1. Callers hold r.mu.
func (r *Registry) indexOf(id int64) int {
	for i, rec := range r.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the collection synchronously within the mutating call.
// Storage failure is logged, never surfaced to the operator. Callers hold
// r.mu.
func (r *Registry) persist(ctx context.Context) {
	if err := store.SaveCollection(ctx, r.store, StorageKey, r.records); err != nil {
		r.logger.Error("phone collection save failed", "error", err)
	}
}
