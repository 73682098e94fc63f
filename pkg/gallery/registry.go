package gallery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taksi8637-pixel/taksi2/pkg/gate"
	"github.com/taksi8637-pixel/taksi2/pkg/store"
	"github.com/taksi8637-pixel/taksi2/pkg/toast"
)

// StorageKey is the collection key the registry persists under.
const StorageKey = "denizli-taxi-gallery"

// Toast texts for gallery mutations.
const (
	msgAdded    = "Fotoğraf eklendi!"
	msgRemoved  = "Fotoğraf silindi!"
	msgTooLarge = "Dosya boyutu 5MB'dan küçük olmalı!"
)

// DefaultImages returns the seed gallery used when nothing has been
// persisted yet (or the persisted payload cannot be read).
func DefaultImages() []string {
	return []string{
		"/gallery-1.jpg",
		"/gallery-2.jpg",
		"/gallery-3.jpg",
		"/gallery-4.jpg",
	}
}

// Authorizer gates mutating operations. *gate.Gate satisfies it.
type Authorizer interface {
	Authorized() bool
}

// Registry is the gallery registry. All methods are safe for concurrent
// use. Unlike the phone registry there is no minimum-length invariant: the
// gallery may become empty.
type Registry struct {
	store    store.Store
	auth     Authorizer
	notifier toast.Notifier
	logger   *slog.Logger

	mu             sync.RWMutex
	images         []string
	pending        string
	hasPending     bool
	pendingVersion uint64
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

// New creates a Registry backed by st, loading the persisted sequence or
// falling back to DefaultImages.
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

	r.images = store.LoadCollection(ctx, st, StorageKey, DefaultImages(), r.logger)
	return r
}

// Select validates a chosen file and starts its asynchronous decode.
//
// Files over MaxUploadSize are refused with an error toast and no state
// change. Otherwise the decode runs off the calling goroutine and, on
// completion, stages the image in the pending slot, replacing whatever
// was staged before. Select never blocks on the file contents.
func (g *Registry) Select(ctx context.Context, src Source) error {
	if !g.auth.Authorized() {
		return gate.ErrUnauthorized
	}

	if src.Size > MaxUploadSize {
		g.tooLarge(src.Filename)
		return ErrTooLarge
	}

	g.mu.Lock()
	g.pendingVersion++
	version := g.pendingVersion
	g.mu.Unlock()

	go g.decode(version, src)
	return nil
}

// Commit appends the staged image to the gallery, clears the slot,
// persists, and surfaces a success toast. With nothing staged it is a
// silent no-op returning ErrNoPending.
func (g *Registry) Commit(ctx context.Context) error {
	if !g.auth.Authorized() {
		return gate.ErrUnauthorized
	}

	g.mu.Lock()
	if !g.hasPending {
		g.mu.Unlock()
		return ErrNoPending
	}
	g.images = append(g.images, g.pending)
	g.clearPendingLocked()
	g.persist(ctx)
	g.mu.Unlock()

	toast.Success(g.notifier, msgAdded)
	return nil
}

// Cancel discards the staged image without appending it. No persistence,
// no toast. An in-flight decode from an earlier Select is invalidated too.
func (g *Registry) Cancel(ctx context.Context) error {
	if !g.auth.Authorized() {
		return gate.ErrUnauthorized
	}

	g.mu.Lock()
	g.clearPendingLocked()
	g.mu.Unlock()
	return nil
}

// RemoveAt deletes the image at the given display position, persists, and
// surfaces a success toast. Out-of-range indexes are a silent no-op.
func (g *Registry) RemoveAt(ctx context.Context, index int) error {
	if !g.auth.Authorized() {
		return gate.ErrUnauthorized
	}

	g.mu.Lock()
	if index < 0 || index >= len(g.images) {
		g.mu.Unlock()
		return ErrOutOfRange
	}
	g.images = append(g.images[:index], g.images[index+1:]...)
	g.persist(ctx)
	g.mu.Unlock()

	toast.Success(g.notifier, msgRemoved)
	return nil
}

// Pending returns the staged image, if any.
func (g *Registry) Pending() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pending, g.hasPending
}

// Images returns a copy of the ordered sequence.
func (g *Registry) Images() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.images))
	copy(out, g.images)
	return out
}

// Len returns the number of images.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.images)
}

// clearPendingLocked empties the slot and bumps the version so any decode
// still in flight is discarded on completion. Callers hold g.mu.
func (g *Registry) clearPendingLocked() {
	g.pending = ""
	g.hasPending = false
	g.pendingVersion++
}

// persist writes the sequence synchronously within the mutating call.
// Storage failure is logged, never surfaced to the operator. Callers hold
// g.mu.
func (g *Registry) persist(ctx context.Context) {
	if err := store.SaveCollection(ctx, g.store, StorageKey, g.images); err != nil {
		g.logger.Error("gallery collection save failed", "error", err)
	}
}

func (g *Registry) tooLarge(filename string) {
	g.logger.Info("upload rejected, file too large", "filename", filename)
	toast.Error(g.notifier, msgTooLarge)
}
