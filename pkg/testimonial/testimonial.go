// Package testimonial holds the visitor testimonials shown on the site.
//
// Testimonials are in-memory only: the list starts from a seeded set and
// new entries are prepended for the lifetime of the process. Anyone may
// add one; the session gate does not apply here.
package testimonial

import (
	"strings"
	"sync"

	"github.com/taksi8637-pixel/taksi2/pkg/toast"
)

const msgAdded = "Yorumunuz eklendi!"

// Entry is one visitor testimonial.
type Entry struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

// DefaultEntries returns the seeded testimonials.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "Ahmet Yılmaz", Rating: 5, Comment: "Çok hızlı ve güvenilir hizmet. Şoför çok kibardı.", Date: "2 gün önce"},
		{Name: "Ayşe Kaya", Rating: 5, Comment: "Gece vakti bile 5 dakikada geldi. Harika!", Date: "1 hafta önce"},
		{Name: "Mehmet Demir", Rating: 5, Comment: "Fiyatlar uygun, araçlar temiz. Tavsiye ederim.", Date: "2 hafta önce"},
	}
}

// Registry is the in-memory testimonial list. Safe for concurrent use.
type Registry struct {
	notifier toast.Notifier

	mu      sync.RWMutex
	entries []Entry
}

// Option configures a Registry.
type Option func(*Registry)

// WithNotifier sets the notifier additions report to.
func WithNotifier(n toast.Notifier) Option {
	return func(r *Registry) { r.notifier = n }
}

// New creates a Registry seeded with DefaultEntries.
func New(opts ...Option) *Registry {
	r := &Registry{
		notifier: toast.Discard,
		entries:  DefaultEntries(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add prepends a new testimonial dated "Bugün". Blank name or comment is a
// silent no-op.
func (r *Registry) Add(name string, rating int, comment string) bool {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(comment) == "" {
		return false
	}

	entry := Entry{Name: name, Rating: rating, Comment: comment, Date: "Bugün"}

	r.mu.Lock()
	r.entries = append([]Entry{entry}, r.entries...)
	r.mu.Unlock()

	toast.Success(r.notifier, msgAdded)
	return true
}

// List returns a copy of the testimonials, newest first.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
