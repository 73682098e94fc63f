package toast

import "sync"

// EventName is the event name dispatched for toasts.
// Client-side code should listen for this event.
const EventName = "taksi:toast"

// Level represents the toast notification level.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notifier receives toast notifications from the core.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(level Level, message string)
}

// Success shows a success toast.
//
//	toast.Success(n, "Fotoğraf eklendi!")
func Success(n Notifier, message string) {
	if n != nil {
		n.Notify(LevelSuccess, message)
	}
}

// Error shows an error toast.
//
//	toast.Error(n, "Kullanıcı adı veya şifre hatalı!")
func Error(n Notifier, message string) {
	if n != nil {
		n.Notify(LevelError, message)
	}
}

// Warning shows a warning toast.
func Warning(n Notifier, message string) {
	if n != nil {
		n.Notify(LevelWarning, message)
	}
}

// Info shows an info toast.
func Info(n Notifier, message string) {
	if n != nil {
		n.Notify(LevelInfo, message)
	}
}

// Discard is a Notifier that drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Level, string) {}

// Multi fans a notification out to several notifiers.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

type multi []Notifier

func (m multi) Notify(level Level, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(level, message)
		}
	}
}

// Recorder is a Notifier that captures notifications for verification.
// It is the test double used throughout the core's tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Entry is one recorded notification.
type Entry struct {
	Level   Level
	Message string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify records the notification.
func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: message})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Last returns the most recent entry, or (zero, false) if nothing was recorded.
func (r *Recorder) Last() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// Reset clears all recorded entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
