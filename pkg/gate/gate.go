package gate

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"sync"

	"github.com/taksi8637-pixel/taksi2/pkg/toast"
)

var (
	// ErrInvalidCredentials is returned when the provided credentials do not
	// match. The operator sees it as an error toast.
	ErrInvalidCredentials = errors.New("gate: invalid credentials")

	// ErrUnauthorized is returned by mutating registry operations invoked
	// while the gate is in the Guest state.
	ErrUnauthorized = errors.New("gate: unauthorized")
)

// Toast texts shown for gate transitions.
const (
	msgLoginOK  = "Admin olarak giriş yaptınız!"
	msgLoginBad = "Kullanıcı adı veya şifre hatalı!"
	msgLogout   = "Çıkış yapıldı."
)

// Verifier checks operator credentials.
// Implementations must be safe for concurrent use.
type Verifier interface {
	Verify(username, password string) error
}

// StaticVerifier compares against a single configured username/password
// pair. It is the default Verifier, fed from runtime configuration.
type StaticVerifier struct {
	Username string
	Password string
}

// Verify returns ErrInvalidCredentials unless both values match exactly.
func (v StaticVerifier) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.Password)) == 1
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// Gate holds the authenticated/unauthenticated state for the process.
// A new Gate always starts in the Guest state; nothing about the session
// is persisted across restarts.
type Gate struct {
	verifier Verifier
	notifier toast.Notifier
	logger   *slog.Logger

	mu    sync.RWMutex
	admin bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithNotifier sets the notifier the gate reports outcomes to.
func WithNotifier(n toast.Notifier) Option {
	return func(g *Gate) { g.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// New creates a Gate in the Guest state.
func New(verifier Verifier, opts ...Option) *Gate {
	g := &Gate{
		verifier: verifier,
		notifier: toast.Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login attempts the Guest to Admin transition.
//
// On success the gate becomes Admin and a success toast is surfaced. On
// failure the state is unchanged, an error toast is surfaced, and
// ErrInvalidCredentials is returned so the caller can keep the form draft
// for correction.
func (g *Gate) Login(username, password string) error {
	if err := g.verifier.Verify(username, password); err != nil {
		g.logger.Info("login rejected", "username", username)
		toast.Error(g.notifier, msgLoginBad)
		return err
	}

	g.mu.Lock()
	g.admin = true
	g.mu.Unlock()

	g.logger.Info("login accepted", "username", username)
	toast.Success(g.notifier, msgLoginOK)
	return nil
}

// Logout transitions the gate back to Guest. Idempotent: logging out while
// already a Guest still surfaces the confirmation toast and stays in Guest.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.admin = false
	g.mu.Unlock()

	toast.Success(g.notifier, msgLogout)
}

// Authorized reports whether the gate is in the Admin state. The registries
// consult it before honoring any mutating call.
func (g *Gate) Authorized() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.admin
}
