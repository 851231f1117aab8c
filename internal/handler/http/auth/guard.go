package auth

import "sync"

// GuardState is where a Guard is in the session lookup.
type GuardState int

const (
	// Pending means the session is still being looked up.
	Pending GuardState = iota
	// Resolved means the lookup finished.
	Resolved
)

func (s GuardState) String() string {
	if s == Resolved {
		return "resolved"
	}
	return "pending"
}

// Guard decides when a protected page sends its visitor to login. It starts
// Pending. Observing a finished lookup without a session yields the login
// redirect once; further observations in that state yield nothing until the
// guard goes back to Pending or a session appears.
type Guard struct {
	path string

	mu    sync.Mutex
	state GuardState
	fired bool
}

// NewGuard returns a Pending guard for the page at path.
func NewGuard(path string) *Guard {
	return &Guard{path: path}
}

// State returns the current state.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Observe records the lookup state and returns the redirect target when
// one is due.
func (g *Guard) Observe(loading, hasSession bool) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if loading {
		g.state, g.fired = Pending, false
		return "", false
	}
	g.state = Resolved
	if hasSession {
		g.fired = false
		return "", false
	}
	if g.fired {
		return "", false
	}
	g.fired = true
	return LoginRedirect(g.path), true
}

// LoginRedirect is the login URL that returns to path afterwards.
func LoginRedirect(path string) string {
	return "/login?returnTo=" + path
}
