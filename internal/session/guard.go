package session

import (
	"sync"

	"github.com/maragia/motalk-server/internal/auth"
	"github.com/maragia/motalk-server/internal/model"
)

// State is the client's authentication state. Routing decisions hang off
// it: unauthenticated clients see the login surface, authenticated users
// the user surface, admins the admin surface.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticatedUser
	StateAuthenticatedAdmin
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticatedUser:
		return "authenticated_user"
	case StateAuthenticatedAdmin:
		return "authenticated_admin"
	default:
		return "unknown"
	}
}

// Guard is the client-side authentication state machine.
//
// Transitions:
//
//	Unauthenticated → Authenticating        Begin (login started)
//	Authenticating  → AuthenticatedUser     Complete (role != admin)
//	Authenticating  → AuthenticatedAdmin    Complete (role == admin)
//	Authenticating  → Unauthenticated       Fail (login rejected)
//	Authenticated*  → Unauthenticated       Expire / Logout
//
// Admin routing keys off the role claim, never off any property of the
// email address.
type Guard struct {
	mu        sync.Mutex
	state     State
	principal *auth.Principal
}

func NewGuard() *Guard {
	return &Guard{state: StateUnauthenticated}
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Principal returns the authenticated principal, or nil outside the
// authenticated states.
func (g *Guard) Principal() *auth.Principal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.principal
}

// Surface names the screen the client should route to for the current
// state. Authenticating keeps the login surface up (it shows progress
// there) until Complete or Fail moves on.
func (g *Guard) Surface() string {
	switch g.State() {
	case StateAuthenticatedAdmin:
		return "admin"
	case StateAuthenticatedUser:
		return "home"
	default:
		return "login"
	}
}

// Begin marks a login attempt in progress.
func (g *Guard) Begin() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateAuthenticating
	g.principal = nil
}

// Complete records a successful login. The resulting state depends only
// on the principal's role.
func (g *Guard) Complete(principal *auth.Principal) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.principal = principal
	if principal.Role == model.RoleAdmin {
		g.state = StateAuthenticatedAdmin
	} else {
		g.state = StateAuthenticatedUser
	}
}

// Fail returns to unauthenticated after a rejected login.
func (g *Guard) Fail() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateUnauthenticated
	g.principal = nil
}

// Expire drops the session when the server rejects the token.
func (g *Guard) Expire() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateUnauthenticated
	g.principal = nil
}

// Logout drops the session at the user's request.
func (g *Guard) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateUnauthenticated
	g.principal = nil
}
