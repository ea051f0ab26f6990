package session

import "sync"

// User is the externally supplied identity the storefront runs under.
// Where it comes from (token exchange, embedded shell) is not this
// package's concern.
type User struct {
	Email  string
	Avatar string
}

// Gate holds the current user and answers whether cart operations may run
// at all. No user means the cart is simply not fetched; it is not an error.
type Gate struct {
	mu   sync.RWMutex
	user *User
}

func NewGate(user *User) *Gate {
	return &Gate{user: user}
}

// SetUser swaps the current user; nil signs out.
func (g *Gate) SetUser(user *User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = user
}

// User returns the current user, nil when signed out.
func (g *Gate) User() *User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user
}

// SignedIn reports whether cart operations should be attempted.
func (g *Gate) SignedIn() bool {
	return g.User() != nil
}
