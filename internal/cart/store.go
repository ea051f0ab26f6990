package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/nmaisuradze/storefront/internal/catalog"
	"github.com/nmaisuradze/storefront/pkg/logger"
)

// Snapshot is a side-effect-free read of the store's state. Loaded is false
// until the first successful refresh, which is distinct from a cart that is
// known to be empty.
type Snapshot struct {
	Cart   catalog.Cart
	Loaded bool
}

// Listener receives the new snapshot after every state change.
type Listener func(Snapshot)

type fetcher interface {
	GetCart(ctx context.Context) (catalog.Cart, error)
}

type subscriber struct {
	id int
	fn Listener
}

// Store is the single source of truth for the current cart. Every surface
// that renders cart data observes this one instance instead of fetching
// independently; independent fetches would race and show divergent counts.
type Store struct {
	mu      sync.Mutex
	current catalog.Cart
	loaded  bool
	subs    []subscriber
	nextID  int

	gateway fetcher
	logg    *logger.Logger
}

// NewStore builds the cart store. The caller constructs exactly one and
// injects it everywhere a surface needs cart state.
func NewStore(gateway fetcher, logg *logger.Logger) (*Store, error) {
	if gateway == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{gateway: gateway, logg: logg}, nil
}

// Refresh fetches the cart and, on success, replaces the cached state and
// notifies every subscriber synchronously in registration order. On failure
// the cached state is left untouched and the error is returned; the store
// never swallows fetch errors.
//
// Overlapping refreshes are not fenced: the last response to arrive wins,
// even if it was issued before another in-flight request.
func (s *Store) Refresh(ctx context.Context) (catalog.Cart, error) {
	fetched, err := s.gateway.GetCart(ctx)
	if err != nil {
		s.logg.Error(ctx, "cart refresh failed", err)
		return nil, err
	}

	s.mu.Lock()
	s.current = fetched
	s.loaded = true
	snap := s.snapshotLocked()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.logg.Debug(s.logg.WithField(ctx, "lines", len(fetched)), "cart refreshed")
	for _, sub := range subs {
		sub.fn(snap)
	}
	return snap.Cart, nil
}

// Subscribe registers a listener and immediately replays the current
// snapshot to it, so new surfaces need no separate initial-fetch path. The
// returned function removes the listener; callers must invoke it on
// teardown to stop notifications to unmounted surfaces.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

// Snapshot reads the current state without network activity.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Clear resets the store to the unloaded state and notifies subscribers.
// Used after checkout completes; the next refresh repopulates.
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = nil
	s.loaded = false
	snap := s.snapshotLocked()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	if !s.loaded {
		return Snapshot{}
	}
	cart := make(catalog.Cart, len(s.current))
	copy(cart, s.current)
	return Snapshot{Cart: cart, Loaded: true}
}
