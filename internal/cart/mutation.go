package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/nmaisuradze/storefront/internal/catalog"
	pkgerrors "github.com/nmaisuradze/storefront/pkg/errors"
)

// LineState is the mutation state of one rendered cart line.
type LineState int

const (
	LineIdle LineState = iota
	LinePending
	LineFailed
)

func (s LineState) String() string {
	switch s {
	case LineIdle:
		return "idle"
	case LinePending:
		return "pending"
	case LineFailed:
		return "failed"
	}
	return "unknown"
}

type lineMutator interface {
	UpdateLine(ctx context.Context, key catalog.LineKey, quantity int) (catalog.Cart, error)
	RemoveLine(ctx context.Context, key catalog.LineKey) (catalog.Cart, error)
}

type refresher interface {
	Refresh(ctx context.Context) (catalog.Cart, error)
}

// LineController drives optimistic quantity mutations for a single rendered
// line. The displayed quantity changes before the network call resolves;
// the store refresh after a confirmed mutation is the sole point of truth
// reconciliation, and a failure restores the last confirmed quantity.
type LineController struct {
	mu        sync.Mutex
	key       catalog.LineKey
	confirmed int
	quantity  int
	state     LineState
	err       error
	removed   bool

	store   refresher
	gateway lineMutator
}

// NewLineController builds a controller for the given line. One controller
// per rendered line, not per entity: two surfaces showing the same line
// each hold their own.
func NewLineController(store refresher, gateway lineMutator, line catalog.Line) (*LineController, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	quantity := line.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return &LineController{
		key:       line.Key(),
		confirmed: quantity,
		quantity:  quantity,
		store:     store,
		gateway:   gateway,
	}, nil
}

// Key returns the identity triple this controller mutates.
func (c *LineController) Key() catalog.LineKey {
	return c.key
}

// Quantity is the UI-visible quantity, including any optimistic value not
// yet confirmed by the server.
func (c *LineController) Quantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quantity
}

func (c *LineController) State() LineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the per-line error from the last failed mutation. Mutation
// failures never escalate past the line that caused them.
func (c *LineController) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Removed reports whether this line was removed via the controller.
func (c *LineController) Removed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removed
}

// Increment optimistically raises the quantity by one and confirms it with
// the server.
func (c *LineController) Increment(ctx context.Context) error {
	c.mu.Lock()
	if c.state == LinePending {
		c.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, "line mutation already in progress")
	}
	target := c.quantity + 1
	c.quantity = target
	c.state = LinePending
	c.err = nil
	c.mu.Unlock()

	return c.confirmUpdate(ctx, target)
}

// Decrement optimistically lowers the quantity by one. Quantity 1 is
// irreducible: the call is a no-op with no network activity; removal is the
// only way down from one.
func (c *LineController) Decrement(ctx context.Context) error {
	c.mu.Lock()
	if c.state == LinePending {
		c.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, "line mutation already in progress")
	}
	if c.quantity <= 1 {
		c.mu.Unlock()
		return nil
	}
	target := c.quantity - 1
	c.quantity = target
	c.state = LinePending
	c.err = nil
	c.mu.Unlock()

	return c.confirmUpdate(ctx, target)
}

// Remove deletes the line server-side and reconciles through the store.
func (c *LineController) Remove(ctx context.Context) error {
	c.mu.Lock()
	if c.state == LinePending {
		c.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, "line mutation already in progress")
	}
	c.state = LinePending
	c.err = nil
	c.mu.Unlock()

	if _, err := c.gateway.RemoveLine(ctx, c.key); err != nil {
		c.fail(err)
		return err
	}
	if _, err := c.store.Refresh(ctx); err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.removed = true
	c.state = LineIdle
	c.mu.Unlock()
	return nil
}

func (c *LineController) confirmUpdate(ctx context.Context, target int) error {
	if _, err := c.gateway.UpdateLine(ctx, c.key, target); err != nil {
		c.fail(err)
		return err
	}
	if _, err := c.store.Refresh(ctx); err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.confirmed = target
	c.state = LineIdle
	c.mu.Unlock()
	return nil
}

// fail rolls the displayed quantity back to the last confirmed value.
func (c *LineController) fail(err error) {
	c.mu.Lock()
	c.quantity = c.confirmed
	c.state = LineFailed
	c.err = err
	c.mu.Unlock()
}
