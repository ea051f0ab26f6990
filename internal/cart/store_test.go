package cart

import (
	"context"
	"io"
	"testing"

	"github.com/nmaisuradze/storefront/internal/catalog"
	pkgerrors "github.com/nmaisuradze/storefront/pkg/errors"
	"github.com/nmaisuradze/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

type stubFetcher struct {
	cart  catalog.Cart
	err   error
	calls int
}

func (s *stubFetcher) GetCart(ctx context.Context) (catalog.Cart, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.cart, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testCart() catalog.Cart {
	return catalog.Cart{
		{ID: 5, Color: "red", Size: "M", Quantity: 2, TotalPrice: decimal.NewFromInt(50)},
	}
}

func TestNewStoreRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := NewStore(nil, testLogger()); err == nil {
		t.Fatal("expected error for nil gateway")
	}
	if _, err := NewStore(&stubFetcher{}, nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}

func TestSubscribeReplaysCurrentSnapshot(t *testing.T) {
	t.Parallel()

	fetch := &stubFetcher{cart: testCart()}
	store, err := NewStore(fetch, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var before []Snapshot
	unsubscribe := store.Subscribe(func(snap Snapshot) {
		before = append(before, snap)
	})
	defer unsubscribe()

	if len(before) != 1 || before[0].Loaded {
		t.Fatalf("expected one unloaded replay, got %+v", before)
	}

	if _, err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// A late subscriber gets the populated snapshot synchronously with no
	// extra fetch.
	callsBefore := fetch.calls
	var after []Snapshot
	defer store.Subscribe(func(snap Snapshot) {
		after = append(after, snap)
	})()

	if fetch.calls != callsBefore {
		t.Fatalf("subscription must not trigger network activity")
	}
	if len(after) != 1 || !after[0].Loaded || len(after[0].Cart) != 1 {
		t.Fatalf("expected populated replay, got %+v", after)
	}
}

func TestRefreshNotifiesInRegistrationOrder(t *testing.T) {
	t.Parallel()

	store, err := NewStore(&stubFetcher{cart: testCart()}, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var order []string
	defer store.Subscribe(func(Snapshot) { order = append(order, "badge") })()
	defer store.Subscribe(func(Snapshot) { order = append(order, "drawer") })()
	defer store.Subscribe(func(Snapshot) { order = append(order, "summary") })()
	order = nil // drop the subscription replays

	if _, err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	want := []string{"badge", "drawer", "summary"}
	if len(order) != len(want) {
		t.Fatalf("expected %d notifications, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("notification order mismatch: got %v", order)
		}
	}
}

func TestRefreshFailureLeavesStateAndPropagates(t *testing.T) {
	t.Parallel()

	fetch := &stubFetcher{cart: testCart()}
	store, err := NewStore(fetch, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	notified := 0
	defer store.Subscribe(func(Snapshot) { notified++ })()
	notified = 0

	fetch.err = pkgerrors.New(pkgerrors.CodeFetch, "get cart failed")
	if _, err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error to propagate")
	}

	if notified != 0 {
		t.Fatalf("failed refresh must not notify, got %d notifications", notified)
	}
	snap := store.Snapshot()
	if !snap.Loaded || len(snap.Cart) != 1 {
		t.Fatalf("failed refresh must leave last known-good state, got %+v", snap)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	t.Parallel()

	store, err := NewStore(&stubFetcher{cart: testCart()}, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	calls := 0
	unsubscribe := store.Subscribe(func(Snapshot) { calls++ })
	unsubscribe()
	calls = 0

	if _, err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if calls != 0 {
		t.Fatalf("unsubscribed listener still notified %d times", calls)
	}
}

func TestClearResetsToUnloadedAndNotifies(t *testing.T) {
	t.Parallel()

	store, err := NewStore(&stubFetcher{cart: testCart()}, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	var last Snapshot
	seen := 0
	defer store.Subscribe(func(snap Snapshot) {
		last = snap
		seen++
	})()
	seen = 0

	store.Clear()

	if seen != 1 {
		t.Fatalf("expected one clear notification, got %d", seen)
	}
	if last.Loaded || len(last.Cart) != 0 {
		t.Fatalf("clear should reset to unloaded, got %+v", last)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	store, err := NewStore(&stubFetcher{cart: testCart()}, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snap := store.Snapshot()
	snap.Cart[0].Quantity = 99

	if store.Snapshot().Cart[0].Quantity != 2 {
		t.Fatal("mutating a snapshot must not mutate the store")
	}
}
