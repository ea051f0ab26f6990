package cart

import (
	"testing"

	"github.com/nmaisuradze/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

func TestSummarizeCheckoutSurface(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Loaded: true,
		Cart: catalog.Cart{
			{ID: 5, Color: "red", Size: "M", Quantity: 2, TotalPrice: decimal.NewFromInt(50)},
		},
	}

	got := Summarize(snap, SurfaceCheckout, decimal.NewFromInt(5))

	if !got.Subtotal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected subtotal 50, got %s", got.Subtotal)
	}
	if !got.Total.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("expected total 55, got %s", got.Total)
	}
	if got.CTA != CTAPay {
		t.Fatalf("checkout surface must offer Pay, got %v", got.CTA)
	}
	if got.ItemCount != 2 {
		t.Fatalf("expected item count 2, got %d", got.ItemCount)
	}
}

func TestSummarizeDrawerSurface(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Loaded: true,
		Cart: catalog.Cart{
			{ID: 1, Color: "blue", Size: "S", Quantity: 1, TotalPrice: decimal.NewFromInt(20)},
			{ID: 2, Color: "red", Size: "L", Quantity: 3, TotalPrice: decimal.NewFromInt(60)},
		},
	}

	got := Summarize(snap, SurfaceDrawer, decimal.NewFromInt(5))

	if got.CTA != CTAGoToCheckout {
		t.Fatalf("drawer surface must navigate to checkout, got %v", got.CTA)
	}
	if !got.Total.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("expected total 85, got %s", got.Total)
	}
	if got.ItemCount != 4 {
		t.Fatalf("expected item count 4, got %d", got.ItemCount)
	}
}

func TestSummarizeEmptyAndUnloaded(t *testing.T) {
	t.Parallel()

	for name, snap := range map[string]Snapshot{
		"unloaded":    {},
		"known empty": {Loaded: true, Cart: catalog.Cart{}},
	} {
		got := Summarize(snap, SurfaceDrawer, decimal.NewFromInt(5))
		if got.CTA != CTAStartShopping {
			t.Fatalf("%s: expected start-shopping CTA, got %v", name, got.CTA)
		}
		if !got.Total.Equal(decimal.Zero) || !got.DeliveryFee.Equal(decimal.Zero) {
			t.Fatalf("%s: expected zero totals, got %+v", name, got)
		}
	}
}
