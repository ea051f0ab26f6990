package cart

import (
	"github.com/shopspring/decimal"
)

// Surface identifies where the summary is rendered; it decides what the
// call-to-action does.
type Surface int

const (
	SurfaceDrawer Surface = iota
	SurfaceCheckout
)

// CTA is the action the summary button should trigger.
type CTA int

const (
	// CTAGoToCheckout navigates to the checkout page and closes the drawer.
	CTAGoToCheckout CTA = iota
	// CTAPay invokes the checkout engine's submission sequence directly.
	CTAPay
	// CTAStartShopping is the empty-cart action: back to browsing.
	CTAStartShopping
)

// Summary is a pure derivation of the snapshot; nothing here is cached or
// persisted, every store notification recomputes it.
type Summary struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	ItemCount   int
	CTA         CTA
}

// Summarize derives the totals and CTA for the given snapshot and surface.
// An unloaded or empty cart yields zero totals and the start-shopping CTA.
func Summarize(snap Snapshot, surface Surface, deliveryFee decimal.Decimal) Summary {
	if !snap.Loaded || snap.Cart.IsEmpty() {
		return Summary{
			Subtotal:    decimal.Zero,
			DeliveryFee: decimal.Zero,
			Total:       decimal.Zero,
			CTA:         CTAStartShopping,
		}
	}

	subtotal := snap.Cart.Subtotal()
	cta := CTAGoToCheckout
	if surface == SurfaceCheckout {
		cta = CTAPay
	}
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Total:       subtotal.Add(deliveryFee),
		ItemCount:   snap.Cart.TotalQuantity(),
		CTA:         cta,
	}
}
