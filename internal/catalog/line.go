package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineKey is the identity of a cart line. The same product in two variants
// is two distinct lines, so the product id alone never identifies a line.
type LineKey struct {
	ProductID int
	Color     string
	Size      string
}

func (k LineKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.ProductID, k.Color, k.Size)
}

// Line is one purchasable variant held in the cart, as returned by the
// remote cart API.
type Line struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	ReleaseYear     string          `json:"release_year,omitempty"`
	CoverImage      string          `json:"cover_image"`
	Images          []string        `json:"images"`
	UnitPrice       decimal.Decimal `json:"price"`
	AvailableColors []string        `json:"available_colors,omitempty"`
	AvailableSizes  []string        `json:"available_sizes,omitempty"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Quantity        int             `json:"quantity"`
	Color           string          `json:"color"`
	Size            string          `json:"size"`
}

func (l Line) Key() LineKey {
	return LineKey{ProductID: l.ID, Color: l.Color, Size: l.Size}
}

// ImageForColor picks the variant image matching the line's color: the image
// at the color's index within AvailableColors, else the first image, else
// the cover image.
func (l Line) ImageForColor() string {
	if len(l.AvailableColors) == 0 || len(l.Images) == 0 {
		return l.CoverImage
	}
	for i, color := range l.AvailableColors {
		if color == l.Color {
			if i < len(l.Images) {
				return l.Images[i]
			}
			break
		}
	}
	return l.Images[0]
}

// Cart is the ordered collection of lines last reported by the remote API.
type Cart []Line

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// Find returns the line matching the key, or false when absent.
func (c Cart) Find(key LineKey) (Line, bool) {
	for _, line := range c {
		if line.Key() == key {
			return line, true
		}
	}
	return Line{}, false
}

// TotalQuantity sums line quantities, the number shown on the cart badge.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, line := range c {
		total += line.Quantity
	}
	return total
}

// Subtotal sums the server-computed line totals.
func (c Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c {
		subtotal = subtotal.Add(line.TotalPrice)
	}
	return subtotal
}
