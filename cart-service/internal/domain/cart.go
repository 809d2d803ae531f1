package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Product is the catalog view a cart line is created from.
type Product struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	ImageRef   string
	ArtisanRef string
}

// CartItem is one line of the cart, keyed by ProductID. Quantity is always >= 1.
type CartItem struct {
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	ImageRef   string          `json:"image,omitempty"`
	ArtisanRef string          `json:"artisan,omitempty"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is the cart with its derived totals. Subtotal, Shipping and Total are
// only ever produced by Pricing.Derive.
type State struct {
	Items    []CartItem
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s State) Find(productID string) (CartItem, bool) {
	if i := indexOf(s.Items, productID); i >= 0 {
		return s.Items[i], true
	}
	return CartItem{}, false
}

// Equal compares items (in order) and totals.
func (s State) Equal(o State) bool {
	if len(s.Items) != len(o.Items) {
		return false
	}
	for i := range s.Items {
		a, b := s.Items[i], o.Items[i]
		if a.ProductID != b.ProductID || a.Name != b.Name || a.Quantity != b.Quantity ||
			!a.UnitPrice.Equal(b.UnitPrice) || a.ImageRef != b.ImageRef || a.ArtisanRef != b.ArtisanRef {
			return false
		}
	}
	return s.Subtotal.Equal(o.Subtotal) && s.Shipping.Equal(o.Shipping) && s.Total.Equal(o.Total)
}

// Line is a (product, quantity) pair used to compare a cart with an order.
type Line struct {
	ProductID string
	Quantity  int
}

// HoldsExactly reports whether the cart contains exactly the given lines,
// ignoring order.
func (s State) HoldsExactly(lines []Line) bool {
	if len(lines) != len(s.Items) {
		return false
	}
	want := make(map[string]int, len(lines))
	for _, l := range lines {
		want[l.ProductID] += l.Quantity
	}
	if len(want) != len(s.Items) {
		return false
	}
	for _, it := range s.Items {
		if want[it.ProductID] != it.Quantity {
			return false
		}
	}
	return true
}

type Pricing struct {
	// FreeShippingThreshold must be strictly exceeded for free shipping.
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(150),
		FlatShippingFee:       decimal.NewFromInt(10),
	}
}

// Derive builds a State from items, recomputing every total. An empty cart
// has zero shipping.
func (p Pricing) Derive(items []CartItem) State {
	if len(items) == 0 {
		return State{
			Items:    nil,
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	shipping := p.FlatShippingFee
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return State{
		Items:    items,
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}

// Action is a cart mutation. The set is closed: AddItem, RemoveItem,
// UpdateQuantity and Clear.
type Action interface {
	isAction()
}

// AddItem increments the line for Product or appends a new line with
// quantity 1. An existing line keeps the name and price it was added with.
type AddItem struct {
	Product Product
}

type RemoveItem struct {
	ProductID string
}

// UpdateQuantity sets an absolute quantity. Quantity <= 0 removes the line.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

type Clear struct{}

func (AddItem) isAction()        {}
func (RemoveItem) isAction()     {}
func (UpdateQuantity) isAction() {}
func (Clear) isAction()          {}

// Reduce applies a to s and returns the new state. s is never modified.
func Reduce(s State, a Action, p Pricing) State {
	items := slices.Clone(s.Items)

	switch a := a.(type) {
	case AddItem:
		if i := indexOf(items, a.Product.ID); i >= 0 {
			items[i].Quantity++
		} else {
			items = append(items, CartItem{
				ProductID:  a.Product.ID,
				Name:       a.Product.Name,
				UnitPrice:  a.Product.Price,
				Quantity:   1,
				ImageRef:   a.Product.ImageRef,
				ArtisanRef: a.Product.ArtisanRef,
			})
		}
	case RemoveItem:
		items = removeLine(items, a.ProductID)
	case UpdateQuantity:
		if a.Quantity <= 0 {
			items = removeLine(items, a.ProductID)
		} else if i := indexOf(items, a.ProductID); i >= 0 {
			items[i].Quantity = a.Quantity
		}
	case Clear:
		items = nil
	}

	return p.Derive(items)
}

func indexOf(items []CartItem, productID string) int {
	return slices.IndexFunc(items, func(it CartItem) bool {
		return it.ProductID == productID
	})
}

func removeLine(items []CartItem, productID string) []CartItem {
	return slices.DeleteFunc(items, func(it CartItem) bool {
		return it.ProductID == productID
	})
}
