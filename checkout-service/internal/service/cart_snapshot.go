package service

import (
	"context"
	"fmt"

	cartpb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	d "github.com/fjod/storefront/checkout-service/domain"
)

// snapshotCart reads the cart and freezes its lines. Later cart mutations do
// not reach the order.
func (o *Orchestrator) snapshotCart(ctx context.Context, cartKey string) (d.CartSnapshot, error) {
	cartCtx, cancel := context.WithTimeout(ctx, o.cart.timeout)
	defer cancel()

	resp, err := o.cart.cartClient.GetCart(cartCtx, &cartpb.GetCartRequest{SessionKey: cartKey})
	if err != nil {
		return d.CartSnapshot{}, fmt.Errorf("failed to get cart: %w", err)
	}
	return buildCartSnapshot(cartKey, resp.Cart), nil
}

func buildCartSnapshot(cartKey string, cart *cartpb.Cart) d.CartSnapshot {
	snapshot := d.CartSnapshot{CartRef: cartKey}
	if cart == nil {
		return snapshot
	}

	snapshot.Lines = make([]d.OrderLine, 0, len(cart.Items))
	for _, it := range cart.Items {
		snapshot.Lines = append(snapshot.Lines, d.OrderLine{
			ProductID: it.ProductId,
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  int(it.Quantity),
		})
	}
	snapshot.Subtotal = cart.Subtotal
	snapshot.Shipping = cart.Shipping
	snapshot.Total = cart.Total
	return snapshot
}
