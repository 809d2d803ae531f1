package service

import (
	"context"
	"fmt"

	cartpb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	d "github.com/fjod/storefront/checkout-service/domain"
	orderspb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (o *Orchestrator) createOrder(ctx context.Context, userID string, snapshot d.CartSnapshot, form d.CheckoutForm) (string, error) {
	items := make([]*orderspb.OrderLine, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		items = append(items, &orderspb.OrderLine{
			ProductId: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice,
			Quantity:  int32(l.Quantity),
		})
	}

	orderCtx, cancel := context.WithTimeout(ctx, o.orders.timeout)
	defer cancel()
	resp, err := o.orders.ordersClient.CreateOrder(orderCtx, &orderspb.CreateOrderRequest{
		UserId:      userID,
		CartRef:     snapshot.CartRef,
		Items:       items,
		TotalAmount: snapshot.Total,
		Currency:    o.cfg.Currency,
		ShippingAddress: &orderspb.ShippingAddress{
			Name:       form.Name,
			Email:      form.Email,
			Phone:      form.Phone,
			Address:    form.Address,
			City:       form.City,
			State:      form.State,
			PostalCode: form.PostalCode,
			Country:    form.Country,
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Order.Id, nil
}

func (o *Orchestrator) getOrder(ctx context.Context, orderID string) (*orderspb.Order, error) {
	orderCtx, cancel := context.WithTimeout(ctx, o.orders.timeout)
	defer cancel()

	resp, err := o.orders.ordersClient.GetOrder(orderCtx, &orderspb.GetOrderRequest{OrderId: orderID})
	if err != nil {
		switch status.Code(err) {
		case codes.NotFound, codes.InvalidArgument:
			return nil, d.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}
	return resp.Order, nil
}

func (o *Orchestrator) clearCart(ctx context.Context, cartKey string) error {
	cartCtx, cancel := context.WithTimeout(ctx, o.cart.timeout)
	defer cancel()

	_, err := o.cart.cartClient.ClearCart(cartCtx, &cartpb.ClearCartRequest{SessionKey: cartKey})
	return err
}
