package service

import (
	"time"

	cartpb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	orderspb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	paymentpb "github.com/fjod/storefront/payment-service/pkg/paymentpb"
)

type CartHandler struct {
	cartClient cartpb.CartServiceClient
	timeout    time.Duration
}

func NewCartHandler(cartClient cartpb.CartServiceClient, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cartClient: cartClient,
		timeout:    timeout,
	}
}

type OrdersHandler struct {
	ordersClient orderspb.OrdersServiceClient
	timeout      time.Duration
}

func NewOrdersHandler(ordersClient orderspb.OrdersServiceClient, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		ordersClient: ordersClient,
		timeout:      timeout,
	}
}

type PaymentHandler struct {
	paymentClient paymentpb.PaymentServiceClient
	timeout       time.Duration
}

func NewPaymentHandler(paymentClient paymentpb.PaymentServiceClient, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		paymentClient: paymentClient,
		timeout:       timeout,
	}
}
