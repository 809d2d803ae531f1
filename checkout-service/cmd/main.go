package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	cartPb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	cg "github.com/fjod/storefront/checkout-service/internal/grpc"
	"github.com/fjod/storefront/checkout-service/internal/service"
	"github.com/fjod/storefront/checkout-service/internal/validation"
	pb "github.com/fjod/storefront/checkout-service/pkg/checkoutpb"
	ordersPb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	paymentPb "github.com/fjod/storefront/payment-service/pkg/paymentpb"
	"github.com/fjod/storefront/pkg/config"
	"github.com/fjod/storefront/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type Config struct {
	Log            config.LogConfig        `mapstructure:"log"`
	GRPCPort       string                  `mapstructure:"grpc_port"`
	CartService    config.GRPCClientConfig `mapstructure:"cart_service"`
	OrdersService  config.GRPCClientConfig `mapstructure:"orders_service"`
	PaymentService config.GRPCClientConfig `mapstructure:"payment_service"`
	Checkout       CheckoutConfig          `mapstructure:"checkout"`
}

type CheckoutConfig struct {
	Currency    string `mapstructure:"currency"`
	CallbackURL string `mapstructure:"callback_url"`
	PhoneRegion string `mapstructure:"phone_region"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	err := config.Load(os.Getenv("CONFIG_FILE"), map[string]any{
		"grpc_port":               "50056",
		"cart_service.addr":       "localhost:50052",
		"cart_service.timeout":    "5s",
		"orders_service.addr":     "localhost:50055",
		"orders_service.timeout":  "5s",
		"payment_service.addr":    "localhost:50054",
		"payment_service.timeout": "15s",
		"checkout.currency":       "INR",
		"checkout.callback_url":   "http://localhost:8080/checkout",
		"checkout.phone_region":   "IN",
	}, &cfg)
	return &cfg, err
}

func dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cartConn, err := dial(cfg.CartService.Addr)
	if err != nil {
		log.Fatal("failed to connect to cart service", zap.Error(err))
	}
	defer cartConn.Close()

	ordersConn, err := dial(cfg.OrdersService.Addr)
	if err != nil {
		log.Fatal("failed to connect to orders service", zap.Error(err))
	}
	defer ordersConn.Close()

	paymentConn, err := dial(cfg.PaymentService.Addr)
	if err != nil {
		log.Fatal("failed to connect to payment service", zap.Error(err))
	}
	defer paymentConn.Close()

	orchestrator := service.NewOrchestrator(
		service.NewCartHandler(cartPb.NewCartServiceClient(cartConn), cfg.CartService.Timeout),
		service.NewOrdersHandler(ordersPb.NewOrdersServiceClient(ordersConn), cfg.OrdersService.Timeout),
		service.NewPaymentHandler(paymentPb.NewPaymentServiceClient(paymentConn), cfg.PaymentService.Timeout),
		validation.New(cfg.Checkout.PhoneRegion),
		service.Config{Currency: cfg.Checkout.Currency, CallbackURL: cfg.Checkout.CallbackURL},
		log.Named("checkout"),
	)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	pb.RegisterCheckoutServiceServer(grpcServer, cg.NewCheckoutServiceServer(orchestrator, log))

	go func() {
		log.Info("checkout service listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down checkout service")
	grpcServer.GracefulStop()
	log.Info("checkout service stopped")
}
