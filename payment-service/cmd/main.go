package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	ordersPb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/fjod/storefront/payment-service/internal/gateway"
	pg "github.com/fjod/storefront/payment-service/internal/grpc"
	"github.com/fjod/storefront/payment-service/internal/service"
	pb "github.com/fjod/storefront/payment-service/pkg/paymentpb"
	"github.com/fjod/storefront/pkg/config"
	"github.com/fjod/storefront/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type Config struct {
	Log           config.LogConfig        `mapstructure:"log"`
	GRPCPort      string                  `mapstructure:"grpc_port"`
	OrdersService config.GRPCClientConfig `mapstructure:"orders_service"`
	Razorpay      RazorpayConfig          `mapstructure:"razorpay"`
}

type RazorpayConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	KeyID         string        `mapstructure:"key_id"`
	KeySecret     string        `mapstructure:"key_secret"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	err := config.Load(os.Getenv("CONFIG_FILE"), map[string]any{
		"grpc_port":               "50054",
		"orders_service.addr":     "localhost:50055",
		"razorpay.base_url":       gateway.DefaultBaseURL,
		"razorpay.key_id":         "",
		"razorpay.key_secret":     "",
		"razorpay.webhook_secret": "",
		"razorpay.timeout":        "10s",
	}, &cfg)
	return &cfg, err
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

	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		log.Fatal("razorpay.key_id and razorpay.key_secret are required")
	}
	if cfg.Razorpay.WebhookSecret == "" {
		log.Warn("razorpay.webhook_secret not set, webhooks will be rejected")
	}

	ordersConn, err := grpc.NewClient(
		cfg.OrdersService.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		log.Fatal("failed to connect to orders service", zap.Error(err))
	}
	defer ordersConn.Close()

	client := gateway.NewRazorpayClient(gateway.Config{
		BaseURL:   cfg.Razorpay.BaseURL,
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		Timeout:   cfg.Razorpay.Timeout,
	}, log.Named("gateway"))
	signer := gateway.NewSigner(cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret)

	payments := service.NewPaymentService(ordersPb.NewOrdersServiceClient(ordersConn), client, signer, log.Named("payment"))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	pb.RegisterPaymentServiceServer(grpcServer, pg.NewPaymentServiceServer(payments, log))

	go func() {
		log.Info("payment service listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down payment service")
	grpcServer.GracefulStop()
	log.Info("payment service stopped")
}
