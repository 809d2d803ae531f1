package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/storefront/api-gateway/internal/auth"
	h "github.com/fjod/storefront/api-gateway/internal/http"
	cartpb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	checkoutpb "github.com/fjod/storefront/checkout-service/pkg/checkoutpb"
	orderspb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	paymentpb "github.com/fjod/storefront/payment-service/pkg/paymentpb"
	"github.com/fjod/storefront/pkg/config"
	"github.com/fjod/storefront/pkg/logger"
	productpb "github.com/fjod/storefront/product-service/pkg/productpb"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type Config struct {
	Log             config.LogConfig `mapstructure:"log"`
	HTTP            HTTPConfig       `mapstructure:"http"`
	Auth            AuthConfig       `mapstructure:"auth"`
	ProductService  string           `mapstructure:"product_service_addr"`
	CartService     string           `mapstructure:"cart_service_addr"`
	CheckoutService string           `mapstructure:"checkout_service_addr"`
	OrdersService   string           `mapstructure:"orders_service_addr"`
	PaymentService  string           `mapstructure:"payment_service_addr"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	CheckoutTimeout time.Duration `mapstructure:"checkout_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	err := config.Load(os.Getenv("CONFIG_FILE"), map[string]any{
		"http.port":             "8080",
		"http.request_timeout":  "30s",
		"http.checkout_timeout": "25s",
		"http.shutdown_timeout": "10s",
		"http.secure_cookies":   false,
		"auth.jwt_secret":       "",
		"auth.token_ttl":        "24h",
		"product_service_addr":  "localhost:50051",
		"cart_service_addr":     "localhost:50052",
		"payment_service_addr":  "localhost:50054",
		"orders_service_addr":   "localhost:50055",
		"checkout_service_addr": "localhost:50056",
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
	zap.ReplaceGlobals(log)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret is required")
	}

	conns := map[string]*grpc.ClientConn{}
	for name, addr := range map[string]string{
		"product":  cfg.ProductService,
		"cart":     cfg.CartService,
		"checkout": cfg.CheckoutService,
		"orders":   cfg.OrdersService,
		"payment":  cfg.PaymentService,
	} {
		conn, err := dial(addr)
		if err != nil {
			log.Fatal("failed to connect to service", zap.String("service", name), zap.Error(err))
		}
		defer conn.Close()
		conns[name] = conn
	}

	handlers := h.Handlers{
		Products: h.NewProductHandler(productpb.NewProductServiceClient(conns["product"]), cfg.HTTP.RequestTimeout),
		Cart:     h.NewCartHandler(cartpb.NewCartServiceClient(conns["cart"]), cfg.HTTP.RequestTimeout),
		Checkout: h.NewCheckoutHandler(checkoutpb.NewCheckoutServiceClient(conns["checkout"]), cfg.HTTP.CheckoutTimeout),
		Orders:   h.NewOrdersHandler(orderspb.NewOrdersServiceClient(conns["orders"]), cfg.HTTP.RequestTimeout),
		Webhook:  h.NewWebhookHandler(paymentpb.NewPaymentServiceClient(conns["payment"]), cfg.HTTP.RequestTimeout),
	}
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	router := h.NewRouter(handlers, issuer, h.RouterConfig{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		SecureCookies:  cfg.HTTP.SecureCookies,
	}, log.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      otelhttp.NewHandler(router, "api-gateway"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api gateway listening", zap.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down api gateway")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("api gateway stopped")
}
