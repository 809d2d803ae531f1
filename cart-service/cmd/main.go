package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	c "github.com/fjod/storefront/cart-service/internal/cache"
	"github.com/fjod/storefront/cart-service/internal/domain"
	cartgrpc "github.com/fjod/storefront/cart-service/internal/grpc"
	"github.com/fjod/storefront/cart-service/internal/poller"
	"github.com/fjod/storefront/cart-service/internal/repository"
	s "github.com/fjod/storefront/cart-service/internal/service"
	pb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	"github.com/fjod/storefront/pkg/config"
	"github.com/fjod/storefront/pkg/logger"
	productpb "github.com/fjod/storefront/product-service/pkg/productpb"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type Config struct {
	Log            config.LogConfig        `mapstructure:"log"`
	GRPCPort       string                  `mapstructure:"grpc_port"`
	ProductService config.GRPCClientConfig `mapstructure:"product_service"`
	Mongo          config.MongoConfig      `mapstructure:"mongo"`
	Redis          config.RedisConfig      `mapstructure:"redis"`
	Kafka          config.KafkaConfig      `mapstructure:"kafka"`
	Pricing        PricingConfig           `mapstructure:"pricing"`
}

type PricingConfig struct {
	FreeShippingThreshold string `mapstructure:"free_shipping_threshold"`
	FlatShippingFee       string `mapstructure:"flat_shipping_fee"`
}

func (p PricingConfig) toDomain() (domain.Pricing, error) {
	threshold, err := decimal.NewFromString(p.FreeShippingThreshold)
	if err != nil {
		return domain.Pricing{}, fmt.Errorf("free_shipping_threshold: %w", err)
	}
	fee, err := decimal.NewFromString(p.FlatShippingFee)
	if err != nil {
		return domain.Pricing{}, fmt.Errorf("flat_shipping_fee: %w", err)
	}
	return domain.Pricing{FreeShippingThreshold: threshold, FlatShippingFee: fee}, nil
}

func loadConfig() (*Config, error) {
	var cfg Config
	err := config.Load(os.Getenv("CONFIG_FILE"), map[string]any{
		"grpc_port":                       "50052",
		"product_service.addr":            "localhost:50051",
		"mongo.uri":                       "mongodb://localhost:27017",
		"mongo.database":                  "cartdb",
		"mongo.app_name":                  "cart-service",
		"mongo.max_pool_size":             100,
		"mongo.min_pool_size":             10,
		"mongo.connect_timeout":           "10s",
		"mongo.server_selection_timeout":  "5s",
		"redis.addr":                      "localhost:6379",
		"redis.password":                  "",
		"redis.db":                        0,
		"kafka.brokers":                   []string{"localhost:9092"},
		"kafka.group_id":                  "cart-service-consumer",
		"pricing.free_shipping_threshold": "150",
		"pricing.flat_shipping_fee":       "10",
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

	pricing, err := cfg.Pricing.toDomain()
	if err != nil {
		log.Fatal("invalid pricing config", zap.Error(err))
	}

	ctx := context.Background()
	mongoDB, err := repository.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	repo := repository.NewMongoRepository(mongoDB)
	if err := repo.CreateIndexes(ctx); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	productConn, err := grpc.NewClient(
		cfg.ProductService.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		log.Fatal("failed to connect to product service", zap.Error(err))
	}
	defer productConn.Close()
	productClient := productpb.NewProductServiceClient(productConn)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}

	cache := c.NewRedisCache(redisClient)
	service := s.NewCartService(repo, cache, pricing, log.Named("cart"))
	cartServer := cartgrpc.NewCartServiceServer(service, productClient, log)

	var wg sync.WaitGroup
	orderEvents := poller.NewPoller(service, log.Named("poller"), cfg.Kafka.GroupID, cfg.Kafka.Brokers...)
	pollerCtx, pollerCancel := context.WithCancel(ctx)
	wg.Add(1)
	go func() {
		defer wg.Done()
		orderEvents.Run(pollerCtx)
	}()

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	pb.RegisterCartServiceServer(grpcServer, cartServer)

	go func() {
		log.Info("cart service listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down cart service")
	grpcServer.GracefulStop()
	pollerCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("poller didn't stop in time")
	}
	orderEvents.Close()

	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoDB.Client().Disconnect(disconnectCtx); err != nil {
		log.Warn("mongo disconnect failed", zap.Error(err))
	}
	log.Info("cart service stopped")
}
