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

	ordersgrpc "github.com/fjod/storefront/orders-service/internal/grpc"
	"github.com/fjod/storefront/orders-service/internal/publisher"
	"github.com/fjod/storefront/orders-service/internal/repository"
	pb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/fjod/storefront/pkg/config"
	"github.com/fjod/storefront/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type Config struct {
	Log      config.LogConfig      `mapstructure:"log"`
	GRPCPort string                `mapstructure:"grpc_port"`
	Postgres config.PostgresConfig `mapstructure:"postgres"`
	Kafka    config.KafkaConfig    `mapstructure:"kafka"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	err := config.Load(os.Getenv("CONFIG_FILE"), map[string]any{
		"grpc_port":         "50055",
		"postgres.host":     "localhost",
		"postgres.port":     5432,
		"postgres.user":     "postgres",
		"postgres.password": "postgres",
		"postgres.dbname":   "storefront",
		"kafka.brokers":     []string{"localhost:9092"},
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

	log.Info("orders-service starting")
	var wg sync.WaitGroup

	repo, err := repository.NewRepository(cfg.Postgres)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()
	log.Info("connected to postgres", zap.String("host", cfg.Postgres.Host))

	if err := repo.RunMigrations(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	poller := publisher.NewOutboxPoller(repo, log.Named("outbox"), cfg.Kafka.Brokers...)
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(pollerCtx)
	}()

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	pb.RegisterOrdersServiceServer(grpcServer, ordersgrpc.NewOrdersHandler(repo, log))

	go func() {
		log.Info("orders service listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down orders service")
	grpcServer.GracefulStop()
	pollerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Info("outbox poller stopped cleanly")
	case <-shutdownCtx.Done():
		log.Warn("outbox poller didn't stop in time")
	}

	if err := poller.Close(); err != nil {
		log.Warn("failed to close kafka writer", zap.Error(err))
	}
	log.Info("orders service stopped")
}
