package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fjod/storefront/pkg/config"
	"github.com/fjod/storefront/pkg/logger"
	grpcHandler "github.com/fjod/storefront/product-service/internal/grpc"
	"github.com/fjod/storefront/product-service/internal/repository"
	pb "github.com/fjod/storefront/product-service/pkg/productpb"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type Config struct {
	Log    config.LogConfig `mapstructure:"log"`
	GRPC   GRPCConfig       `mapstructure:"grpc"`
	DBPath string           `mapstructure:"db_path"`
}

type GRPCConfig struct {
	Port string `mapstructure:"port"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	err := config.Load(os.Getenv("CONFIG_FILE"), map[string]any{
		"grpc.port": "50051",
		"db_path":   "./products.db",
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

	repo, err := repository.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open catalog", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("migrations completed")

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	pb.RegisterProductServiceServer(grpcServer, grpcHandler.NewProductServiceServer(repo))

	listener, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}

	go func() {
		log.Info("product service listening", zap.String("port", cfg.GRPC.Port))
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down product service")
	grpcServer.GracefulStop()
	log.Info("product service stopped")
}
