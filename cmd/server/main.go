package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/storehub/pkg/config"
	"github.com/example/storehub/pkg/discovery"
	"github.com/example/storehub/pkg/models"
	"github.com/example/storehub/pkg/orders"
	"github.com/example/storehub/pkg/repository"
	"github.com/example/storehub/server"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting storehub",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	// Connect to MySQL
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}

	// Auto migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Address{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Brand{},
		&models.Category{},
		&models.Tag{},
		&models.Attribute{},
		&models.Store{},
		&models.Product{},
		&models.Variant{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderReturn{},
		&models.OrderReturnItem{},
	)
	if err != nil {
		logger.Fatal("Failed to migrate", zap.Error(err))
	}

	// Redis
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	defer redisRepo.Close()

	ctx := context.Background()
	if err := redisRepo.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	// MongoDB audit trail
	var mongoRepo *repository.MongoRepository
	mongoRepo, err = repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Warn("MongoDB connection failed, audit logging disabled", zap.Error(err))
		mongoRepo = nil
	}

	orderSvc := orders.NewService(db, redisRepo, mongoRepo, logger, cfg.Orders.DeliveryOffsetDays)

	srv := server.New(cfg, logger, db, redisRepo, orderSvc)
	srv.SetupRoutes()

	// Connect to etcd for service registration
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service registration", zap.Error(err))
		sd = nil
	}

	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if sd != nil {
		if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		} else {
			logger.Info("Service registered in etcd",
				zap.String("name", cfg.Server.Name),
				zap.String("address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)))
		}
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	if sd != nil {
		if err := sd.Deregister(ctx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}

	if mongoRepo != nil {
		if err := mongoRepo.Close(ctx); err != nil {
			logger.Error("Failed to close MongoDB connection", zap.Error(err))
		}
	}

	logger.Info("Service stopped")
}
