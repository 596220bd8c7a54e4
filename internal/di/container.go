package di

import (
	"github.com/prohmpiriya/travel-booking/internal/handler"
	"github.com/prohmpiriya/travel-booking/internal/repository"
	"github.com/prohmpiriya/travel-booking/internal/service"
	"github.com/prohmpiriya/travel-booking/pkg/config"
	"github.com/prohmpiriya/travel-booking/pkg/database"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	pkgredis "github.com/prohmpiriya/travel-booking/pkg/redis"
	"go.uber.org/zap"
)

// Container holds all dependencies for the travel service
type Container struct {
	Config *config.Config
	Log    *logger.Logger

	// Infrastructure
	DB    *database.PostgresDB
	Redis *pkgredis.Client

	// Repositories
	PackageRepo repository.PackageRepository
	Locker      repository.PackageLocker

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	TravelService service.TravelService

	// Handlers
	HealthHandler *handler.HealthHandler
	TravelHandler *handler.TravelHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config         *config.Config
	Log            *logger.Logger
	DB             *database.PostgresDB
	Redis          *pkgredis.Client
	PackageRepo    repository.PackageRepository
	Locker         repository.PackageLocker
	EventPublisher service.EventPublisher
	ServiceConfig  *service.TravelServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		Config:         cfg.Config,
		Log:            cfg.Log,
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		PackageRepo:    cfg.PackageRepo,
		Locker:         cfg.Locker,
		EventPublisher: cfg.EventPublisher,
	}
	if c.Log == nil {
		c.Log = logger.Nop()
	}
	if c.PackageRepo == nil {
		c.PackageRepo = repository.NewMemoryPackageRepository()
	}
	if c.Locker == nil {
		c.Locker = repository.NewLocalPackageLocker()
	}
	if c.EventPublisher == nil {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	serviceConfig := cfg.ServiceConfig
	if serviceConfig == nil {
		serviceConfig = &service.TravelServiceConfig{}
	}
	if serviceConfig.Logger == nil {
		serviceConfig.Logger = c.Log
	}

	// Initialize services
	c.TravelService = service.NewTravelService(
		c.PackageRepo,
		c.Locker,
		c.EventPublisher,
		serviceConfig,
	)

	// Initialize handlers
	checks := map[string]handler.HealthChecker{"database": nil, "redis": nil}
	if c.DB != nil {
		checks["database"] = c.DB
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(checks)
	c.TravelHandler = handler.NewTravelHandler(c.TravelService, c.Log)

	return c
}

// Close releases the publisher and infrastructure connections
func (c *Container) Close() {
	if err := c.EventPublisher.Close(); err != nil {
		c.Log.Warn("failed to close event publisher", zap.Error(err))
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("failed to close redis", zap.Error(err))
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
