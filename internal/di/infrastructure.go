package di

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/travel-booking/internal/repository"
	"github.com/prohmpiriya/travel-booking/internal/service"
	"github.com/prohmpiriya/travel-booking/migrations"
	"github.com/prohmpiriya/travel-booking/pkg/config"
	"github.com/prohmpiriya/travel-booking/pkg/database"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	pkgredis "github.com/prohmpiriya/travel-booking/pkg/redis"
	"go.uber.org/zap"
)

// NewPackageRepository opens the configured package store.
// The returned database is nil for the memory driver.
func NewPackageRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.PackageRepository, *database.PostgresDB, error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		log.Info("using in-memory package storage")
		return repository.NewMemoryPackageRepository(), nil, nil
	}

	dbCfg := database.NewPostgresConfig(cfg.Database, cfg.OTel.Enabled)
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if _, err := database.Migrate(db.Pool(), cfg.Database.DBName, migrations.FS, ".", log); err != nil {
		db.Close()
		return nil, nil, err
	}
	repo := repository.NewPostgresPackageRepository(db)

	log.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
		zap.Int32("max_conns", dbCfg.MaxConns),
	)
	return repo, db, nil
}

// NewRedis connects to Redis when the configuration needs it, otherwise it returns nil
func NewRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pkgredis.Client, error) {
	if !cfg.UsesRedis() {
		return nil, nil
	}

	client, err := pkgredis.NewClient(ctx, pkgredis.NewConfig(cfg.Redis, cfg.OTel.Enabled))
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Info("redis connected", zap.String("addr", cfg.Redis.Addr()), zap.Int("pool_size", cfg.Redis.PoolSize))
	return client, nil
}

// NewPackageLocker picks the lock used to serialise package mutations
func NewPackageLocker(cfg *config.Config, rdb *pkgredis.Client, log *logger.Logger) repository.PackageLocker {
	if cfg.Storage.LockDriver == config.LockRedis && rdb != nil {
		return repository.NewRedisPackageLocker(rdb, repository.RedisLockerConfig{
			TTL:     cfg.Storage.LockTTL,
			Timeout: cfg.Storage.LockTimeout,
		}, log)
	}
	return repository.NewLocalPackageLockerWithTimeout(cfg.Storage.LockTimeout)
}

// NewEventPublisher connects to Kafka when enabled and falls back to a no-op publisher
func NewEventPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger) service.EventPublisher {
	if !cfg.Kafka.Enabled {
		return service.NewNoOpEventPublisher()
	}

	publisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	}, log)
	if err != nil {
		log.Warn("kafka connection failed, using no-op publisher", zap.Error(err))
		return service.NewNoOpEventPublisher()
	}

	log.Info("kafka event publisher connected", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	return publisher
}
