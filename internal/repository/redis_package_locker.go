package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	packageLockPrefix = "travel:lock:package:"
	releaseScriptName = "package_lock_release"
	// deletes the key only while it still holds our token
	releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`
)

// LockClient is the subset of pkg/redis.Client used for locking
type LockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, name, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLockerConfig configures RedisPackageLocker
type RedisLockerConfig struct {
	// TTL bounds how long a crashed holder can block others
	TTL time.Duration
	// Timeout bounds how long Lock waits when ctx has no earlier deadline
	Timeout time.Duration
	// PollInterval is the wait between acquisition attempts
	PollInterval time.Duration
}

// RedisPackageLocker serialises package mutations across service instances
type RedisPackageLocker struct {
	client LockClient
	config RedisLockerConfig
	log    *logger.Logger
}

// NewRedisPackageLocker creates a new RedisPackageLocker
func NewRedisPackageLocker(client LockClient, cfg RedisLockerConfig, log *logger.Logger) *RedisPackageLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 25 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisPackageLocker{client: client, config: cfg, log: log}
}

// Lock polls SET NX PX until the lock is taken or the wait times out
func (l *RedisPackageLocker) Lock(ctx context.Context, packageID string) (func(), error) {
	key := packageLockPrefix + packageID
	token := uuid.NewString()

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	ticker := time.NewTicker(l.config.PollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.config.TTL).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("failed to acquire package lock: %w", err)
		}
		if ok {
			return l.unlocker(key, token), nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(parent.Err(), context.Canceled) {
				return nil, parent.Err()
			}
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}

func (l *RedisPackageLocker) unlocker(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := l.client.Eval(ctx, releaseScriptName, releaseScript, []string{key}, token).Err(); err != nil {
				l.log.Warn("failed to release package lock", zap.String("key", key), zap.Error(err))
			}
		})
	}
}
