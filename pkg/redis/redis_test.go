package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prohmpiriya/travel-booking/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func getTestConfig() *Config {
	r := config.RedisConfig{
		Host:        "localhost",
		Port:        6379,
		PoolSize:    10,
		DialTimeout: time.Second,
	}
	if host := os.Getenv("TEST_REDIS_HOST"); host != "" {
		r.Host = host
	}
	r.Password = os.Getenv("TEST_REDIS_PASSWORD")
	return NewConfig(r, true)
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(config.RedisConfig{Host: "redis.example.com", Port: 6380, DB: 2, PoolSize: 30}, false)

	assert.Equal(t, "redis.example.com:6380", cfg.Addr)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 30, cfg.PoolSize)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.False(t, cfg.EnableTracing)
}

func TestNewClient_NilConfig(t *testing.T) {
	_, err := NewClient(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &Config{
		Addr:          "127.0.0.1:1",
		MaxRetries:    0,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   200 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewClient(ctx, cfg)
	assert.Error(t, err)
}

func TestIsNoScriptError(t *testing.T) {
	assert.False(t, isNoScriptError(nil))
	assert.False(t, isNoScriptError(errors.New("ERR something else")))
	assert.True(t, isNoScriptError(errors.New("NOSCRIPT No matching script. Please use EVAL.")))
}

func TestClient_Integration(t *testing.T) {
	skipIfNoIntegration(t)

	ctx := context.Background()
	client, err := NewClient(ctx, getTestConfig())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.HealthCheck(ctx))

	key := "travel:test:" + time.Now().Format("150405.000000")
	defer client.Del(ctx, key)

	ok, err := client.SetNX(ctx, key, "a", time.Minute).Result()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, key, "b", time.Minute).Result()
	require.NoError(t, err)
	assert.False(t, ok)

	const script = `return redis.call("GET", KEYS[1])`
	for i := 0; i < 2; i++ {
		val, err := client.Eval(ctx, "get", script, []string{key}).Text()
		require.NoError(t, err)
		assert.Equal(t, "a", val)
	}

	_, err = client.Get(ctx, "travel:test:missing").Result()
	assert.ErrorIs(t, err, Nil)
}
