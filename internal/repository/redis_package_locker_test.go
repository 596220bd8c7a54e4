package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	pkgredis "github.com/prohmpiriya/travel-booking/pkg/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two lockers on one server behave like two service instances
func newMiniLockers(t *testing.T, cfg RedisLockerConfig) (*RedisPackageLocker, *RedisPackageLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	newLocker := func() *RedisPackageLocker {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return NewRedisPackageLocker(pkgredis.NewFromClient(rdb), cfg, nil)
	}
	return newLocker(), newLocker(), mr
}

func TestRedisPackageLocker_Miniredis_ExcludesOtherInstance(t *testing.T) {
	a, b, mr := newMiniLockers(t, RedisLockerConfig{
		TTL:          time.Minute,
		Timeout:      50 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})

	unlock, err := a.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(packageLockPrefix+"pkg-1"))

	_, err = b.Lock(context.Background(), "pkg-1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlockOther, err := b.Lock(context.Background(), "pkg-2")
	require.NoError(t, err)
	unlockOther()

	unlock()
	assert.False(t, mr.Exists(packageLockPrefix+"pkg-1"))

	again, err := b.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)
	again()
}

func TestRedisPackageLocker_Miniredis_ExpiredHolderCannotReleaseNewOwner(t *testing.T) {
	a, b, mr := newMiniLockers(t, RedisLockerConfig{
		TTL:          time.Second,
		Timeout:      50 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	key := packageLockPrefix + "pkg-1"

	staleUnlock, err := a.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(key))

	unlock, err := b.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)
	owner, err := mr.Get(key)
	require.NoError(t, err)

	staleUnlock()
	current, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, owner, current)

	unlock()
	assert.False(t, mr.Exists(key))
}
