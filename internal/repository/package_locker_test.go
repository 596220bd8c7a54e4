package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLocalPackageLocker_SerialisesSamePackage(t *testing.T) {
	locker := NewLocalPackageLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "pkg-1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, locker.locks, "released locks are dropped")
}

func TestLocalPackageLocker_DifferentPackagesDoNotBlock(t *testing.T) {
	locker := NewLocalPackageLocker()
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "pkg-a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	unlockB, err := locker.Lock(ctx, "pkg-b")
	require.NoError(t, err)
	unlockB()
}

func TestLocalPackageLocker_TimesOut(t *testing.T) {
	locker := NewLocalPackageLocker()

	unlock, err := locker.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "pkg-1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock()

	again, err := locker.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)
	again()
}

func TestLocalPackageLocker_OwnTimeoutWithoutDeadline(t *testing.T) {
	locker := NewLocalPackageLockerWithTimeout(20 * time.Millisecond)

	unlock, err := locker.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)
	defer unlock()

	start := time.Now()
	_, err = locker.Lock(context.Background(), "pkg-1")
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLocalPackageLocker_CallerCancelIsNotTimeout(t *testing.T) {
	locker := NewLocalPackageLocker()

	unlock, err := locker.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err = locker.Lock(ctx, "pkg-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}

type mockLockClient struct {
	mock.Mock
}

func (m *mockLockClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(key, expiration)
	return redis.NewBoolResult(args.Bool(0), args.Error(1))
}

func (m *mockLockClient) Eval(ctx context.Context, name, script string, keys []string, args ...interface{}) *redis.Cmd {
	called := m.Called(name, keys, args)
	return redis.NewCmdResult(called.Get(0), called.Error(1))
}

func TestRedisPackageLocker_AcquireAndRelease(t *testing.T) {
	client := new(mockLockClient)
	locker := NewRedisPackageLocker(client, RedisLockerConfig{TTL: time.Second}, nil)
	key := packageLockPrefix + "pkg-1"

	client.On("SetNX", key, time.Second).Return(false, nil).Once()
	client.On("SetNX", key, time.Second).Return(true, nil).Once()
	client.On("Eval", releaseScriptName, []string{key}, mock.Anything).Return(int64(1), nil).Once()

	unlock, err := locker.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)
	unlock()
	unlock()

	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "Eval", 1)
}

func TestRedisPackageLocker_ReleaseUsesAcquireToken(t *testing.T) {
	client := new(mockLockClient)
	locker := NewRedisPackageLocker(client, RedisLockerConfig{}, nil)
	key := packageLockPrefix + "pkg-1"

	var token interface{}
	client.On("SetNX", key, 10*time.Second).Return(true, nil).Once()
	client.On("Eval", releaseScriptName, []string{key}, mock.Anything).
		Run(func(args mock.Arguments) { token = args.Get(2).([]interface{})[0] }).
		Return(int64(1), nil)

	unlock, err := locker.Lock(context.Background(), "pkg-1")
	require.NoError(t, err)
	unlock()

	s, ok := token.(string)
	require.True(t, ok)
	assert.Len(t, s, 36)
}

func TestRedisPackageLocker_TimesOut(t *testing.T) {
	client := new(mockLockClient)
	locker := NewRedisPackageLocker(client, RedisLockerConfig{
		TTL:          time.Second,
		Timeout:      30 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	}, nil)

	client.On("SetNX", mock.Anything, mock.Anything).Return(false, nil)

	_, err := locker.Lock(context.Background(), "pkg-1")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRedisPackageLocker_RedisError(t *testing.T) {
	client := new(mockLockClient)
	locker := NewRedisPackageLocker(client, RedisLockerConfig{}, nil)

	client.On("SetNX", mock.Anything, mock.Anything).Return(false, errors.New("connection refused"))

	_, err := locker.Lock(context.Background(), "pkg-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}

func TestRedisPackageLocker_CallerCancelIsNotTimeout(t *testing.T) {
	client := new(mockLockClient)
	locker := NewRedisPackageLocker(client, RedisLockerConfig{
		TTL:          time.Second,
		Timeout:      time.Minute,
		PollInterval: 5 * time.Millisecond,
	}, nil)

	client.On("SetNX", mock.Anything, mock.Anything).Return(false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	_, err := locker.Lock(ctx, "pkg-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}
