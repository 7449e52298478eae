package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/KDL-umass/Toybox/pkg/adapters/redis"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
	contract "github.com/KDL-umass/Toybox/pkg/ports/tests"
	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLocker_Contract(t *testing.T) {
	_, client := setup(t)
	contract.LockerContractTest(t, redis.NewLocker(client, "test:"))
}

func TestLocker_KeyLifecycle(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "engine", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:engine"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:engine"), "Lock key should be removed after unlock")
}

func TestLocker_ExpiredLockIsNotStolenBack(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "engine", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	// Another process takes over the expired lock.
	_, err = locker.Lock(ctx, "engine", 5*time.Second)
	require.NoError(t, err)

	// The first holder's late unlock must not release the new holder.
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("test:lock:engine"))
}

func TestLocker_ContentionTimesOut(t *testing.T) {
	_, client := setup(t)
	locker := redis.NewLocker(client, "test:")

	_, err := locker.Lock(context.Background(), "engine", 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "engine", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestArchive_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunArchiveContract(t, redis.NewFromClient(client))
}

func TestArchive_Max(t *testing.T) {
	mr, client := setup(t)
	a := redis.NewFromClient(client, redis.WithPrefix("t:"), redis.WithMax(2))
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, a.Record(ctx, domain.Commit{
			ID: id, Game: "amidar", CommittedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := a.List(ctx, "amidar", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.False(t, mr.Exists("t:commit:a"))

	_, err = a.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrCommitNotFound)
}
