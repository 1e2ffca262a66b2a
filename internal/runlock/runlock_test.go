package runlock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// fakeRedis keeps the lock keys in a map and answers with pre-built command
// results, matching the SetNX/Get/Del semantics the lock relies on.
type fakeRedis struct {
	values map[string]string
	dels   []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string)}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if _, held := f.values[key]; held {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.values, k)
		f.dels = append(f.dels, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestAcquireAndRelease(t *testing.T) {
	client := newFakeRedis()
	lock := New(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx, models.SupplierLM))
	assert.Contains(t, client.values, "catalog-scraper:run:LM")

	require.NoError(t, lock.Release(ctx, models.SupplierLM))
	assert.NotContains(t, client.values, "catalog-scraper:run:LM")
}

func TestAcquireHeldBySomeoneElse(t *testing.T) {
	client := newFakeRedis()
	first := New(client, time.Minute)
	second := New(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, first.Acquire(ctx, models.SupplierLM))

	err := second.Acquire(ctx, models.SupplierLM)
	assert.ErrorIs(t, err, ErrHeld)
}

func TestAcquireDifferentSuppliersIndependent(t *testing.T) {
	client := newFakeRedis()
	lock := New(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx, models.SupplierLM))
	require.NoError(t, lock.Acquire(ctx, models.SupplierFender))
}

func TestReleaseLeavesForeignLock(t *testing.T) {
	client := newFakeRedis()
	owner := New(client, time.Minute)
	other := New(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, owner.Acquire(ctx, models.SupplierLM))

	// A different process releasing must not drop the owner's lock.
	require.NoError(t, other.Release(ctx, models.SupplierLM))
	assert.Contains(t, client.values, "catalog-scraper:run:LM")
	assert.Empty(t, client.dels)
}

func TestReleaseExpiredLockIsNoop(t *testing.T) {
	client := newFakeRedis()
	lock := New(client, time.Minute)

	// Nothing held (e.g. TTL already expired): Release succeeds quietly.
	require.NoError(t, lock.Release(context.Background(), models.SupplierLM))
}
