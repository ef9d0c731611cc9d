package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(client), mr
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		TransactionID string
		Amount        int64
	}

	err := c.Set(ctx, "key-1", payload{TransactionID: "txn_1", Amount: 3000}, time.Minute)
	require.NoError(t, err)

	var got payload
	require.NoError(t, c.Get(ctx, "key-1", &got))
	assert.Equal(t, "txn_1", got.TransactionID)
	assert.Equal(t, int64(3000), got.Amount)
}

func TestCache_MissLeavesDataUntouched(t *testing.T) {
	c, _ := newTestCache(t)

	var got []byte
	err := c.Get(context.Background(), "absent", &got)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key-1", []byte("value"), time.Minute))
	require.NoError(t, c.Delete(ctx, "key-1"))

	var got []byte
	require.NoError(t, c.Get(ctx, "key-1", &got))
	assert.Nil(t, got)
}
