package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisManagerContract(t *testing.T) {
	_, client := newTestRedis(t)
	runManagerContract(t, NewRedisManagerFromClient(client))
}

func TestRedisManagerTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	mgr := NewRedisManagerFromClient(client, WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, mgr.Set(ctx, 7, StateAwaitingTemplateText))
	require.True(t, InProgress(ctx, mgr, 7))

	mr.FastForward(2 * time.Minute)
	require.False(t, InProgress(ctx, mgr, 7), "session should expire after TTL")
}

func TestRedisManagerPrefix(t *testing.T) {
	mr, client := newTestRedis(t)
	mgr := NewRedisManagerFromClient(client, WithPrefix("bot:conv:"))
	ctx := context.Background()

	require.NoError(t, mgr.Set(ctx, 9, StateAwaitingTemplateText))
	require.True(t, mr.Exists("bot:conv:9"))
}
