package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := VisitorKey("visitor-1", "lorealFavorites")

	_, err := s.Get(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, key, []byte(`[{"id":"1"}]`)))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, s.Put(ctx, key, []byte(`[]`)))
	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	_, err = s.Get(ctx, VisitorKey("visitor-2", "lorealFavorites"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "routine.db")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	exercise(t, s)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), VisitorKey("visitor-1", "lorealFavorites"))
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got), "records survive a reopen")
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	s, err := OpenRedis(context.Background(), srv.Addr(), "routine-test:")
	require.NoError(t, err)
	defer s.Close()
	exercise(t, s)

	raw, err := srv.Get("routine-test:" + VisitorKey("visitor-1", "lorealFavorites"))
	require.NoError(t, err)
	require.Equal(t, `[]`, raw, "records live under the prefix")
}

func TestRedisStoreFromURL(t *testing.T) {
	srv := miniredis.RunT(t)
	s, err := Open(context.Background(), Options{Driver: "redis", RedisAddr: "redis://" + srv.Addr() + "/0"})
	require.NoError(t, err)
	defer s.Close()
	require.IsType(t, &Redis{}, s)
	exercise(t, s)
}

func TestRedisStoreUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()
	_, err := OpenRedis(context.Background(), addr, "")
	require.Error(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "bolt"})
	require.Error(t, err)

	s, err := Open(context.Background(), Options{Driver: "memory"})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, s)
}
