package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/transfer-store/store"
	"github.com/stevemurr/transfer-store/transfer"
)

var (
	recA = transfer.Transfer{Amount: 50, Date: "2022-01-22", IBAN: "DE1232", AccountHolder: "a b", Note: "note"}
	recB = transfer.Transfer{Amount: -50, Date: "2022-01-24", IBAN: "DE1232"}
)

type backend interface {
	store.Store
	store.Writer
}

// runStoreTests runs a common test suite against any Store implementation.
// newStore must return an empty store on every call.
func runStoreTests(t *testing.T, newStore func(t *testing.T) backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("Read empty", func(t *testing.T) {
		s := newStore(t)
		all, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Write then Read round trip", func(t *testing.T) {
		s := newStore(t)
		first := transfer.Transfers{
			"a": {Amount: 50, Date: "2022-01-02", IBAN: "1232"},
			"b": {Amount: 50.22, Date: "2022-01-02", IBAN: "1232", AccountHolder: "a b", Note: "note"},
		}
		second := transfer.Transfers{
			"a1": {Amount: 501, Date: "2022-01-02", IBAN: "1232"},
			"b2": {Amount: 501.22, Date: "2022-01-02", IBAN: "1232", AccountHolder: "a b", Note: "note"},
		}
		require.NoError(t, s.Write(ctx, first))
		for n := 0; n < 2; n++ {
			got, err := s.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, first, got)
		}
		require.NoError(t, s.Write(ctx, second))
		got, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})

	t.Run("Add", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, "1a", recA))
		require.NoError(t, s.Add(ctx, "1b", recA))
		got, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, transfer.Transfers{"1a": recA, "1b": recA}, got)
	})

	t.Run("Add duplicate leaves store unchanged", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, "1a", recA))
		err := s.Add(ctx, "1a", recB)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
		var ae *store.AlreadyExistsError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "1a", ae.ID)

		got, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, transfer.Transfers{"1a": recA}, got)
	})

	t.Run("Update", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, "1a", recA))
		require.NoError(t, s.Add(ctx, "1b", recA))
		require.NoError(t, s.Update(ctx, "1a", recB))
		got, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, transfer.Transfers{"1a": recB, "1b": recA}, got)
	})

	t.Run("Update missing leaves store unchanged", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, "1a", recB))
		err := s.Update(ctx, "1b", recB)
		require.ErrorIs(t, err, store.ErrNotFound)
		var nf *store.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "1b", nf.ID)

		got, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, transfer.Transfers{"1a": recB}, got)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, "1a", recA))
		require.NoError(t, s.Add(ctx, "1b", recA))
		require.NoError(t, s.Delete(ctx, "1a"))
		got, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, transfer.Transfers{"1b": recA}, got)
	})

	t.Run("Delete missing is a no-op", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, "1a", recA))
		require.NoError(t, s.Delete(ctx, "nope"))
		got, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, transfer.Transfers{"1a": recA}, got)
	})

	t.Run("Read returns a copy", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, "1a", recA))
		got, err := s.Read(ctx)
		require.NoError(t, err)
		got["1b"] = recB
		again, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Len(t, again, 1)
	})

	t.Run("Concurrent adds of one id", func(t *testing.T) {
		s := newStore(t)
		const workers = 16
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for n := 0; n < workers; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.Add(ctx, "race", recA); err == nil {
					mu.Lock()
					success++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, success)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) backend {
		return store.NewMemoryStore()
	})
}

func TestJSONFileStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) backend {
		s, err := store.NewJSONFileStore(filepath.Join(t.TempDir(), "transfers.json"))
		require.NoError(t, err)
		return s
	})
}

func TestSqliteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) backend {
		s, err := store.NewSqliteStore(filepath.Join(t.TempDir(), "transfers.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	runStoreTests(t, func(t *testing.T) backend {
		client := redis.NewClient(&redis.Options{Addr: addr})
		key := "transfers-test:" + t.Name()
		require.NoError(t, client.Del(context.Background(), key).Err())
		t.Cleanup(func() {
			client.Del(context.Background(), key)
			client.Close()
		})
		return store.NewRedisStore(client, key)
	})
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := store.New(store.Options{Backend: "postgres"})
	assert.Error(t, err)
}

func TestNewDefaultsToJSON(t *testing.T) {
	s, err := store.New(store.Options{FilePath: filepath.Join(t.TempDir(), "t.json")})
	require.NoError(t, err)
	assert.IsType(t, &store.JSONFileStore{}, s)
}
