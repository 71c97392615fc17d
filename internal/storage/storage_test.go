package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashprao/chatbox/pkg/logger"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func testLogger() *logger.Logger {
	return logger.NewLoggerWithWriter(slog.LevelDebug, io.Discard)
}

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	factory := NewDefaultStorageFactory(testLogger())

	out := map[string]Storage{}
	for _, typ := range factory.SupportedTypes() {
		s, err := factory.CreateStorage(StorageConfig{Type: typ, BasePath: t.TempDir()})
		require.NoError(t, err, typ)
		t.Cleanup(func() { s.Close() })
		out[typ] = s
	}
	return out
}

func TestStorage_ReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var got record
			found, err := s.Read(ctx, "settings", &got)
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.Write(ctx, "settings", record{Name: "a", Count: 1}))
			require.NoError(t, s.Write(ctx, "settings", record{Name: "b", Count: 2}))

			found, err = s.Read(ctx, "settings", &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, record{Name: "b", Count: 2}, got)

			require.NoError(t, s.Write(ctx, "configs", map[string]string{"uuid": "x"}))
			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"configs", "settings"}, keys)

			require.NoError(t, s.Delete(ctx, "settings"))
			require.NoError(t, s.Delete(ctx, "settings"), "deleting a missing key")
			found, err = s.Read(ctx, "settings", &got)
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.Ping(ctx))
		})
	}
}

func TestStorage_InvalidKey(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "..", "a/b", `a\b`} {
				assert.ErrorIs(t, s.Write(ctx, key, 1), ErrInvalidKey, key)
				_, err := s.Read(ctx, key, new(int))
				assert.ErrorIs(t, err, ErrInvalidKey, key)
			}
		})
	}
}

func TestStorage_Closed(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Close())
			require.NoError(t, s.Close(), "close is idempotent")

			assert.ErrorIs(t, s.Write(ctx, "k", 1), ErrClosed)
			_, err := s.Read(ctx, "k", new(int))
			assert.ErrorIs(t, err, ErrClosed)
			_, err = s.Keys(ctx)
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, s.Ping(ctx), ErrClosed)
		})
	}
}

func TestStorage_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, s.Write(ctx, "chat-sessions", record{Count: i}))
				}(i)
			}
			wg.Wait()

			var got record
			found, err := s.Read(ctx, "chat-sessions", &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.GreaterOrEqual(t, got.Count, 0)
		})
	}
}

func TestFileStorage_CorruptValue(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir, testLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{not json"), 0644))

	var got record
	found, err := s.Read(context.Background(), "settings", &got)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestFileStorage_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir, testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), "settings", record{Name: "x"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings.json", entries[0].Name())
}

func TestSQLiteStorage_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewSQLiteStorage(dir, testLogger())
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, "configs", map[string]string{"uuid": "abc"}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStorage(dir, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	var got map[string]string
	found, err := reopened.Read(ctx, "configs", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", got["uuid"])
}

func TestFactory_Unsupported(t *testing.T) {
	_, err := NewDefaultStorageFactory(testLogger()).CreateStorage(StorageConfig{Type: "redis"})
	assert.Error(t, err)
}
