package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/pkg/cache"
)

func TestFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("entries survive a new instance", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		first, err := cache.NewFile[page](dir, nil, cache.WithCleanupInterval(0))
		require.NoError(t, err)
		require.NoError(t, first.Set(ctx, "about", page{Title: "About"}, time.Minute))
		require.NoError(t, first.Close())

		second, err := cache.NewFile[page](dir, nil, cache.WithCleanupInterval(0))
		require.NoError(t, err)
		defer second.Close()

		got, err := second.Get(ctx, "about")
		require.NoError(t, err)
		require.Equal(t, "About", got.Title)
	})

	t.Run("any key is a safe file name", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		c, err := cache.NewFile[string](dir, nil, cache.WithCleanupInterval(0))
		require.NoError(t, err)
		defer c.Close()

		key := "../../etc/passwd?x=1"
		require.NoError(t, c.Set(ctx, key, "v", time.Minute))

		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "v", got)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, ".cache", filepath.Ext(entries[0].Name()))
	})

	t.Run("creates nested directory", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "a", "b")
		c, err := cache.NewFile[int](dir, nil, cache.WithCleanupInterval(0))
		require.NoError(t, err)
		defer c.Close()

		require.DirExists(t, dir)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		c, err := cache.NewFile[int](dir, nil, cache.WithCleanupInterval(0))
		require.NoError(t, err)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "n", 1, time.Minute))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		path := filepath.Join(dir, entries[0].Name())
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err = c.Get(ctx, "n")
		require.ErrorIs(t, err, cache.ErrUnmarshal)

		sweeper, err := cache.NewFile[int](dir, nil, cache.WithCleanupInterval(10*time.Millisecond))
		require.NoError(t, err)
		defer sweeper.Close()

		require.Eventually(t, func() bool {
			_, err := os.Stat(path)
			return os.IsNotExist(err)
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("janitor removes expired files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		c, err := cache.NewFile[int](dir, nil, cache.WithCleanupInterval(10*time.Millisecond))
		require.NoError(t, err)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "short", 1, 20*time.Millisecond))
		require.NoError(t, c.Set(ctx, "long", 2, time.Minute))

		require.Eventually(t, func() bool {
			entries, err := os.ReadDir(dir)
			return err == nil && len(entries) == 1
		}, time.Second, 10*time.Millisecond)

		v, err := c.Get(ctx, "long")
		require.NoError(t, err)
		require.Equal(t, 2, v)
	})

	t.Run("file mode", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		c, err := cache.NewFile[int](dir, nil, cache.WithCleanupInterval(0), cache.WithFileMode(0o600))
		require.NoError(t, err)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "secret", 1, time.Minute))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		info, err := entries[0].Info()
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("works with GetOrSet", func(t *testing.T) {
		t.Parallel()
		c, err := cache.NewFile[page](t.TempDir(), nil, cache.WithCleanupInterval(0))
		require.NoError(t, err)
		defer c.Close()

		calls := 0
		load := func(context.Context) (page, time.Duration, error) {
			calls++
			return page{Title: "Docs"}, time.Minute, nil
		}
		for range 3 {
			got, err := cache.GetOrSet(ctx, c, "docs", load)
			require.NoError(t, err)
			require.Equal(t, "Docs", got.Title)
		}
		require.Equal(t, 1, calls)
	})
}
