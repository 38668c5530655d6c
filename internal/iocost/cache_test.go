package iocost_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/lnsdesign/internal/iocost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "costs")
	cache, err := iocost.NewCache(dir, nil)
	require.NoError(t, err)

	_, err = os.Stat(dir)
	require.NoError(t, err)

	_, _, err = cache.Get("k")
	assert.True(t, errors.Is(err, iocost.ErrCacheNotOpen))
	assert.ErrorIs(t, cache.Set("k", 1), iocost.ErrCacheNotOpen)

	require.NoError(t, cache.Open())
	require.NoError(t, cache.Open(), "second open is a no-op")

	_, ok, err := cache.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set("k", 42.5))
	cost, ok, err := cache.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42.5, cost)

	require.NoError(t, cache.Cleanup())
	require.NoError(t, cache.Close(), "closing twice is fine")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCacheIsCleanedOnCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "costs")
	cache, err := iocost.NewCache(dir, nil)
	require.NoError(t, err)
	require.NoError(t, cache.Open())
	require.NoError(t, cache.Set("k", 1))
	require.NoError(t, cache.Close())

	cache, err = iocost.NewCache(dir, nil)
	require.NoError(t, err)
	require.NoError(t, cache.Open())
	defer cache.Close()

	_, ok, err := cache.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
