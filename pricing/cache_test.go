// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestNewCacheRejectsNilSource(t *testing.T) {
	require := require.New(t)

	_, err := NewCache(nil)
	require.ErrorIs(err, ErrZeroPriceOracle)
}

func TestRefreshFetchesPrice(t *testing.T) {
	require := require.New(t)

	source := NewSimplePriceSource(parseEther(555))
	cache, err := NewCache(source)
	require.NoError(err)

	price, err := cache.Refresh(1)
	require.NoError(err)
	require.Equal(parseEther(555), price)
	require.Equal(parseEther(555), cache.Price())
	require.Equal(uint64(1), cache.CachedAtTick())
}

func TestRefreshSameTickReturnsCached(t *testing.T) {
	require := require.New(t)

	source := NewSimplePriceSource(parseEther(555))
	cache, err := NewCache(source)
	require.NoError(err)

	_, err = cache.Refresh(5)
	require.NoError(err)

	// Price moves within the same tick; the cache must not follow.
	source.SetPrice(parseEther(444))
	price, err := cache.Refresh(5)
	require.NoError(err)
	require.Equal(parseEther(555), price)

	// Next tick picks up the new price.
	price, err = cache.Refresh(6)
	require.NoError(err)
	require.Equal(parseEther(444), price)
}

func TestRefreshHonorsCacheDuration(t *testing.T) {
	require := require.New(t)

	source := NewSimplePriceSource(parseEther(555))
	cache, err := NewCache(source)
	require.NoError(err)

	_, err = cache.Refresh(1)
	require.NoError(err)

	cache.SetCacheDuration(10)
	source.SetPrice(parseEther(666))

	// Window still open: cached price survives.
	price, err := cache.Refresh(5)
	require.NoError(err)
	require.Equal(parseEther(555), price)
	require.Equal(uint64(1), cache.CachedAtTick())

	// Window elapsed: refresh goes through.
	price, err = cache.Refresh(11)
	require.NoError(err)
	require.Equal(parseEther(666), price)
	require.Equal(uint64(11), cache.CachedAtTick())
}

func TestRefreshCooldownDoesNotBlockFirstFetch(t *testing.T) {
	require := require.New(t)

	source := NewSimplePriceSource(parseEther(555))
	cache, err := NewCache(source)
	require.NoError(err)

	// A cooldown configured before any refresh must not pin the zero value.
	cache.SetCacheDuration(10)
	price, err := cache.Refresh(1)
	require.NoError(err)
	require.Equal(parseEther(555), price)
}

func TestRefreshPropagatesSourceError(t *testing.T) {
	require := require.New(t)

	source := NewSimplePriceSource(nil)
	cache, err := NewCache(source)
	require.NoError(err)

	_, err = cache.Refresh(1)
	require.ErrorIs(err, ErrNoPrice)
}

func TestManualTicker(t *testing.T) {
	require := require.New(t)

	ticker := NewManualTicker()
	require.Equal(uint64(1), ticker.CurrentTick())

	ticker.Advance(10)
	require.Equal(uint64(11), ticker.CurrentTick())
}
