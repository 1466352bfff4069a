// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pricing implements the cached price feed driving elastic balance
// scaling. Prices are 1e18 fixed-point values refreshed at most once per tick,
// with an optional cooldown window to resist intra-window manipulation.
package pricing

import (
	"errors"
	"math/big"
	"sync"
)

var (
	// ErrZeroPriceOracle indicates a cache was configured without a source.
	ErrZeroPriceOracle = errors.New("zero price oracle")
)

// PriceSource provides the external asset price, scaled by 1e18.
// It must not be nil; source failures propagate to the caller unretried.
type PriceSource interface {
	CurrentPrice() (*big.Int, error)
}

// Cache holds the price snapshot used for all elastic conversions until the
// next eligible refresh.
type Cache struct {
	mu sync.RWMutex

	source             PriceSource
	price              *big.Int
	cachedAtTick       uint64
	cacheDurationTicks uint64
}

// NewCache creates a price cache backed by the given source.
func NewCache(source PriceSource) (*Cache, error) {
	if source == nil {
		return nil, ErrZeroPriceOracle
	}
	return &Cache{
		source: source,
		price:  new(big.Int),
	}, nil
}

// Refresh returns the price to use at the given tick, fetching a new value
// from the source only when eligible:
//   - within the tick of the previous refresh the cached value is returned
//     unchanged (same-tick reentry guard),
//   - while the cooldown window is open (and a first refresh has happened)
//     the cached value is returned unchanged,
//   - otherwise the source is queried and the snapshot replaced.
func (c *Cache) Refresh(tick uint64) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tick == c.cachedAtTick {
		return new(big.Int).Set(c.price), nil
	}
	// cachedAtTick 0 means never refreshed: the cooldown cannot apply yet.
	if c.cachedAtTick > 0 && c.cacheDurationTicks > 0 && tick-c.cachedAtTick < c.cacheDurationTicks {
		return new(big.Int).Set(c.price), nil
	}

	price, err := c.source.CurrentPrice()
	if err != nil {
		return nil, err
	}
	c.price = new(big.Int).Set(price)
	c.cachedAtTick = tick
	return new(big.Int).Set(c.price), nil
}

// Price returns the cached price without refreshing.
func (c *Cache) Price() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return new(big.Int).Set(c.price)
}

// CachedAtTick returns the tick of the last refresh.
func (c *Cache) CachedAtTick() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cachedAtTick
}

// CacheDuration returns the cooldown window length in ticks.
func (c *Cache) CacheDuration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cacheDurationTicks
}

// SetCacheDuration changes the cooldown window with immediate effect. The
// tick of the last refresh is not reset.
func (c *Cache) SetCacheDuration(ticks uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheDurationTicks = ticks
}
