// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"errors"
	"math/big"
	"sync"
)

// ErrNoPrice indicates the source has no price set.
var ErrNoPrice = errors.New("no price available")

// SimplePriceSource is an in-memory price source.
type SimplePriceSource struct {
	mu    sync.RWMutex
	price *big.Int
}

// NewSimplePriceSource creates a source with an optional initial price.
func NewSimplePriceSource(price *big.Int) *SimplePriceSource {
	s := &SimplePriceSource{}
	if price != nil {
		s.price = new(big.Int).Set(price)
	}
	return s
}

// SetPrice sets the price returned by CurrentPrice.
func (s *SimplePriceSource) SetPrice(price *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = new(big.Int).Set(price)
}

// CurrentPrice returns the configured price.
func (s *SimplePriceSource) CurrentPrice() (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.price == nil {
		return nil, ErrNoPrice
	}
	return new(big.Int).Set(s.price), nil
}
