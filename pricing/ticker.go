// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import "sync"

// TickSource supplies the monotonically non-decreasing counter that drives
// cache eligibility and per-window limits. Ticks are externally supplied
// (block height rather than wall clock) so behavior is exactly replayable.
type TickSource interface {
	CurrentTick() uint64
}

// ManualTicker is a TickSource advanced explicitly by the host. The counter
// starts at 1: tick 0 is reserved as the "never refreshed" sentinel.
type ManualTicker struct {
	mu   sync.RWMutex
	tick uint64
}

// NewManualTicker creates a ticker positioned at tick 1.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{tick: 1}
}

// CurrentTick returns the current tick.
func (t *ManualTicker) CurrentTick() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tick
}

// Advance moves the ticker forward by n ticks.
func (t *ManualTicker) Advance(n uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick += n
}
