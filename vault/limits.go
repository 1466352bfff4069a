// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"errors"
	"math/big"
)

var (
	ErrDailyDepositLimit  = errors.New("Daily deposit limit overflow")
	ErrDailyWithdrawLimit = errors.New("Daily withdraw limit overflow")
)

// dailyLimit caps how much may flow through an operation within a rolling
// tick window. A zero duration disables the limit entirely.
type dailyLimit struct {
	durationTicks     uint64
	limit             *big.Int
	countingSinceTick uint64
	accumulated       *big.Int
}

func newDailyLimit() dailyLimit {
	return dailyLimit{
		limit:       new(big.Int),
		accumulated: new(big.Int),
	}
}

// setParams reconfigures the window. Disabling zeroes the counters so a
// later re-enable starts fresh.
func (d *dailyLimit) setParams(durationTicks uint64, limit *big.Int, tick uint64) {
	d.durationTicks = durationTicks
	if durationTicks == 0 {
		d.limit = new(big.Int)
		d.accumulated = new(big.Int)
		d.countingSinceTick = 0
		return
	}
	d.limit = new(big.Int).Set(limit)
	d.accumulated = new(big.Int)
	d.countingSinceTick = tick
}

// fits resets an elapsed window and reports whether amount still fits,
// returning overflowErr when it does not. Nothing is recorded: callers check
// fits before any effect and record only once the operation cannot fail.
func (d *dailyLimit) fits(tick uint64, amount *big.Int, overflowErr error) error {
	if d.durationTicks == 0 {
		return nil
	}
	if tick-d.countingSinceTick >= d.durationTicks {
		d.countingSinceTick = tick
		d.accumulated = new(big.Int)
	}
	if new(big.Int).Add(d.accumulated, amount).Cmp(d.limit) > 0 {
		return overflowErr
	}
	return nil
}

// record adds amount to the window. Callers must have checked fits at the
// same tick.
func (d *dailyLimit) record(amount *big.Int) {
	if d.durationTicks == 0 {
		return
	}
	d.accumulated.Add(d.accumulated, amount)
}

// DailyLimitState is a read-only view of one limit window.
type DailyLimitState struct {
	DurationTicks     uint64   `json:"durationTicks"`
	Limit             *big.Int `json:"limit"`
	CountingSinceTick uint64   `json:"countingSinceTick"`
	Accumulated       *big.Int `json:"accumulated"`
}

func (d *dailyLimit) state() DailyLimitState {
	return DailyLimitState{
		DurationTicks:     d.durationTicks,
		Limit:             new(big.Int).Set(d.limit),
		CountingSinceTick: d.countingSinceTick,
		Accumulated:       new(big.Int).Set(d.accumulated),
	}
}
