// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines configuration types for the elastic vault system.
package config

// Config contains configuration parameters for the elastic vault system.
type Config struct {
	// WithdrawFee is the withdrawal fee in parts per million (10000 = 1%).
	// Capped at 500000 (50%) when applied.
	WithdrawFee uint64 `json:"withdrawFee"`

	// PriceCacheDurationTicks is the cooldown window between price cache
	// refreshes. Zero refreshes at most once per tick.
	PriceCacheDurationTicks uint64 `json:"priceCacheDurationTicks"`

	// Daily limit windows. A zero duration disables the window; limits are
	// decimal strings of 1e18-scaled amounts.

	DailyDepositDurationTicks uint64 `json:"dailyDepositDurationTicks"`
	// DailyDepositLimit caps minted shares per deposit window.
	DailyDepositLimit string `json:"dailyDepositLimit"`

	DailyWithdrawDurationTicks uint64 `json:"dailyWithdrawDurationTicks"`
	// DailyWithdrawLimit caps delivered assets per withdraw window.
	DailyWithdrawLimit string `json:"dailyWithdrawLimit"`

	// PersistenceEnabled snapshots the ledger to the database after every
	// accepted operation.
	PersistenceEnabled bool `json:"persistenceEnabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		WithdrawFee:             0,
		PriceCacheDurationTicks: 0,

		DailyDepositDurationTicks:  0,
		DailyDepositLimit:          "0",
		DailyWithdrawDurationTicks: 0,
		DailyWithdrawLimit:         "0",

		PersistenceEnabled: true,
	}
}
