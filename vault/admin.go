// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"math/big"

	"github.com/luxfi/ids"
)

// ChangeWithdrawFee sets the withdrawal fee rate in FeeDenominator parts.
func (v *Vault) ChangeWithdrawFee(caller ids.ShortID, fee uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.access.IsAdmin(caller) {
		return ErrNotAdmin
	}
	if fee > MaxFee {
		return ErrFeeTooBig
	}
	v.feeRate = fee
	v.log.Info("withdraw fee changed", "fee", fee)
	return nil
}

// ChangeFeeDistributor sets the fee sink. The zero address disables the fee.
func (v *Vault) ChangeFeeDistributor(caller, distributor ids.ShortID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.access.IsAdmin(caller) {
		return ErrNotAdmin
	}
	v.feeDistributor = distributor
	v.log.Info("fee distributor changed", "distributor", distributor)
	return nil
}

// ChangeDailyDepositParams reconfigures the deposit window. The limit counts
// minted shares. durationTicks of zero disables the window.
func (v *Vault) ChangeDailyDepositParams(caller ids.ShortID, durationTicks uint64, limit *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.access.IsAdmin(caller) {
		return ErrNotAdmin
	}
	v.dailyDeposit.setParams(durationTicks, limit, v.ticker.CurrentTick())
	v.log.Info("daily deposit params changed", "durationTicks", durationTicks, "limit", limit)
	return nil
}

// ChangeDailyWithdrawParams reconfigures the withdraw window. The limit
// counts delivered assets.
func (v *Vault) ChangeDailyWithdrawParams(caller ids.ShortID, durationTicks uint64, limit *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.access.IsAdmin(caller) {
		return ErrNotAdmin
	}
	v.dailyWithdraw.setParams(durationTicks, limit, v.ticker.CurrentTick())
	v.log.Info("daily withdraw params changed", "durationTicks", durationTicks, "limit", limit)
	return nil
}

// DailyDepositState returns the deposit window counters.
func (v *Vault) DailyDepositState() DailyLimitState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dailyDeposit.state()
}

// DailyWithdrawState returns the withdraw window counters.
func (v *Vault) DailyWithdrawState() DailyLimitState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dailyWithdraw.state()
}

// SetRedistributor installs the redistribution sink for freed rigid backing.
func (v *Vault) SetRedistributor(caller ids.ShortID, r Redistributor) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.access.IsAdmin(caller) {
		return ErrNotAdmin
	}
	if r == nil || r.Address() == ids.ShortEmpty {
		return ErrZeroRedistributor
	}
	v.redistributor = r
	v.log.Info("redistributor changed", "redistributor", r.Address())
	return nil
}

// SetCacheDuration changes the price cache cooldown window.
func (v *Vault) SetCacheDuration(caller ids.ShortID, ticks uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.access.IsAdmin(caller) {
		return ErrNotAdmin
	}
	v.prices.SetCacheDuration(ticks)
	v.log.Info("cache duration changed", "ticks", ticks)
	return nil
}

// CacheAssetPrice refreshes the price cache at the current tick. Open to
// anyone: a refresh can only move the cache toward the oracle.
func (v *Vault) CacheAssetPrice() error {
	if _, err := v.prices.Refresh(v.ticker.CurrentTick()); err != nil {
		return err
	}
	v.metrics.IncPriceRefreshes()
	return nil
}

// rigid partition surface

// AddRigidAddress freezes an account's share value at the current price.
func (v *Vault) AddRigidAddress(caller, addr ids.ShortID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.access.IsAdmin(caller) {
		return ErrNotAdmin
	}
	if err := v.ledger.AddRigidAddress(addr); err != nil {
		return err
	}
	v.log.Info("rigid address added", "addr", addr)
	return nil
}

// RemoveRigidAddress converts a rigid account back to elastic.
func (v *Vault) RemoveRigidAddress(caller, addr ids.ShortID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.access.IsAdmin(caller) {
		return ErrNotAdmin
	}
	if err := v.ledger.RemoveRigidAddress(addr); err != nil {
		return err
	}
	v.log.Info("rigid address removed", "addr", addr)
	return nil
}

// ContainRigidAddress reports whether an address is rigid.
func (v *Vault) ContainRigidAddress(addr ids.ShortID) bool {
	return v.ledger.ContainRigidAddress(addr)
}

// Redistribute frees the nominal backing no longer needed by the rigid
// partition after a price rise, approves it to the redistributor, and
// requests redistribution. No-op when nothing is freed.
func (v *Vault) Redistribute() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.redistributor == nil {
		return ErrZeroRedistributor
	}

	freed, err := v.ledger.FreeRigidNominal()
	if err != nil {
		return err
	}
	if freed.Sign() == 0 {
		return nil
	}

	v.token.IncreaseAllowance(v.addr, v.redistributor.Address(), freed)
	if err := v.redistributor.RequestRedistribution(v.addr, freed); err != nil {
		return err
	}

	v.metrics.IncRedistributions()
	v.log.Info("redistributed freed backing", "nominal", freed)
	return nil
}

// TotalSupplyRigid returns the frozen value in the rigid partition.
func (v *Vault) TotalSupplyRigid() *big.Int {
	return v.ledger.TotalSupplyRigid()
}

// LockedNominalRigid returns the nominal backing the rigid partition.
func (v *Vault) LockedNominalRigid() *big.Int {
	return v.ledger.LockedNominalRigid()
}
