// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vault implements an asset vault issuing elastic shares. Deposits
// pull the underlying token and mint value-denominated shares; withdrawals
// burn shares, route an optional fee to a distributor, and pay the receiver
// exactly the requested assets. Rounding always favors the vault.
package vault

import (
	"errors"
	"math/big"
	"sync"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elasticvault/asset"
	"github.com/luxfi/elasticvault/fixedpoint"
	"github.com/luxfi/elasticvault/ledger"
	"github.com/luxfi/elasticvault/metrics"
	"github.com/luxfi/elasticvault/pricing"
)

const (
	// FeeDenominator is the fee rate scale: a rate of 10_000 is 1%.
	FeeDenominator = 1_000_000
	// MaxFee caps the withdrawal fee rate at 50%.
	MaxFee = FeeDenominator / 2
)

var (
	ErrDepositMoreThanMax  = errors.New("deposit more than max")
	ErrMintMoreThanMax     = errors.New("mint more than max")
	ErrWithdrawMoreThanMax = errors.New("withdraw more than max")
	ErrRedeemMoreThanMax   = errors.New("redeem more than max")
	ErrFeeTooBig           = errors.New("fee bigger than max fee constant")
	ErrNotAdmin            = errors.New("caller is not admin")
	ErrZeroRedistributor   = errors.New("zero redistributor")
)

// Redistributor receives freed share backing when the rigid partition is
// over-collateralized after a price rise.
type Redistributor interface {
	Address() ids.ShortID
	RequestRedistribution(from ids.ShortID, amount *big.Int) error
}

// Vault issues elastic shares against a single underlying token. One nominal
// unit of shares is backed by exactly one unit of the token; the share VALUE
// follows the cached price through the ledger.
type Vault struct {
	mu sync.Mutex

	log     log.Logger
	metrics metrics.Metrics

	token  asset.Token
	addr   ids.ShortID
	ledger *ledger.Ledger
	prices *pricing.Cache
	ticker pricing.TickSource
	access AccessPolicy

	feeRate        uint64
	feeDistributor ids.ShortID
	redistributor  Redistributor

	dailyDeposit  dailyLimit
	dailyWithdraw dailyLimit
}

// New creates a vault. The access policy decides admin and rebalancer roles;
// fees and limits start disabled.
func New(
	token asset.Token,
	addr ids.ShortID,
	ledg *ledger.Ledger,
	prices *pricing.Cache,
	ticker pricing.TickSource,
	access AccessPolicy,
	logger log.Logger,
	m metrics.Metrics,
) *Vault {
	return &Vault{
		log:           logger,
		metrics:       m,
		token:         token,
		addr:          addr,
		ledger:        ledg,
		prices:        prices,
		ticker:        ticker,
		access:        access,
		dailyDeposit:  newDailyLimit(),
		dailyWithdraw: newDailyLimit(),
	}
}

// Address returns the vault's own address, the custodian of deposited assets.
func (v *Vault) Address() ids.ShortID { return v.addr }

// Asset returns the underlying token.
func (v *Vault) Asset() asset.Token { return v.token }

// Ledger exposes the share ledger backing this vault.
func (v *Vault) Ledger() *ledger.Ledger { return v.ledger }

// TotalAssets returns the underlying tokens held by the vault.
func (v *Vault) TotalAssets() *big.Int {
	return v.token.BalanceOf(v.addr)
}

// BalanceOf returns the share value balance of an account.
func (v *Vault) BalanceOf(addr ids.ShortID) *big.Int {
	return v.ledger.BalanceOf(addr)
}

// TotalSupply returns the share value supply.
func (v *Vault) TotalSupply() *big.Int {
	return v.ledger.TotalSupply()
}

// WithdrawFee returns the configured fee rate in FeeDenominator parts.
func (v *Vault) WithdrawFee() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.feeRate
}

// FeeDistributor returns the fee sink address.
func (v *Vault) FeeDistributor() ids.ShortID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.feeDistributor
}

// conversions

// convertToShares maps assets to share value on the supply/assets basis,
// 1:1 on an empty vault. roundUp selects the rounding direction.
func (v *Vault) convertToShares(assets *big.Int, roundUp bool) *big.Int {
	supply := v.ledger.TotalSupply()
	if supply.Sign() == 0 {
		return new(big.Int).Set(assets)
	}
	total := v.TotalAssets()
	if total.Sign() == 0 {
		// Degenerate: shares outstanding but no backing. Deposits are
		// blocked by MaxDeposit; conversions report zero.
		return new(big.Int)
	}
	if roundUp {
		return fixedpoint.MulDivUp(assets, supply, total)
	}
	return fixedpoint.MulDiv(assets, supply, total)
}

func (v *Vault) convertToAssets(shares *big.Int, roundUp bool) *big.Int {
	supply := v.ledger.TotalSupply()
	if supply.Sign() == 0 {
		return new(big.Int).Set(shares)
	}
	total := v.TotalAssets()
	if roundUp {
		return fixedpoint.MulDivUp(shares, total, supply)
	}
	return fixedpoint.MulDiv(shares, total, supply)
}

// ConvertToShares returns the share value of an asset amount, rounded down.
func (v *Vault) ConvertToShares(assets *big.Int) *big.Int {
	return v.convertToShares(assets, false)
}

// ConvertToAssets returns the asset value of a share amount, rounded down.
func (v *Vault) ConvertToAssets(shares *big.Int) *big.Int {
	return v.convertToAssets(shares, false)
}

// PreviewDeposit returns the shares minted for an exact asset deposit.
func (v *Vault) PreviewDeposit(assets *big.Int) *big.Int {
	return v.convertToShares(assets, false)
}

// PreviewMint returns the assets required for an exact share mint.
func (v *Vault) PreviewMint(shares *big.Int) *big.Int {
	return v.convertToAssets(shares, true)
}

// PreviewWithdraw returns the shares burned to deliver exactly assets to the
// receiver, grossing the amount up by the configured fee.
func (v *Vault) PreviewWithdraw(assets *big.Int) *big.Int {
	v.mu.Lock()
	fee := v.activeFee()
	v.mu.Unlock()
	return v.convertToShares(grossUp(assets, fee), true)
}

// PreviewRedeem returns the assets delivered for burning exactly shares, net
// of the configured fee.
func (v *Vault) PreviewRedeem(shares *big.Int) *big.Int {
	v.mu.Lock()
	fee := v.activeFee()
	v.mu.Unlock()
	gross := v.convertToAssets(shares, false)
	return new(big.Int).Sub(gross, feeOf(gross, fee))
}

// MaxDeposit returns the largest accepted deposit: unbounded unless the
// vault holds shares without backing. The daily window is a separate check
// with its own error, not part of this bound.
func (v *Vault) MaxDeposit(ids.ShortID) *big.Int {
	if v.ledger.TotalSupply().Sign() > 0 && v.TotalAssets().Sign() == 0 {
		return new(big.Int)
	}
	return new(big.Int).Set(fixedpoint.MaxUint256)
}

// MaxMint returns the largest accepted share mint.
func (v *Vault) MaxMint(ids.ShortID) *big.Int {
	if v.ledger.TotalSupply().Sign() > 0 && v.TotalAssets().Sign() == 0 {
		return new(big.Int)
	}
	return new(big.Int).Set(fixedpoint.MaxUint256)
}

// MaxWithdraw returns the most assets owner can take out net of fee.
func (v *Vault) MaxWithdraw(owner ids.ShortID) *big.Int {
	return v.PreviewRedeem(v.ledger.BalanceOf(owner))
}

// MaxRedeem returns owner's full share balance.
func (v *Vault) MaxRedeem(owner ids.ShortID) *big.Int {
	return v.ledger.BalanceOf(owner)
}

// operations

// Deposit pulls exactly assets from the caller and mints the corresponding
// shares to the receiver. Every check runs before the first effect: a failed
// deposit moves no tokens, mints nothing, and leaves the limit window intact.
func (v *Vault) Deposit(caller ids.ShortID, assets *big.Int, receiver ids.ShortID) (*big.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	tick := v.ticker.CurrentTick()
	if _, err := v.prices.Refresh(tick); err != nil {
		return nil, err
	}
	if assets.Cmp(v.maxDepositLocked()) > 0 {
		return nil, ErrDepositMoreThanMax
	}
	if err := v.checkMintReceiver(receiver); err != nil {
		return nil, err
	}

	shares := v.convertToShares(assets, false)
	if err := v.dailyDeposit.fits(tick, shares, ErrDailyDepositLimit); err != nil {
		return nil, err
	}

	if err := v.token.TransferFrom(v.addr, caller, v.addr, assets); err != nil {
		return nil, err
	}
	if err := v.ledger.Mint(receiver, assets, shares); err != nil {
		return nil, err
	}
	v.dailyDeposit.record(shares)

	v.metrics.IncDeposits()
	v.log.Debug("deposit", "caller", caller, "receiver", receiver, "assets", assets, "shares", shares)
	return shares, nil
}

// Mint issues exactly shares to the receiver, pulling the rounded-up asset
// amount from the caller. All-or-nothing, like Deposit.
func (v *Vault) Mint(caller ids.ShortID, shares *big.Int, receiver ids.ShortID) (*big.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	tick := v.ticker.CurrentTick()
	if _, err := v.prices.Refresh(tick); err != nil {
		return nil, err
	}
	if shares.Cmp(v.maxMintLocked()) > 0 {
		return nil, ErrMintMoreThanMax
	}
	if err := v.checkMintReceiver(receiver); err != nil {
		return nil, err
	}

	assets := v.convertToAssets(shares, true)
	if err := v.dailyDeposit.fits(tick, shares, ErrDailyDepositLimit); err != nil {
		return nil, err
	}

	if err := v.token.TransferFrom(v.addr, caller, v.addr, assets); err != nil {
		return nil, err
	}
	if err := v.ledger.Mint(receiver, assets, shares); err != nil {
		return nil, err
	}
	v.dailyDeposit.record(shares)

	v.metrics.IncDeposits()
	v.log.Debug("mint", "caller", caller, "receiver", receiver, "assets", assets, "shares", shares)
	return assets, nil
}

// Withdraw delivers exactly assets to the receiver, burning owner's shares
// for the fee-grossed amount. Rebalancers are exempt from the fee. A caller
// other than owner spends share allowance.
func (v *Vault) Withdraw(caller ids.ShortID, assets *big.Int, receiver, owner ids.ShortID) (*big.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.prices.Refresh(v.ticker.CurrentTick()); err != nil {
		return nil, err
	}

	fee := v.effectiveFee(caller)
	gross := grossUp(assets, fee)
	maxGross := v.convertToAssets(v.ledger.BalanceOf(owner), false)
	if gross.Cmp(maxGross) > 0 {
		return nil, ErrWithdrawMoreThanMax
	}
	if err := v.checkBurnOwner(owner); err != nil {
		return nil, err
	}
	if err := v.dailyWithdraw.fits(v.ticker.CurrentTick(), assets, ErrDailyWithdrawLimit); err != nil {
		return nil, err
	}

	shares := v.convertToShares(gross, true)
	if caller != owner {
		if err := v.ledger.SpendAllowance(owner, caller, shares); err != nil {
			return nil, err
		}
	}
	if err := v.ledger.Burn(owner, gross, shares); err != nil {
		return nil, err
	}

	if err := v.payOut(receiver, assets, new(big.Int).Sub(gross, assets)); err != nil {
		return nil, err
	}
	v.dailyWithdraw.record(assets)

	v.metrics.IncWithdrawals()
	v.log.Debug("withdraw", "caller", caller, "owner", owner, "receiver", receiver, "assets", assets, "shares", shares)
	return shares, nil
}

// Redeem burns exactly shares from owner and delivers the net asset amount
// to the receiver.
func (v *Vault) Redeem(caller ids.ShortID, shares *big.Int, receiver, owner ids.ShortID) (*big.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.redeemLocked(caller, shares, receiver, owner)
}

// WithdrawAll redeems owner's entire share balance.
func (v *Vault) WithdrawAll(caller ids.ShortID, receiver, owner ids.ShortID) (*big.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.redeemLocked(caller, v.ledger.BalanceOf(owner), receiver, owner)
}

func (v *Vault) redeemLocked(caller ids.ShortID, shares *big.Int, receiver, owner ids.ShortID) (*big.Int, error) {
	if _, err := v.prices.Refresh(v.ticker.CurrentTick()); err != nil {
		return nil, err
	}
	if shares.Cmp(v.ledger.BalanceOf(owner)) > 0 {
		return nil, ErrRedeemMoreThanMax
	}

	fee := v.effectiveFee(caller)
	gross := v.convertToAssets(shares, false)
	feeAssets := feeOf(gross, fee)
	assets := new(big.Int).Sub(gross, feeAssets)

	if err := v.checkBurnOwner(owner); err != nil {
		return nil, err
	}
	if err := v.dailyWithdraw.fits(v.ticker.CurrentTick(), assets, ErrDailyWithdrawLimit); err != nil {
		return nil, err
	}

	if caller != owner {
		if err := v.ledger.SpendAllowance(owner, caller, shares); err != nil {
			return nil, err
		}
	}
	if err := v.ledger.Burn(owner, gross, shares); err != nil {
		return nil, err
	}

	if err := v.payOut(receiver, assets, feeAssets); err != nil {
		return nil, err
	}
	v.dailyWithdraw.record(assets)

	v.metrics.IncWithdrawals()
	v.log.Debug("redeem", "caller", caller, "owner", owner, "receiver", receiver, "assets", assets, "shares", shares)
	return assets, nil
}

// payOut sends the fee to the distributor and the net amount to the
// receiver. Must be called with the lock held, after all ledger effects.
func (v *Vault) payOut(receiver ids.ShortID, assets, feeAssets *big.Int) error {
	if feeAssets.Sign() > 0 {
		if err := v.token.Transfer(v.addr, v.feeDistributor, feeAssets); err != nil {
			return err
		}
	}
	return v.token.Transfer(v.addr, receiver, assets)
}

// maxDepositLocked mirrors MaxDeposit with the lock held.
func (v *Vault) maxDepositLocked() *big.Int {
	if v.ledger.TotalSupply().Sign() > 0 && v.TotalAssets().Sign() == 0 {
		return new(big.Int)
	}
	return new(big.Int).Set(fixedpoint.MaxUint256)
}

func (v *Vault) maxMintLocked() *big.Int {
	return v.maxDepositLocked()
}

// checkMintReceiver rejects receivers the ledger would refuse, before any
// assets move.
func (v *Vault) checkMintReceiver(receiver ids.ShortID) error {
	if receiver == ids.ShortEmpty {
		return ledger.ErrMintToZero
	}
	if v.ledger.ContainRigidAddress(receiver) {
		return ledger.ErrNotElastic
	}
	return nil
}

// checkBurnOwner rejects owners the ledger would refuse to burn from, before
// allowance is spent or shares move.
func (v *Vault) checkBurnOwner(owner ids.ShortID) error {
	if owner == ids.ShortEmpty {
		return ledger.ErrBurnFromZero
	}
	if v.ledger.ContainRigidAddress(owner) {
		return ledger.ErrNotElastic
	}
	return nil
}

// fees

// activeFee returns the configured fee rate, or zero while no distributor is
// set. Must be called with the lock held.
func (v *Vault) activeFee() uint64 {
	if v.feeDistributor == ids.ShortEmpty {
		return 0
	}
	return v.feeRate
}

// effectiveFee is the fee applied for a specific caller. Must be called with
// the lock held.
func (v *Vault) effectiveFee(caller ids.ShortID) uint64 {
	if v.access.IsRebalancer(caller) {
		return 0
	}
	return v.activeFee()
}

// grossUp returns the assets to pull from the vault so the receiver nets
// exactly assets after the fee: ceil(assets * D / (D - fee)).
func grossUp(assets *big.Int, fee uint64) *big.Int {
	if fee == 0 {
		return new(big.Int).Set(assets)
	}
	return fixedpoint.MulDivUp(
		assets,
		big.NewInt(FeeDenominator),
		big.NewInt(FeeDenominator-int64(fee)),
	)
}

// feeOf returns floor(gross * fee / D).
func feeOf(gross *big.Int, fee uint64) *big.Int {
	if fee == 0 {
		return new(big.Int)
	}
	return fixedpoint.MulDiv(gross, new(big.Int).SetUint64(fee), big.NewInt(FeeDenominator))
}
