// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger implements elastic fungible accounting: balances are stored
// in fixed nominal units and reported in value units scaled by the cached
// asset price. Rigid addresses are exempted from scaling; their reported
// balance is frozen until they are explicitly converted back to elastic.
package ledger

import (
	"errors"
	"math/big"
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/elasticvault/fixedpoint"
	"github.com/luxfi/elasticvault/pricing"
)

var (
	ErrTransferFromZero       = errors.New("transfer from the zero address")
	ErrTransferToZero         = errors.New("transfer to the zero address")
	ErrTransferExceedsBalance = errors.New("transfer amount exceeds balance")
	ErrMintToZero             = errors.New("mint to the zero address")
	ErrBurnFromZero           = errors.New("burn from the zero address")
	ErrBurnExceedsBalance     = errors.New("burn amount exceeds balance")
	ErrApproveFromZero        = errors.New("approve from the zero address")
	ErrApproveToZero          = errors.New("approve to the zero address")
	ErrAllowanceBelowZero     = errors.New("decreased allowance below zero")
	ErrInsufficientAllowance  = errors.New("insufficient allowance")
	ErrNotElastic             = errors.New("Not elastic address")
	ErrNotRigid               = errors.New("Not rigid address")
	ErrLockedNominalExceeded  = errors.New("insufficient locked nominal")
)

// Ledger tracks nominal balances, frozen rigid value balances, and
// value-denominated allowances. All mutating operations refresh the price
// cache first so every conversion inside one operation uses a single price.
type Ledger struct {
	mu sync.RWMutex

	prices *pricing.Cache
	ticker pricing.TickSource

	nominal    map[ids.ShortID]*big.Int
	allowances map[ids.ShortID]map[ids.ShortID]*big.Int

	totalNominalSupply *big.Int

	rigid              map[ids.ShortID]*big.Int
	totalSupplyRigid   *big.Int
	lockedNominalRigid *big.Int

	events []Event
}

// New creates an empty ledger bound to a price cache and tick source.
func New(prices *pricing.Cache, ticker pricing.TickSource) *Ledger {
	return &Ledger{
		prices:             prices,
		ticker:             ticker,
		nominal:            make(map[ids.ShortID]*big.Int),
		allowances:         make(map[ids.ShortID]map[ids.ShortID]*big.Int),
		totalNominalSupply: new(big.Int),
		rigid:              make(map[ids.ShortID]*big.Int),
		totalSupplyRigid:   new(big.Int),
		lockedNominalRigid: new(big.Int),
	}
}

// refreshPrice refreshes the price cache at the current tick and returns the
// price to use for this operation. Must be called with the lock held.
func (l *Ledger) refreshPrice() (*big.Int, error) {
	return l.prices.Refresh(l.ticker.CurrentTick())
}

// BalanceOf returns the value balance of an account: the frozen value for a
// rigid address, the price-scaled nominal balance otherwise.
func (l *Ledger) BalanceOf(addr ids.ShortID) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if value, ok := l.rigid[addr]; ok {
		return new(big.Int).Set(value)
	}
	return fixedpoint.MulNorm(l.nominalOf(addr), l.prices.Price())
}

// BalanceOfNominal returns the internal nominal balance. Rigid addresses
// report zero: their accounting is value-denominated.
func (l *Ledger) BalanceOfNominal(addr ids.ShortID) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.rigid[addr]; ok {
		return new(big.Int)
	}
	return new(big.Int).Set(l.nominalOf(addr))
}

// TotalSupply returns the value supply: the scaled elastic pool plus the
// frozen rigid pool.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	supply := fixedpoint.MulNorm(l.totalNominalSupply, l.prices.Price())
	return supply.Add(supply, l.totalSupplyRigid)
}

// TotalNominalSupply returns the sum of elastic nominal balances.
func (l *Ledger) TotalNominalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.totalNominalSupply)
}

// Transfer moves a value amount between accounts. For two elastic accounts a
// single nominal delta is computed by rounding divNorm(value, price) up, so
// the sender gives up exactly what the receiver gains and supply does not
// drift. Mixed-mode transfers convert between the partitions at the cached
// price.
func (l *Ledger) Transfer(from, to ids.ShortID, value *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transfer(from, to, value)
}

// transfer is Transfer with the lock held.
func (l *Ledger) transfer(from, to ids.ShortID, value *big.Int) error {
	if from == ids.ShortEmpty {
		return ErrTransferFromZero
	}
	if to == ids.ShortEmpty {
		return ErrTransferToZero
	}

	price, err := l.refreshPrice()
	if err != nil {
		return err
	}

	fromRigid := l.isRigid(from)
	toRigid := l.isRigid(to)

	switch {
	case !fromRigid && !toRigid:
		nominal := fixedpoint.DivNormUp(value, price)
		if err := l.subNominal(from, nominal); err != nil {
			return err
		}
		l.addNominal(to, nominal)

	case fromRigid && toRigid:
		if err := l.subRigidValue(from, value); err != nil {
			return err
		}
		l.addRigidValue(to, value)

	case fromRigid && !toRigid:
		// Freed nominal is rounded down: the elastic side never receives
		// more backing than the rigid side released.
		nominal := fixedpoint.DivNorm(value, price)
		if l.lockedNominalRigid.Cmp(nominal) < 0 {
			return ErrLockedNominalExceeded
		}
		if err := l.subRigidValue(from, value); err != nil {
			return err
		}
		l.totalSupplyRigid.Sub(l.totalSupplyRigid, value)
		l.lockedNominalRigid.Sub(l.lockedNominalRigid, nominal)
		l.addNominal(to, nominal)
		l.totalNominalSupply.Add(l.totalNominalSupply, nominal)

	default: // elastic -> rigid
		nominal := fixedpoint.DivNormUp(value, price)
		if err := l.subNominal(from, nominal); err != nil {
			return err
		}
		l.totalNominalSupply.Sub(l.totalNominalSupply, nominal)
		l.lockedNominalRigid.Add(l.lockedNominalRigid, nominal)
		l.addRigidValue(to, value)
		l.totalSupplyRigid.Add(l.totalSupplyRigid, value)
	}

	l.emit(Event{Kind: TransferEvent, From: from, To: to, Value: new(big.Int).Set(value)})
	return nil
}

// TransferFrom moves value on behalf of a spender, consuming value
// allowance. The unlimited sentinel never decrements. The allowance is only
// written down once the transfer has succeeded: a failed transfer leaves it
// untouched.
func (l *Ledger) TransferFrom(spender, from, to ids.ShortID, value *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.allowance(from, spender)
	unlimited := current.Cmp(fixedpoint.MaxUint256) == 0
	if !unlimited && current.Cmp(value) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.transfer(from, to, value); err != nil {
		return err
	}
	if unlimited {
		return nil
	}
	return l.approve(from, spender, new(big.Int).Sub(current, value))
}

// Mint credits an elastic account with a nominal amount and reports a value
// amount. The two are supplied independently by the caller (typically the
// vault); the ledger does not reconcile them.
func (l *Ledger) Mint(to ids.ShortID, nominal, value *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if to == ids.ShortEmpty {
		return ErrMintToZero
	}
	if l.isRigid(to) {
		return ErrNotElastic
	}
	if _, err := l.refreshPrice(); err != nil {
		return err
	}

	l.addNominal(to, nominal)
	l.totalNominalSupply.Add(l.totalNominalSupply, nominal)
	l.emit(Event{Kind: TransferEvent, From: ids.ShortEmpty, To: to, Value: new(big.Int).Set(value)})
	return nil
}

// Burn debits an elastic account by a nominal amount and reports a value
// amount.
func (l *Ledger) Burn(from ids.ShortID, nominal, value *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if from == ids.ShortEmpty {
		return ErrBurnFromZero
	}
	if l.isRigid(from) {
		return ErrNotElastic
	}
	if _, err := l.refreshPrice(); err != nil {
		return err
	}

	if l.nominalOf(from).Cmp(nominal) < 0 {
		return ErrBurnExceedsBalance
	}
	l.subNominalUnchecked(from, nominal)
	l.totalNominalSupply.Sub(l.totalNominalSupply, nominal)
	l.emit(Event{Kind: TransferEvent, From: from, To: ids.ShortEmpty, Value: new(big.Int).Set(value)})
	return nil
}

// Approve sets a value-denominated allowance.
func (l *Ledger) Approve(owner, spender ids.ShortID, value *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.approve(owner, spender, new(big.Int).Set(value))
}

// IncreaseAllowance raises an allowance by the given value.
func (l *Ledger) IncreaseAllowance(owner, spender ids.ShortID, added *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.allowance(owner, spender)
	return l.approve(owner, spender, new(big.Int).Add(current, added))
}

// DecreaseAllowance lowers an allowance, rejecting underflow.
func (l *Ledger) DecreaseAllowance(owner, spender ids.ShortID, subtracted *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.allowance(owner, spender)
	if current.Cmp(subtracted) < 0 {
		return ErrAllowanceBelowZero
	}
	return l.approve(owner, spender, new(big.Int).Sub(current, subtracted))
}

// Allowance returns the remaining value allowance.
func (l *Ledger) Allowance(owner, spender ids.ShortID) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.allowance(owner, spender))
}

// SpendAllowance consumes allowance without moving balances. Used by the
// vault when a delegate withdraws on behalf of an owner.
func (l *Ledger) SpendAllowance(owner, spender ids.ShortID, value *big.Int) error {
	return l.spendAllowance(owner, spender, value)
}

func (l *Ledger) spendAllowance(owner, spender ids.ShortID, value *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.allowance(owner, spender)
	if current.Cmp(fixedpoint.MaxUint256) == 0 {
		return nil
	}
	if current.Cmp(value) < 0 {
		return ErrInsufficientAllowance
	}
	return l.approve(owner, spender, new(big.Int).Sub(current, value))
}

// approve writes an allowance and emits Approval. Must be called with the
// lock held; takes ownership of value.
func (l *Ledger) approve(owner, spender ids.ShortID, value *big.Int) error {
	if owner == ids.ShortEmpty {
		return ErrApproveFromZero
	}
	if spender == ids.ShortEmpty {
		return ErrApproveToZero
	}

	spenders, ok := l.allowances[owner]
	if !ok {
		spenders = make(map[ids.ShortID]*big.Int)
		l.allowances[owner] = spenders
	}
	spenders[spender] = value
	l.emit(Event{Kind: ApprovalEvent, From: owner, To: spender, Value: new(big.Int).Set(value)})
	return nil
}

func (l *Ledger) allowance(owner, spender ids.ShortID) *big.Int {
	if spenders, ok := l.allowances[owner]; ok {
		if allowed, ok := spenders[spender]; ok {
			return allowed
		}
	}
	return new(big.Int)
}

func (l *Ledger) nominalOf(addr ids.ShortID) *big.Int {
	if bal, ok := l.nominal[addr]; ok {
		return bal
	}
	return new(big.Int)
}

func (l *Ledger) addNominal(addr ids.ShortID, amount *big.Int) {
	if bal, ok := l.nominal[addr]; ok {
		bal.Add(bal, amount)
		return
	}
	l.nominal[addr] = new(big.Int).Set(amount)
}

func (l *Ledger) subNominal(addr ids.ShortID, amount *big.Int) error {
	if l.nominalOf(addr).Cmp(amount) < 0 {
		return ErrTransferExceedsBalance
	}
	l.subNominalUnchecked(addr, amount)
	return nil
}

func (l *Ledger) subNominalUnchecked(addr ids.ShortID, amount *big.Int) {
	bal := l.nominal[addr]
	bal.Sub(bal, amount)
}

func (l *Ledger) addRigidValue(addr ids.ShortID, value *big.Int) {
	if bal, ok := l.rigid[addr]; ok {
		bal.Add(bal, value)
		return
	}
	l.rigid[addr] = new(big.Int).Set(value)
}

func (l *Ledger) subRigidValue(addr ids.ShortID, value *big.Int) error {
	bal, ok := l.rigid[addr]
	if !ok || bal.Cmp(value) < 0 {
		return ErrTransferExceedsBalance
	}
	bal.Sub(bal, value)
	return nil
}
