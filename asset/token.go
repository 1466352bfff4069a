// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package asset defines the underlying-asset token surface consumed by the
// vault and the redistributor. Amounts are 1e18-normalized integers; the
// token is assumed non-rebasing.
package asset

import (
	"errors"
	"math/big"
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/elasticvault/fixedpoint"
)

var (
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Token is the standard balance/transfer/approve surface of the underlying
// asset.
type Token interface {
	BalanceOf(addr ids.ShortID) *big.Int
	Transfer(from, to ids.ShortID, amount *big.Int) error
	TransferFrom(spender, from, to ids.ShortID, amount *big.Int) error
	Approve(owner, spender ids.ShortID, amount *big.Int)
	IncreaseAllowance(owner, spender ids.ShortID, added *big.Int)
	Allowance(owner, spender ids.ShortID) *big.Int
}

// SimpleToken is an in-memory Token.
type SimpleToken struct {
	mu         sync.RWMutex
	balances   map[ids.ShortID]*big.Int
	allowances map[ids.ShortID]map[ids.ShortID]*big.Int
}

// NewSimpleToken creates an empty token.
func NewSimpleToken() *SimpleToken {
	return &SimpleToken{
		balances:   make(map[ids.ShortID]*big.Int),
		allowances: make(map[ids.ShortID]map[ids.ShortID]*big.Int),
	}
}

// Mint credits amount to an address.
func (t *SimpleToken) Mint(to ids.ShortID, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
}

// BalanceOf returns the balance of an address.
func (t *SimpleToken) BalanceOf(addr ids.ShortID) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if bal, ok := t.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Transfer moves amount from one address to another.
func (t *SimpleToken) Transfer(from, to ids.ShortID, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(from, to, amount)
}

// TransferFrom moves amount on behalf of a spender, consuming allowance
// unless the unlimited sentinel is set.
func (t *SimpleToken) TransferFrom(spender, from, to ids.ShortID, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowed := t.allowance(from, spender)
	if allowed.Cmp(fixedpoint.MaxUint256) != 0 {
		if allowed.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		t.setAllowance(from, spender, new(big.Int).Sub(allowed, amount))
	}
	return t.move(from, to, amount)
}

// Approve sets an allowance.
func (t *SimpleToken) Approve(owner, spender ids.ShortID, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setAllowance(owner, spender, new(big.Int).Set(amount))
}

// IncreaseAllowance raises an allowance by the given amount.
func (t *SimpleToken) IncreaseAllowance(owner, spender ids.ShortID, added *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setAllowance(owner, spender, new(big.Int).Add(t.allowance(owner, spender), added))
}

// Allowance returns the remaining allowance.
func (t *SimpleToken) Allowance(owner, spender ids.ShortID) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.allowance(owner, spender))
}

func (t *SimpleToken) credit(to ids.ShortID, amount *big.Int) {
	if bal, ok := t.balances[to]; ok {
		bal.Add(bal, amount)
		return
	}
	t.balances[to] = new(big.Int).Set(amount)
}

func (t *SimpleToken) move(from, to ids.ShortID, amount *big.Int) error {
	bal, ok := t.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	t.credit(to, amount)
	return nil
}

func (t *SimpleToken) allowance(owner, spender ids.ShortID) *big.Int {
	if spenders, ok := t.allowances[owner]; ok {
		if allowed, ok := spenders[spender]; ok {
			return allowed
		}
	}
	return new(big.Int)
}

func (t *SimpleToken) setAllowance(owner, spender ids.ShortID, amount *big.Int) {
	spenders, ok := t.allowances[owner]
	if !ok {
		spenders = make(map[ids.ShortID]*big.Int)
		t.allowances[owner] = spenders
	}
	spenders[spender] = amount
}
