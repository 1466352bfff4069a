// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"math/big"

	"github.com/luxfi/ids"

	"github.com/luxfi/elasticvault/fixedpoint"
)

// ContainRigidAddress reports whether an address is in the rigid partition.
func (l *Ledger) ContainRigidAddress(addr ids.ShortID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isRigid(addr)
}

// TotalSupplyRigid returns the frozen value held by rigid addresses.
func (l *Ledger) TotalSupplyRigid() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.totalSupplyRigid)
}

// LockedNominalRigid returns the nominal backing the rigid partition.
func (l *Ledger) LockedNominalRigid() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.lockedNominalRigid)
}

// AddRigidAddress moves an elastic account into the rigid partition. Its
// value balance is frozen at the current price and its nominal balance is
// locked as backing.
func (l *Ledger) AddRigidAddress(addr ids.ShortID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isRigid(addr) {
		return ErrNotElastic
	}
	price, err := l.refreshPrice()
	if err != nil {
		return err
	}

	nominal := new(big.Int).Set(l.nominalOf(addr))
	value := fixedpoint.MulNorm(nominal, price)

	delete(l.nominal, addr)
	l.totalNominalSupply.Sub(l.totalNominalSupply, nominal)
	l.lockedNominalRigid.Add(l.lockedNominalRigid, nominal)

	l.rigid[addr] = value
	l.totalSupplyRigid.Add(l.totalSupplyRigid, new(big.Int).Set(value))
	return nil
}

// RemoveRigidAddress converts a rigid account back to elastic. The frozen
// value is turned into nominal at the current price, rounded down so the
// partition never releases more backing than it holds.
func (l *Ledger) RemoveRigidAddress(addr ids.ShortID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	value, ok := l.rigid[addr]
	if !ok {
		return ErrNotRigid
	}
	price, err := l.refreshPrice()
	if err != nil {
		return err
	}

	nominal := fixedpoint.DivNorm(value, price)
	if l.lockedNominalRigid.Cmp(nominal) < 0 {
		return ErrLockedNominalExceeded
	}

	delete(l.rigid, addr)
	l.totalSupplyRigid.Sub(l.totalSupplyRigid, value)
	l.lockedNominalRigid.Sub(l.lockedNominalRigid, nominal)

	l.addNominal(addr, nominal)
	l.totalNominalSupply.Add(l.totalNominalSupply, nominal)
	return nil
}

// FreeRigidNominal releases locked nominal that is no longer needed to back
// the rigid partition. After a price rise the frozen value is covered by
// fewer nominal units; the surplus simply leaves the share accounting — the
// caller decides where the now-unbacked underlying goes. Returns the freed
// nominal, zero if the price has not risen since locking.
func (l *Ledger) FreeRigidNominal() (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	price, err := l.refreshPrice()
	if err != nil {
		return nil, err
	}

	required := fixedpoint.DivNorm(l.totalSupplyRigid, price)
	if l.lockedNominalRigid.Cmp(required) <= 0 {
		return new(big.Int), nil
	}

	freed := new(big.Int).Sub(l.lockedNominalRigid, required)
	l.lockedNominalRigid.Set(required)
	return freed, nil
}

func (l *Ledger) isRigid(addr ids.ShortID) bool {
	_, ok := l.rigid[addr]
	return ok
}
