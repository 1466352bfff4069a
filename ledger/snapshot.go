// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"math/big"

	"github.com/luxfi/ids"
)

// BalanceEntry is one account balance in a snapshot.
type BalanceEntry struct {
	Address ids.ShortID `json:"address"`
	Amount  *big.Int    `json:"amount"`
}

// Snapshot is a serializable copy of the ledger's balances. Allowances and
// events are ephemeral and not captured.
type Snapshot struct {
	Nominal            []BalanceEntry `json:"nominal"`
	TotalNominalSupply *big.Int       `json:"totalNominalSupply"`
	Rigid              []BalanceEntry `json:"rigid"`
	TotalSupplyRigid   *big.Int       `json:"totalSupplyRigid"`
	LockedNominalRigid *big.Int       `json:"lockedNominalRigid"`
}

// Snapshot returns a deep copy of the ledger's balance state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return Snapshot{
		Nominal:            toEntries(l.nominal),
		TotalNominalSupply: new(big.Int).Set(l.totalNominalSupply),
		Rigid:              toEntries(l.rigid),
		TotalSupplyRigid:   new(big.Int).Set(l.totalSupplyRigid),
		LockedNominalRigid: new(big.Int).Set(l.lockedNominalRigid),
	}
}

// Restore replaces the ledger's balance state with a snapshot.
func (l *Ledger) Restore(snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nominal = fromEntries(snap.Nominal)
	l.totalNominalSupply = orZero(snap.TotalNominalSupply)
	l.rigid = fromEntries(snap.Rigid)
	l.totalSupplyRigid = orZero(snap.TotalSupplyRigid)
	l.lockedNominalRigid = orZero(snap.LockedNominalRigid)
}

func toEntries(src map[ids.ShortID]*big.Int) []BalanceEntry {
	entries := make([]BalanceEntry, 0, len(src))
	for addr, bal := range src {
		entries = append(entries, BalanceEntry{
			Address: addr,
			Amount:  new(big.Int).Set(bal),
		})
	}
	return entries
}

func fromEntries(entries []BalanceEntry) map[ids.ShortID]*big.Int {
	dst := make(map[ids.ShortID]*big.Int, len(entries))
	for _, e := range entries {
		dst[e.Address] = orZero(e.Amount)
	}
	return dst
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
