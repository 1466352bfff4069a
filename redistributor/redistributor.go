// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package redistributor splits freed vault backing across weighted pools.
// Pulled share tokens are held in custody; each managed underlying token is
// forwarded to pool strategies proportionally to pool weight. Floor division
// leaves per-token dust in custody rather than over-paying any pool.
package redistributor

import (
	"errors"
	"math/big"
	"sync"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elasticvault/asset"
	"github.com/luxfi/elasticvault/fixedpoint"
)

var (
	ErrZeroStrategy  = errors.New("zero strategy address")
	ErrDuplicatePool = errors.New("duplicate pool")
	ErrNoPools       = errors.New("no pools registered")
)

// Pool is one redistribution target. ShareWeight is relative: a pool
// receives weight/totalWeight of every distributed token.
type Pool struct {
	ID          ids.ID
	Strategy    ids.ShortID
	ShareWeight *big.Int
}

// Redistributor pulls share tokens on request and forwards managed tokens to
// pool strategies by weight.
type Redistributor struct {
	mu sync.Mutex

	log  log.Logger
	addr ids.ShortID

	shareToken asset.Token

	poolOrder []ids.ID
	pools     map[ids.ID]*Pool

	managed []asset.Token
}

// New creates a redistributor custodying funds at addr and pulling the given
// share token.
func New(addr ids.ShortID, shareToken asset.Token, logger log.Logger) *Redistributor {
	return &Redistributor{
		log:        logger,
		addr:       addr,
		shareToken: shareToken,
		pools:      make(map[ids.ID]*Pool),
	}
}

// Address returns the custody address.
func (r *Redistributor) Address() ids.ShortID { return r.addr }

// AddPool registers a redistribution target.
func (r *Redistributor) AddPool(id ids.ID, strategy ids.ShortID, shareWeight *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strategy == ids.ShortEmpty {
		return ErrZeroStrategy
	}
	if _, ok := r.pools[id]; ok {
		return ErrDuplicatePool
	}
	r.pools[id] = &Pool{
		ID:          id,
		Strategy:    strategy,
		ShareWeight: new(big.Int).Set(shareWeight),
	}
	r.poolOrder = append(r.poolOrder, id)
	r.log.Info("pool added", "pool", id, "strategy", strategy, "weight", shareWeight)
	return nil
}

// SetPoolWeight updates a pool's relative weight.
func (r *Redistributor) SetPoolWeight(id ids.ID, shareWeight *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.pools[id]
	if !ok {
		return ErrNoPools
	}
	pool.ShareWeight = new(big.Int).Set(shareWeight)
	return nil
}

// Pools returns the registered pools in registration order.
func (r *Redistributor) Pools() []Pool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Pool, 0, len(r.poolOrder))
	for _, id := range r.poolOrder {
		p := r.pools[id]
		out = append(out, Pool{
			ID:          p.ID,
			Strategy:    p.Strategy,
			ShareWeight: new(big.Int).Set(p.ShareWeight),
		})
	}
	return out
}

// AddManagedToken registers an underlying token to distribute.
func (r *Redistributor) AddManagedToken(token asset.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managed = append(r.managed, token)
}

// RequestRedistribution pulls amount of the share token from the given
// address into custody. Bookkeeping only; no distribution happens here.
func (r *Redistributor) RequestRedistribution(from ids.ShortID, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.shareToken.TransferFrom(r.addr, from, r.addr, amount); err != nil {
		return err
	}
	r.log.Info("redistribution requested", "from", from, "amount", amount)
	return nil
}

// Redistribute splits every managed token balance across the pools by
// weight. Floor division means up to len(pools)-1 base units of each token
// stay in custody per round.
func (r *Redistributor) Redistribute() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.poolOrder) == 0 {
		return ErrNoPools
	}

	totalWeight := new(big.Int)
	for _, id := range r.poolOrder {
		totalWeight.Add(totalWeight, r.pools[id].ShareWeight)
	}
	if totalWeight.Sign() == 0 {
		return nil
	}

	for _, token := range r.managed {
		held := token.BalanceOf(r.addr)
		if held.Sign() == 0 {
			continue
		}
		for _, id := range r.poolOrder {
			pool := r.pools[id]
			amount := fixedpoint.MulDiv(held, pool.ShareWeight, totalWeight)
			if amount.Sign() == 0 {
				continue
			}
			if err := token.Transfer(r.addr, pool.Strategy, amount); err != nil {
				return err
			}
		}
	}
	return nil
}
