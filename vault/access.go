// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"sync"

	"github.com/luxfi/ids"
)

// AccessPolicy answers role queries for vault operations. Admins configure
// the vault; rebalancers move funds without paying the withdrawal fee.
type AccessPolicy interface {
	IsAdmin(addr ids.ShortID) bool
	IsRebalancer(addr ids.ShortID) bool
}

var _ AccessPolicy = (*SimpleAccessPolicy)(nil)

// SimpleAccessPolicy is an in-memory role registry.
type SimpleAccessPolicy struct {
	mu          sync.RWMutex
	admins      map[ids.ShortID]struct{}
	rebalancers map[ids.ShortID]struct{}
}

// NewSimpleAccessPolicy creates a policy with a single initial admin.
func NewSimpleAccessPolicy(admin ids.ShortID) *SimpleAccessPolicy {
	p := &SimpleAccessPolicy{
		admins:      make(map[ids.ShortID]struct{}),
		rebalancers: make(map[ids.ShortID]struct{}),
	}
	p.admins[admin] = struct{}{}
	return p
}

// AddAdmin grants the admin role.
func (p *SimpleAccessPolicy) AddAdmin(addr ids.ShortID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admins[addr] = struct{}{}
}

// AddRebalancer grants the rebalancer role.
func (p *SimpleAccessPolicy) AddRebalancer(addr ids.ShortID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rebalancers[addr] = struct{}{}
}

// RemoveRebalancer revokes the rebalancer role.
func (p *SimpleAccessPolicy) RemoveRebalancer(addr ids.ShortID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.rebalancers, addr)
}

func (p *SimpleAccessPolicy) IsAdmin(addr ids.ShortID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.admins[addr]
	return ok
}

func (p *SimpleAccessPolicy) IsRebalancer(addr ids.ShortID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.rebalancers[addr]
	return ok
}
