// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes operation counters for the elastic vault.
package metrics

import "github.com/luxfi/metric"

var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = noopMetrics{}
)

type Metrics interface {
	IncDeposits()
	IncWithdrawals()
	IncRedistributions()
	IncPriceRefreshes()
}

type metricsImpl struct {
	numDeposits        metric.Counter
	numWithdrawals     metric.Counter
	numRedistributions metric.Counter
	numPriceRefreshes  metric.Counter
}

// New creates self-registering counters for vault operations.
func New() Metrics {
	return &metricsImpl{
		numDeposits: metric.NewCounter(metric.CounterOpts{
			Name: "vault_deposits",
			Help: "Number of deposit and mint operations accepted",
		}),
		numWithdrawals: metric.NewCounter(metric.CounterOpts{
			Name: "vault_withdrawals",
			Help: "Number of withdraw and redeem operations accepted",
		}),
		numRedistributions: metric.NewCounter(metric.CounterOpts{
			Name: "vault_redistributions",
			Help: "Number of redistribution rounds executed",
		}),
		numPriceRefreshes: metric.NewCounter(metric.CounterOpts{
			Name: "vault_price_refreshes",
			Help: "Number of explicit price cache refreshes",
		}),
	}
}

func (m *metricsImpl) IncDeposits()        { m.numDeposits.Inc() }
func (m *metricsImpl) IncWithdrawals()     { m.numWithdrawals.Inc() }
func (m *metricsImpl) IncRedistributions() { m.numRedistributions.Inc() }
func (m *metricsImpl) IncPriceRefreshes()  { m.numPriceRefreshes.Inc() }

type noopMetrics struct{}

// NewNoOp returns metrics that discard every observation. Used in tests.
func NewNoOp() Metrics { return noopMetrics{} }

func (noopMetrics) IncDeposits()        {}
func (noopMetrics) IncWithdrawals()     {}
func (noopMetrics) IncRedistributions() {}
func (noopMetrics) IncPriceRefreshes()  {}
