// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api provides the JSON-RPC surface for the elastic vault system.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/luxfi/ids"

	"github.com/luxfi/elasticvault/pricing"
	"github.com/luxfi/elasticvault/redistributor"
	"github.com/luxfi/elasticvault/vault"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNoRedistributor  = errors.New("no redistributor configured")
	errNegativeAmount   = errors.New("negative amount")
	errMissingAmountArg = errors.New("missing amount")
)

// Service provides read access to vault state over JSON-RPC.
type Service struct {
	vault  *vault.Vault
	prices *pricing.Cache
	pools  *redistributor.Redistributor
}

// NewService creates an API service. pools may be nil when no redistributor
// is configured.
func NewService(v *vault.Vault, prices *pricing.Cache, pools *redistributor.Redistributor) *Service {
	return &Service{
		vault:  v,
		prices: prices,
		pools:  pools,
	}
}

// PingArgs is the argument for the Ping API.
type PingArgs struct{}

// PingReply is the reply for the Ping API.
type PingReply struct {
	Success bool `json:"success"`
}

// Ping returns a simple health check response.
func (s *Service) Ping(_ *http.Request, _ *PingArgs, reply *PingReply) error {
	reply.Success = true
	return nil
}

// GetBalanceArgs names the account to query.
type GetBalanceArgs struct {
	Address string `json:"address"`
}

// GetBalanceReply carries both balance denominations.
type GetBalanceReply struct {
	Balance        string `json:"balance"`
	NominalBalance string `json:"nominalBalance"`
	Rigid          bool   `json:"rigid"`
}

// GetBalance returns the value and nominal balances of an account.
func (s *Service) GetBalance(_ *http.Request, args *GetBalanceArgs, reply *GetBalanceReply) error {
	addr, err := ids.ShortFromString(args.Address)
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}
	ledg := s.vault.Ledger()
	reply.Balance = ledg.BalanceOf(addr).String()
	reply.NominalBalance = ledg.BalanceOfNominal(addr).String()
	reply.Rigid = ledg.ContainRigidAddress(addr)
	return nil
}

// GetSupplyArgs is the argument for the GetSupply API.
type GetSupplyArgs struct{}

// GetSupplyReply carries the supply decomposition.
type GetSupplyReply struct {
	TotalSupply        string `json:"totalSupply"`
	TotalNominalSupply string `json:"totalNominalSupply"`
	TotalSupplyRigid   string `json:"totalSupplyRigid"`
	LockedNominalRigid string `json:"lockedNominalRigid"`
	TotalAssets        string `json:"totalAssets"`
}

// GetSupply returns the supply decomposition and held assets.
func (s *Service) GetSupply(_ *http.Request, _ *GetSupplyArgs, reply *GetSupplyReply) error {
	ledg := s.vault.Ledger()
	reply.TotalSupply = ledg.TotalSupply().String()
	reply.TotalNominalSupply = ledg.TotalNominalSupply().String()
	reply.TotalSupplyRigid = ledg.TotalSupplyRigid().String()
	reply.LockedNominalRigid = ledg.LockedNominalRigid().String()
	reply.TotalAssets = s.vault.TotalAssets().String()
	return nil
}

// GetPriceArgs is the argument for the GetPrice API.
type GetPriceArgs struct{}

// GetPriceReply carries the cached price snapshot.
type GetPriceReply struct {
	Price         string `json:"price"`
	CachedAtTick  uint64 `json:"cachedAtTick"`
	CacheDuration uint64 `json:"cacheDuration"`
}

// GetPrice returns the cached price without refreshing it.
func (s *Service) GetPrice(_ *http.Request, _ *GetPriceArgs, reply *GetPriceReply) error {
	reply.Price = s.prices.Price().String()
	reply.CachedAtTick = s.prices.CachedAtTick()
	reply.CacheDuration = s.prices.CacheDuration()
	return nil
}

// PreviewArgs carries a 1e18-scaled decimal amount.
type PreviewArgs struct {
	Amount string `json:"amount"`
}

// PreviewReply carries the converted amount.
type PreviewReply struct {
	Result string `json:"result"`
}

// PreviewDeposit returns the shares minted for a deposit of Amount assets.
func (s *Service) PreviewDeposit(_ *http.Request, args *PreviewArgs, reply *PreviewReply) error {
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	reply.Result = s.vault.PreviewDeposit(amount).String()
	return nil
}

// PreviewMint returns the assets needed to mint Amount shares.
func (s *Service) PreviewMint(_ *http.Request, args *PreviewArgs, reply *PreviewReply) error {
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	reply.Result = s.vault.PreviewMint(amount).String()
	return nil
}

// PreviewWithdraw returns the shares burned to withdraw Amount assets.
func (s *Service) PreviewWithdraw(_ *http.Request, args *PreviewArgs, reply *PreviewReply) error {
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	reply.Result = s.vault.PreviewWithdraw(amount).String()
	return nil
}

// PreviewRedeem returns the assets delivered for redeeming Amount shares.
func (s *Service) PreviewRedeem(_ *http.Request, args *PreviewArgs, reply *PreviewReply) error {
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	reply.Result = s.vault.PreviewRedeem(amount).String()
	return nil
}

// MaxArgs names the account whose limit is queried.
type MaxArgs struct {
	Address string `json:"address"`
}

// MaxReply carries the operation limits for one account.
type MaxReply struct {
	MaxDeposit  string `json:"maxDeposit"`
	MaxMint     string `json:"maxMint"`
	MaxWithdraw string `json:"maxWithdraw"`
	MaxRedeem   string `json:"maxRedeem"`
}

// GetMaxOperations returns the per-account operation bounds.
func (s *Service) GetMaxOperations(_ *http.Request, args *MaxArgs, reply *MaxReply) error {
	addr, err := ids.ShortFromString(args.Address)
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}
	reply.MaxDeposit = s.vault.MaxDeposit(addr).String()
	reply.MaxMint = s.vault.MaxMint(addr).String()
	reply.MaxWithdraw = s.vault.MaxWithdraw(addr).String()
	reply.MaxRedeem = s.vault.MaxRedeem(addr).String()
	return nil
}

// GetVaultStateArgs is the argument for the GetVaultState API.
type GetVaultStateArgs struct{}

// DailyLimitReply mirrors one limit window.
type DailyLimitReply struct {
	DurationTicks     uint64 `json:"durationTicks"`
	Limit             string `json:"limit"`
	CountingSinceTick uint64 `json:"countingSinceTick"`
	Accumulated       string `json:"accumulated"`
}

// GetVaultStateReply carries fee and limit configuration.
type GetVaultStateReply struct {
	WithdrawFee    uint64          `json:"withdrawFee"`
	FeeDistributor string          `json:"feeDistributor"`
	DailyDeposit   DailyLimitReply `json:"dailyDeposit"`
	DailyWithdraw  DailyLimitReply `json:"dailyWithdraw"`
}

// GetVaultState returns the vault's fee and limit configuration.
func (s *Service) GetVaultState(_ *http.Request, _ *GetVaultStateArgs, reply *GetVaultStateReply) error {
	reply.WithdrawFee = s.vault.WithdrawFee()
	reply.FeeDistributor = s.vault.FeeDistributor().String()
	reply.DailyDeposit = toLimitReply(s.vault.DailyDepositState())
	reply.DailyWithdraw = toLimitReply(s.vault.DailyWithdrawState())
	return nil
}

func toLimitReply(state vault.DailyLimitState) DailyLimitReply {
	return DailyLimitReply{
		DurationTicks:     state.DurationTicks,
		Limit:             state.Limit.String(),
		CountingSinceTick: state.CountingSinceTick,
		Accumulated:       state.Accumulated.String(),
	}
}

// GetPoolsArgs is the argument for the GetPools API.
type GetPoolsArgs struct{}

// PoolReply describes one redistribution pool.
type PoolReply struct {
	ID          string `json:"id"`
	Strategy    string `json:"strategy"`
	ShareWeight string `json:"shareWeight"`
}

// GetPoolsReply lists the redistribution pools.
type GetPoolsReply struct {
	Pools []PoolReply `json:"pools"`
}

// GetPools returns the registered redistribution pools.
func (s *Service) GetPools(_ *http.Request, _ *GetPoolsArgs, reply *GetPoolsReply) error {
	if s.pools == nil {
		return ErrNoRedistributor
	}
	for _, pool := range s.pools.Pools() {
		reply.Pools = append(reply.Pools, PoolReply{
			ID:          pool.ID.String(),
			Strategy:    pool.Strategy.String(),
			ShareWeight: pool.ShareWeight.String(),
		})
	}
	return nil
}
