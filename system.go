// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package elasticvault wires the pricing, ledger, vault, and redistribution
// components into one system with persistence and a JSON-RPC surface.
package elasticvault

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elasticvault/api"
	"github.com/luxfi/elasticvault/asset"
	"github.com/luxfi/elasticvault/config"
	"github.com/luxfi/elasticvault/ledger"
	"github.com/luxfi/elasticvault/metrics"
	"github.com/luxfi/elasticvault/pricing"
	"github.com/luxfi/elasticvault/redistributor"
	"github.com/luxfi/elasticvault/state"
	"github.com/luxfi/elasticvault/vault"
)

var ErrBadLimitConfig = errors.New("invalid daily limit in config")

// System owns the assembled components of one elastic vault deployment.
type System struct {
	log log.Logger
	cfg config.Config

	token  asset.Token
	prices *pricing.Cache
	ticker pricing.TickSource
	ledger *ledger.Ledger
	vault  *vault.Vault
	pools  *redistributor.Redistributor

	admin ids.ShortID
	store *state.Store
}

// NewSystem assembles a vault system from its external dependencies: the
// underlying token, the price source, the tick source, and a database. Any
// persisted ledger snapshot is restored.
func NewSystem(
	cfg config.Config,
	db database.Database,
	token asset.Token,
	source pricing.PriceSource,
	ticker pricing.TickSource,
	vaultAddr ids.ShortID,
	admin ids.ShortID,
	logger log.Logger,
	m metrics.Metrics,
) (*System, error) {
	prices, err := pricing.NewCache(source)
	if err != nil {
		return nil, err
	}
	prices.SetCacheDuration(cfg.PriceCacheDurationTicks)

	ledg := ledger.New(prices, ticker)
	access := vault.NewSimpleAccessPolicy(admin)
	v := vault.New(token, vaultAddr, ledg, prices, ticker, access, logger, m)

	sys := &System{
		log:    logger,
		cfg:    cfg,
		token:  token,
		prices: prices,
		ticker: ticker,
		ledger: ledg,
		vault:  v,
		admin:  admin,
		store:  state.New(db),
	}

	if err := sys.applyConfig(); err != nil {
		return nil, err
	}
	if err := sys.restore(); err != nil {
		return nil, err
	}

	logger.Info("elastic vault system initialized",
		"vault", vaultAddr,
		"admin", admin,
		"withdrawFee", cfg.WithdrawFee,
	)
	return sys, nil
}

// applyConfig pushes static configuration into the vault using the admin
// identity.
func (s *System) applyConfig() error {
	if s.cfg.WithdrawFee > 0 {
		if err := s.vault.ChangeWithdrawFee(s.admin, s.cfg.WithdrawFee); err != nil {
			return err
		}
	}
	if s.cfg.DailyDepositDurationTicks > 0 {
		limit, err := parseLimit(s.cfg.DailyDepositLimit)
		if err != nil {
			return err
		}
		if err := s.vault.ChangeDailyDepositParams(s.admin, s.cfg.DailyDepositDurationTicks, limit); err != nil {
			return err
		}
	}
	if s.cfg.DailyWithdrawDurationTicks > 0 {
		limit, err := parseLimit(s.cfg.DailyWithdrawLimit)
		if err != nil {
			return err
		}
		if err := s.vault.ChangeDailyWithdrawParams(s.admin, s.cfg.DailyWithdrawDurationTicks, limit); err != nil {
			return err
		}
	}
	return nil
}

func parseLimit(s string) (*big.Int, error) {
	limit, ok := new(big.Int).SetString(s, 10)
	if !ok || limit.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadLimitConfig, s)
	}
	return limit, nil
}

// restore loads the persisted ledger snapshot and vault parameters, if any.
// Persisted parameters override the static config: they capture runtime
// admin changes made before the restart.
func (s *System) restore() error {
	snap, err := s.store.GetLedger()
	switch {
	case errors.Is(err, state.ErrNoSnapshot):
	case err != nil:
		return err
	default:
		s.ledger.Restore(snap)
		s.log.Info("ledger snapshot restored")
	}

	params, err := s.store.GetVaultParams()
	if errors.Is(err, state.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.applyParams(params)
}

func (s *System) applyParams(p state.VaultParams) error {
	if err := s.vault.ChangeWithdrawFee(s.admin, p.WithdrawFee); err != nil {
		return err
	}
	if err := s.vault.ChangeFeeDistributor(s.admin, p.FeeDistributor); err != nil {
		return err
	}
	if err := s.vault.ChangeDailyDepositParams(s.admin, p.DailyDepositDuration, p.DailyDepositLimit); err != nil {
		return err
	}
	if err := s.vault.ChangeDailyWithdrawParams(s.admin, p.DailyWithdrawDuration, p.DailyWithdrawLimit); err != nil {
		return err
	}
	s.prices.SetCacheDuration(p.CacheDuration)
	s.log.Info("vault parameters restored")
	return nil
}

// persist writes the ledger snapshot and the current vault parameters when
// persistence is enabled. Parameters ride along so admin changes made since
// the last operation survive a restart.
func (s *System) persist() error {
	if !s.cfg.PersistenceEnabled {
		return nil
	}
	if err := s.store.PutLedger(s.ledger.Snapshot()); err != nil {
		return err
	}
	return s.store.PutVaultParams(s.vaultParams())
}

func (s *System) vaultParams() state.VaultParams {
	deposit := s.vault.DailyDepositState()
	withdraw := s.vault.DailyWithdrawState()
	return state.VaultParams{
		WithdrawFee:    s.vault.WithdrawFee(),
		FeeDistributor: s.vault.FeeDistributor(),
		CacheDuration:  s.prices.CacheDuration(),

		DailyDepositDuration:  deposit.DurationTicks,
		DailyDepositLimit:     deposit.Limit,
		DailyWithdrawDuration: withdraw.DurationTicks,
		DailyWithdrawLimit:    withdraw.Limit,
	}
}

// Vault returns the wired vault.
func (s *System) Vault() *vault.Vault { return s.vault }

// Ledger returns the share ledger.
func (s *System) Ledger() *ledger.Ledger { return s.ledger }

// PriceCache returns the wired price cache.
func (s *System) PriceCache() *pricing.Cache { return s.prices }

// UseRedistributor installs a redistributor on the vault and exposes it via
// the API.
func (s *System) UseRedistributor(r *redistributor.Redistributor) error {
	if err := s.vault.SetRedistributor(s.admin, r); err != nil {
		return err
	}
	s.pools = r
	return nil
}

// Deposit runs a vault deposit and persists the resulting ledger state.
func (s *System) Deposit(caller ids.ShortID, assets *big.Int, receiver ids.ShortID) (*big.Int, error) {
	shares, err := s.vault.Deposit(caller, assets, receiver)
	if err != nil {
		return nil, err
	}
	return shares, s.persist()
}

// Mint runs a vault mint and persists the resulting ledger state.
func (s *System) Mint(caller ids.ShortID, shares *big.Int, receiver ids.ShortID) (*big.Int, error) {
	assets, err := s.vault.Mint(caller, shares, receiver)
	if err != nil {
		return nil, err
	}
	return assets, s.persist()
}

// Withdraw runs a vault withdrawal and persists the resulting ledger state.
func (s *System) Withdraw(caller ids.ShortID, assets *big.Int, receiver, owner ids.ShortID) (*big.Int, error) {
	shares, err := s.vault.Withdraw(caller, assets, receiver, owner)
	if err != nil {
		return nil, err
	}
	return shares, s.persist()
}

// Redeem runs a vault redemption and persists the resulting ledger state.
func (s *System) Redeem(caller ids.ShortID, shares *big.Int, receiver, owner ids.ShortID) (*big.Int, error) {
	assets, err := s.vault.Redeem(caller, shares, receiver, owner)
	if err != nil {
		return nil, err
	}
	return assets, s.persist()
}

// Redistribute frees surplus rigid backing and persists the ledger state.
func (s *System) Redistribute() error {
	if err := s.vault.Redistribute(); err != nil {
		return err
	}
	return s.persist()
}

// CreateHandlers returns the HTTP handlers exposing the JSON-RPC API.
func (s *System) CreateHandlers() (map[string]http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	server.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")

	service := api.NewService(s.vault, s.prices, s.pools)
	if err := server.RegisterService(service, "elasticvault"); err != nil {
		return nil, fmt.Errorf("failed to register vault service: %w", err)
	}

	return map[string]http.Handler{
		"": server,
	}, nil
}
