// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists ledger snapshots and vault parameters.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/elasticvault/ledger"
)

var (
	ErrNoSnapshot = errors.New("no snapshot stored")

	// Database keys
	keyLedger = []byte("ledger")
	keyVault  = []byte("vault")
)

// VaultParams is the persisted slice of vault configuration.
type VaultParams struct {
	WithdrawFee    uint64      `json:"withdrawFee"`
	FeeDistributor ids.ShortID `json:"feeDistributor"`
	CacheDuration  uint64      `json:"cacheDuration"`

	DailyDepositDuration  uint64   `json:"dailyDepositDuration"`
	DailyDepositLimit     *big.Int `json:"dailyDepositLimit"`
	DailyWithdrawDuration uint64   `json:"dailyWithdrawDuration"`
	DailyWithdrawLimit    *big.Int `json:"dailyWithdrawLimit"`
}

// Store persists snapshots in a key-value database as JSON blobs.
type Store struct {
	mu sync.Mutex
	db database.Database
}

// New creates a store over the given database.
func New(db database.Database) *Store {
	return &Store{db: db}
}

// PutLedger writes a ledger snapshot.
func (s *Store) PutLedger(snap ledger.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling ledger snapshot: %w", err)
	}
	return s.db.Put(keyLedger, raw)
}

// GetLedger reads the stored ledger snapshot.
func (s *Store) GetLedger() (ledger.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap ledger.Snapshot
	raw, err := s.db.Get(keyLedger)
	if errors.Is(err, database.ErrNotFound) {
		return snap, ErrNoSnapshot
	}
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("unmarshaling ledger snapshot: %w", err)
	}
	return snap, nil
}

// PutVaultParams writes the vault parameter snapshot.
func (s *Store) PutVaultParams(params VaultParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling vault params: %w", err)
	}
	return s.db.Put(keyVault, raw)
}

// GetVaultParams reads the stored vault parameters.
func (s *Store) GetVaultParams() (VaultParams, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var params VaultParams
	raw, err := s.db.Get(keyVault)
	if errors.Is(err, database.ErrNotFound) {
		return params, ErrNoSnapshot
	}
	if err != nil {
		return params, err
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, fmt.Errorf("unmarshaling vault params: %w", err)
	}
	return params, nil
}
