// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"math/big"
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/elasticvault/pricing"
)

func parseEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

type ledgerHarness struct {
	ledger *Ledger
	cache  *pricing.Cache
	source *pricing.SimplePriceSource
	ticker *pricing.ManualTicker
}

func newHarness(t *testing.T, price *big.Int) *ledgerHarness {
	t.Helper()
	require := require.New(t)

	source := pricing.NewSimplePriceSource(price)
	cache, err := pricing.NewCache(source)
	require.NoError(err)
	ticker := pricing.NewManualTicker()

	return &ledgerHarness{
		ledger: New(cache, ticker),
		cache:  cache,
		source: source,
		ticker: ticker,
	}
}

// setPrice moves the oracle and advances a tick so the next operation
// refreshes.
func (h *ledgerHarness) setPrice(price *big.Int) {
	h.source.SetPrice(price)
	h.ticker.Advance(1)
}

func TestMintReportsValueBalance(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000")) // 1.5
	alice := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))

	require.Equal(parseEther(150), h.ledger.BalanceOf(alice))
	require.Equal(parseEther(100), h.ledger.BalanceOfNominal(alice))
	require.Equal(parseEther(150), h.ledger.TotalSupply())
	require.Equal(parseEther(100), h.ledger.TotalNominalSupply())

	events := h.ledger.Events()
	require.Len(events, 1)
	require.Equal(TransferEvent, events[0].Kind)
	require.Equal(ids.ShortEmpty, events[0].From)
	require.Equal(alice, events[0].To)
	require.Equal(parseEther(150), events[0].Value)
}

func TestBalancesTrackPrice(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))

	h.setPrice(parseEther(2))
	// No refresh happened yet: views still use the cached price.
	require.Equal(parseEther(150), h.ledger.BalanceOf(alice))

	// Any mutating op refreshes.
	bob := ids.GenerateTestShortID()
	require.NoError(h.ledger.Mint(bob, parseEther(1), parseEther(2)))

	require.Equal(parseEther(200), h.ledger.BalanceOf(alice))
	require.Equal(parseEther(202), h.ledger.TotalSupply())
}

func TestTransferSingleNominalDelta(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))
	require.NoError(h.ledger.Transfer(alice, bob, parseEther(100)))

	// Nominal delta is ceil(100/1.5) applied to both sides; the receiver
	// sees at least what was asked and supply is conserved.
	require.Equal(mustBig(t, "33333333333333333333"), h.ledger.BalanceOfNominal(alice))
	require.Equal(mustBig(t, "66666666666666666667"), h.ledger.BalanceOfNominal(bob))
	require.Equal(mustBig(t, "49999999999999999999"), h.ledger.BalanceOf(alice))
	require.Equal(parseEther(100), h.ledger.BalanceOf(bob))
	require.Equal(parseEther(100), h.ledger.TotalNominalSupply())
}

func TestTransferExceedsBalance(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, parseEther(1))
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(10), parseEther(10)))

	err := h.ledger.Transfer(alice, bob, parseEther(11))
	require.ErrorIs(err, ErrTransferExceedsBalance)
}

func TestTransferZeroAddresses(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, parseEther(1))
	alice := ids.GenerateTestShortID()

	err := h.ledger.Transfer(ids.ShortEmpty, alice, parseEther(1))
	require.ErrorIs(err, ErrTransferFromZero)

	err = h.ledger.Transfer(alice, ids.ShortEmpty, parseEther(1))
	require.ErrorIs(err, ErrTransferToZero)
}

func TestBurn(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))
	require.NoError(h.ledger.Burn(alice, parseEther(40), parseEther(60)))

	require.Equal(parseEther(60), h.ledger.BalanceOfNominal(alice))
	require.Equal(parseEther(90), h.ledger.BalanceOf(alice))
	require.Equal(parseEther(60), h.ledger.TotalNominalSupply())

	err := h.ledger.Burn(alice, parseEther(61), parseEther(1))
	require.ErrorIs(err, ErrBurnExceedsBalance)
}

func TestMintBurnRejectRigidAndZero(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, parseEther(1))
	alice := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(1), parseEther(1)))
	require.NoError(h.ledger.AddRigidAddress(alice))

	require.ErrorIs(h.ledger.Mint(alice, parseEther(1), parseEther(1)), ErrNotElastic)
	require.ErrorIs(h.ledger.Burn(alice, parseEther(1), parseEther(1)), ErrNotElastic)
	require.ErrorIs(h.ledger.Mint(ids.ShortEmpty, parseEther(1), parseEther(1)), ErrMintToZero)
	require.ErrorIs(h.ledger.Burn(ids.ShortEmpty, parseEther(1), parseEther(1)), ErrBurnFromZero)
}

func TestAllowances(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, parseEther(1))
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	spender := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(100)))

	err := h.ledger.TransferFrom(spender, alice, bob, parseEther(10))
	require.ErrorIs(err, ErrInsufficientAllowance)

	require.NoError(h.ledger.Approve(alice, spender, parseEther(50)))
	require.NoError(h.ledger.TransferFrom(spender, alice, bob, parseEther(10)))
	require.Equal(parseEther(40), h.ledger.Allowance(alice, spender))
	require.Equal(parseEther(10), h.ledger.BalanceOf(bob))

	require.NoError(h.ledger.IncreaseAllowance(alice, spender, parseEther(5)))
	require.Equal(parseEther(45), h.ledger.Allowance(alice, spender))

	require.NoError(h.ledger.DecreaseAllowance(alice, spender, parseEther(45)))
	require.Equal(new(big.Int), h.ledger.Allowance(alice, spender))

	err = h.ledger.DecreaseAllowance(alice, spender, parseEther(1))
	require.ErrorIs(err, ErrAllowanceBelowZero)
}

func TestTransferFromFailureKeepsAllowance(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, parseEther(1))
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	spender := ids.GenerateTestShortID()

	require.NoError(h.ledger.Approve(alice, spender, parseEther(10)))

	// Owner holds nothing: the transfer fails and the allowance survives.
	err := h.ledger.TransferFrom(spender, alice, bob, parseEther(10))
	require.ErrorIs(err, ErrTransferExceedsBalance)
	require.Equal(parseEther(10), h.ledger.Allowance(alice, spender))

	// The allowance is still spendable once the owner is funded.
	require.NoError(h.ledger.Mint(alice, parseEther(10), parseEther(10)))
	require.NoError(h.ledger.TransferFrom(spender, alice, bob, parseEther(10)))
	require.Equal(new(big.Int), h.ledger.Allowance(alice, spender))
}

func TestDrainEvents(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, parseEther(1))
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(10), parseEther(10)))
	require.NoError(h.ledger.Transfer(alice, bob, parseEther(4)))

	events := h.ledger.DrainEvents()
	require.Len(events, 2)
	require.Empty(h.ledger.Events())

	// New events accumulate from a clean buffer.
	require.NoError(h.ledger.Transfer(bob, alice, parseEther(1)))
	require.Len(h.ledger.Events(), 1)
}

func TestApproveZeroAddresses(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, parseEther(1))
	alice := ids.GenerateTestShortID()

	require.ErrorIs(h.ledger.Approve(ids.ShortEmpty, alice, parseEther(1)), ErrApproveFromZero)
	require.ErrorIs(h.ledger.Approve(alice, ids.ShortEmpty, parseEther(1)), ErrApproveToZero)
}

func TestSnapshotRestore(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))
	require.NoError(h.ledger.Mint(bob, parseEther(10), parseEther(15)))
	require.NoError(h.ledger.AddRigidAddress(bob))

	snap := h.ledger.Snapshot()

	other := newHarness(t, mustBig(t, "1500000000000000000"))
	_, err := other.cache.Refresh(other.ticker.CurrentTick())
	require.NoError(err)
	other.ledger.Restore(snap)

	require.Equal(parseEther(150), other.ledger.BalanceOf(alice))
	require.Equal(parseEther(15), other.ledger.BalanceOf(bob))
	require.True(other.ledger.ContainRigidAddress(bob))
	require.Equal(parseEther(10), other.ledger.LockedNominalRigid())
	require.Equal(parseEther(165), other.ledger.TotalSupply())
}
