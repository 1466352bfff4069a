// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"math/big"
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestAddRigidAddressFreezesValue(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))
	require.NoError(h.ledger.AddRigidAddress(alice))

	require.True(h.ledger.ContainRigidAddress(alice))
	require.Equal(parseEther(150), h.ledger.BalanceOf(alice))
	require.Equal(new(big.Int), h.ledger.BalanceOfNominal(alice))
	require.Equal(parseEther(150), h.ledger.TotalSupplyRigid())
	require.Equal(parseEther(100), h.ledger.LockedNominalRigid())
	require.Equal(new(big.Int), h.ledger.TotalNominalSupply())
	require.Equal(parseEther(150), h.ledger.TotalSupply())

	// Frozen value ignores further price movement.
	h.setPrice(parseEther(2))
	bob := ids.GenerateTestShortID()
	require.NoError(h.ledger.Mint(bob, parseEther(1), parseEther(2)))
	require.Equal(parseEther(150), h.ledger.BalanceOf(alice))

	require.ErrorIs(h.ledger.AddRigidAddress(alice), ErrNotElastic)
}

func TestRemoveRigidAddress(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))
	require.NoError(h.ledger.AddRigidAddress(alice))

	// At price 2, the 150 frozen value converts back to 75 nominal; the 25
	// surplus stays locked until freed explicitly.
	h.setPrice(parseEther(2))
	require.NoError(h.ledger.RemoveRigidAddress(alice))

	require.False(h.ledger.ContainRigidAddress(alice))
	require.Equal(parseEther(75), h.ledger.BalanceOfNominal(alice))
	require.Equal(parseEther(150), h.ledger.BalanceOf(alice))
	require.Equal(new(big.Int), h.ledger.TotalSupplyRigid())
	require.Equal(parseEther(25), h.ledger.LockedNominalRigid())

	require.ErrorIs(h.ledger.RemoveRigidAddress(alice), ErrNotRigid)
}

func TestFreeRigidNominal(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))
	require.NoError(h.ledger.AddRigidAddress(alice))

	// Price unchanged: nothing to free.
	freed, err := h.ledger.FreeRigidNominal()
	require.NoError(err)
	require.Equal(new(big.Int), freed)

	// 150 value needs only 75 nominal at price 2; 25 is surplus.
	h.setPrice(parseEther(2))
	freed, err = h.ledger.FreeRigidNominal()
	require.NoError(err)
	require.Equal(parseEther(25), freed)
	require.Equal(parseEther(75), h.ledger.LockedNominalRigid())

	// Another rise frees another 25.
	h.setPrice(parseEther(3))
	freed, err = h.ledger.FreeRigidNominal()
	require.NoError(err)
	require.Equal(parseEther(25), freed)
	require.Equal(parseEther(50), h.ledger.LockedNominalRigid())

	// Price drop never claws back.
	h.setPrice(parseEther(2))
	freed, err = h.ledger.FreeRigidNominal()
	require.NoError(err)
	require.Equal(new(big.Int), freed)
	require.Equal(parseEther(50), h.ledger.LockedNominalRigid())
}

func TestRigidToRigidTransfer(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))
	require.NoError(h.ledger.AddRigidAddress(alice))
	require.NoError(h.ledger.AddRigidAddress(bob))

	require.NoError(h.ledger.Transfer(alice, bob, parseEther(60)))

	require.Equal(parseEther(90), h.ledger.BalanceOf(alice))
	require.Equal(parseEther(60), h.ledger.BalanceOf(bob))
	require.Equal(parseEther(150), h.ledger.TotalSupplyRigid())
	require.Equal(parseEther(100), h.ledger.LockedNominalRigid())
}

func TestRigidToElasticTransfer(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))
	require.NoError(h.ledger.AddRigidAddress(alice))

	require.NoError(h.ledger.Transfer(alice, bob, parseEther(6)))

	require.Equal(parseEther(144), h.ledger.BalanceOf(alice))
	require.Equal(parseEther(144), h.ledger.TotalSupplyRigid())
	require.Equal(parseEther(4), h.ledger.BalanceOfNominal(bob))
	require.Equal(parseEther(6), h.ledger.BalanceOf(bob))
	require.Equal(parseEther(96), h.ledger.LockedNominalRigid())
	require.Equal(parseEther(4), h.ledger.TotalNominalSupply())
	require.Equal(parseEther(150), h.ledger.TotalSupply())
}

func TestElasticToRigidTransfer(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, mustBig(t, "1500000000000000000"))
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(h.ledger.Mint(alice, parseEther(100), parseEther(150)))
	require.NoError(h.ledger.AddRigidAddress(bob))

	require.NoError(h.ledger.Transfer(alice, bob, parseEther(3)))

	require.Equal(parseEther(98), h.ledger.BalanceOfNominal(alice))
	require.Equal(parseEther(147), h.ledger.BalanceOf(alice))
	require.Equal(parseEther(3), h.ledger.BalanceOf(bob))
	require.Equal(parseEther(3), h.ledger.TotalSupplyRigid())
	require.Equal(parseEther(2), h.ledger.LockedNominalRigid())
	require.Equal(parseEther(98), h.ledger.TotalNominalSupply())
	require.Equal(parseEther(150), h.ledger.TotalSupply())
}
