// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Scale)
}

func TestMulDivRounding(t *testing.T) {
	require := require.New(t)

	// 10 * 10 / 3 = 33.33..
	require.Equal(big.NewInt(33), MulDiv(big.NewInt(10), big.NewInt(10), big.NewInt(3)))
	require.Equal(big.NewInt(34), MulDivUp(big.NewInt(10), big.NewInt(10), big.NewInt(3)))

	// Exact division rounds the same both ways.
	require.Equal(big.NewInt(25), MulDiv(big.NewInt(10), big.NewInt(10), big.NewInt(4)))
	require.Equal(big.NewInt(25), MulDivUp(big.NewInt(10), big.NewInt(10), big.NewInt(4)))
}

func TestNormConversions(t *testing.T) {
	require := require.New(t)

	price := new(big.Int).SetUint64(1_500_000_000_000_000_000) // 1.5

	// 100 nominal at price 1.5 is 150 value.
	require.Equal(eth(150), MulNorm(eth(100), price))
	// 150 value at price 1.5 is 100 nominal.
	require.Equal(eth(100), DivNorm(eth(150), price))

	// 100 value at price 1.5 does not divide evenly.
	down := DivNorm(eth(100), price)
	up := DivNormUp(eth(100), price)
	require.Equal("66666666666666666666", down.String())
	require.Equal("66666666666666666667", up.String())
}

func TestInputsNotMutated(t *testing.T) {
	require := require.New(t)

	a := big.NewInt(7)
	b := big.NewInt(9)
	d := big.NewInt(2)
	_ = MulDiv(a, b, d)
	_ = MulDivUp(a, b, d)
	require.Equal(int64(7), a.Int64())
	require.Equal(int64(9), b.Int64())
	require.Equal(int64(2), d.Int64())
}
