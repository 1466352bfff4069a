// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fixedpoint provides 1e18 fixed-point arithmetic helpers shared by
// the elastic ledger, the vault and the redistributor. Every division has an
// explicit floor or ceil variant; rounding direction is always chosen by the
// caller, never implied.
package fixedpoint

import "math/big"

var (
	// Scale is the fixed-point scale for prices, balances and fees (1e18).
	Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// MaxUint256 is the largest representable amount. It doubles as the
	// unlimited-allowance sentinel and the unbounded deposit cap.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// MulDiv returns floor(a * b / denom).
func MulDiv(a, b, denom *big.Int) *big.Int {
	num := new(big.Int).Mul(a, b)
	return num.Div(num, denom)
}

// MulDivUp returns ceil(a * b / denom).
func MulDivUp(a, b, denom *big.Int) *big.Int {
	num := new(big.Int).Mul(a, b)
	quo, rem := num.QuoRem(num, denom, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}

// MulNorm returns floor(amount * price / Scale): the value equivalent of a
// nominal amount at the given price.
func MulNorm(amount, price *big.Int) *big.Int {
	return MulDiv(amount, price, Scale)
}

// MulNormUp returns ceil(amount * price / Scale).
func MulNormUp(amount, price *big.Int) *big.Int {
	return MulDivUp(amount, price, Scale)
}

// DivNorm returns floor(amount * Scale / price): the nominal equivalent of a
// value amount at the given price.
func DivNorm(amount, price *big.Int) *big.Int {
	return MulDiv(amount, Scale, price)
}

// DivNormUp returns ceil(amount * Scale / price).
func DivNormUp(amount, price *big.Int) *big.Int {
	return MulDivUp(amount, Scale, price)
}
