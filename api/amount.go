// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"fmt"
	"math/big"
)

// parseAmount decodes a non-negative decimal string.
func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, errMissingAmountArg
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if amount.Sign() < 0 {
		return nil, errNegativeAmount
	}
	return amount, nil
}
